package roles

import (
	"context"
	"strings"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
)

const ManagersOnly = "Only Admin or Managers are allowed to perform this action."

type RoleStore interface {
	UserHasRole(ctx context.Context, userID uint, role models.Role) (bool, error)
	AddUserRole(ctx context.Context, userID uint, role models.Role) error
	RemoveUserRole(ctx context.Context, userID uint, role models.Role) error
	ListUsersWithRole(ctx context.Context, role models.Role) ([]models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Directory answers role membership questions and gates privileged actions.
type Directory struct {
	store  RoleStore
	logger zerolog.Logger
}

func NewDirectory(store RoleStore, logger zerolog.Logger) *Directory {
	if store == nil {
		panic("role directory missing required dependency role store")
	}
	return &Directory{store: store, logger: logger}
}

func (d *Directory) HasRole(ctx context.Context, userID uint, role models.Role) (bool, error) {
	return d.store.UserHasRole(ctx, userID, role)
}

// IsManager is true for super-admins and members of the Manager role.
func (d *Directory) IsManager(ctx context.Context, who *auth.Identity) (bool, error) {
	if who == nil {
		return false, nil
	}
	if who.Superuser {
		return true, nil
	}
	return d.store.UserHasRole(ctx, who.UserID, models.RoleManager)
}

// RequireManager returns the caller when it may perform manager-only work.
// Anonymous callers get Unauthorized, everyone else PermissionDenied with msg.
func (d *Directory) RequireManager(ctx context.Context, msg string) (*auth.Identity, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := d.IsManager(ctx, who)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.PermissionDenied("%s", msg)
	}
	return who, nil
}

// AssignRole is idempotent; an unknown user is NotFound.
func (d *Directory) AssignRole(ctx context.Context, userID uint, role models.Role) error {
	if !role.Valid() {
		return models.Validation("unknown role %q", role)
	}
	if err := d.store.AddUserRole(ctx, userID, role); err != nil {
		return err
	}
	d.logger.Info().Uint("user_id", userID).Str("role", string(role)).Msg("role assigned")
	return nil
}

// AssignRoleByUsername resolves username and assigns role to that user.
func (d *Directory) AssignRoleByUsername(ctx context.Context, username string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.Validation("username is required")
	}
	user, err := d.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := d.AssignRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	return user, nil
}

// RevokeRole succeeds when the user does not hold role, but the user must exist.
func (d *Directory) RevokeRole(ctx context.Context, userID uint, role models.Role) error {
	if _, err := d.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := d.store.RemoveUserRole(ctx, userID, role); err != nil {
		return err
	}
	d.logger.Info().Uint("user_id", userID).Str("role", string(role)).Msg("role revoked")
	return nil
}

func (d *Directory) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	return d.store.ListUsersWithRole(ctx, role)
}
