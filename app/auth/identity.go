package auth

import (
	"context"

	"github.com/littlelemon/ordering-api/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID    uint
	Username  string
	Superuser bool
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, who *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, who)
}

// FromContext returns the caller, or nil and false for anonymous requests.
func FromContext(ctx context.Context) (*Identity, bool) {
	who, ok := ctx.Value(ctxKey{}).(*Identity)
	return who, ok && who != nil
}

// Require returns the caller or an Unauthorized error.
func Require(ctx context.Context) (*Identity, error) {
	who, ok := FromContext(ctx)
	if !ok {
		return nil, models.Unauthorized("Authentication credentials were not provided.")
	}
	return who, nil
}

func identityOf(u *models.User) *Identity {
	return &Identity{UserID: u.ID, Username: u.Username, Superuser: u.IsSuperuser}
}
