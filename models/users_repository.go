package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) CreateUser(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return Conflict("a user with username %q already exists", user.Username)
		}
		return err
	}
	return nil
}

func (r *UsersRepository) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetSuperuser flips the super-admin flag on an existing user.
func (r *UsersRepository) SetSuperuser(ctx context.Context, id uint, superuser bool) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("is_superuser", superuser).Error
}

func (r *UsersRepository) UserHasRole(ctx context.Context, userID uint, role Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}

func (r *UsersRepository) ListRoles(ctx context.Context, userID uint) ([]Role, error) {
	var roles []Role
	err := r.db.WithContext(ctx).Model(&UserRole{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &roles).Error
	return roles, err
}

// AddUserRole is idempotent.
func (r *UsersRepository) AddUserRole(ctx context.Context, userID uint, role Role) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&UserRole{UserID: userID, Role: role}).Error
	if isForeignKeyViolation(err) {
		return ErrUserNotFound
	}
	return err
}

// RemoveUserRole is idempotent: removing a role the user lacks succeeds.
func (r *UsersRepository) RemoveUserRole(ctx context.Context, userID uint, role Role) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&UserRole{}).Error
}

func (r *UsersRepository) ListUsersWithRole(ctx context.Context, role Role) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role = ?", role).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// GetOrCreateToken returns the user's existing token, storing candidate when
// the user has none yet.
func (r *UsersRepository) GetOrCreateToken(ctx context.Context, candidate *Token) (*Token, error) {
	var token Token
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(candidate).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", candidate.UserID).First(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *UsersRepository) GetUserByToken(ctx context.Context, key string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Joins("JOIN tokens ON tokens.user_id = users.id").
		Where("tokens.key = ?", key).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
