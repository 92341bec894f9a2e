package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// CreateCartLine inserts a priced line. The (user, menu item) unique index
// decides concurrent duplicates: the loser gets a Conflict.
func (r *CartRepository) CreateCartLine(ctx context.Context, line *CartLine) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return Conflict("menu item %q is already in the cart", line.MenuItemSlug)
	case isForeignKeyViolation(err):
		return Validation("menu item %q does not exist", line.MenuItemSlug)
	case isOutOfRange(err):
		return Validation("line price is too large")
	default:
		return err
	}
}

func (r *CartRepository) ListCartLines(ctx context.Context, userID uint) ([]CartLine, error) {
	var lines []CartLine
	err := r.db.WithContext(ctx).
		Preload("MenuItem").
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

// DeleteCartLines empties the user's cart and reports how many lines went.
func (r *CartRepository) DeleteCartLines(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartLine{})
	return res.RowsAffected, res.Error
}

// DeleteCartLine removes one line owned by userID.
func (r *CartRepository) DeleteCartLine(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}
