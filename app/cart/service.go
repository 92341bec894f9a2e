package cart

import (
	"context"
	"errors"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
)

type Store interface {
	CreateCartLine(ctx context.Context, line *models.CartLine) error
	ListCartLines(ctx context.Context, userID uint) ([]models.CartLine, error)
	DeleteCartLines(ctx context.Context, userID uint) (int64, error)
	DeleteCartLine(ctx context.Context, userID, id uint) error
}

type MenuLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.MenuItem, error)
}

// Service manages the caller's own cart. Every operation requires an identity.
type Service struct {
	store Store
	menu  MenuLookup
}

func NewService(store Store, menu MenuLookup) *Service {
	if store == nil || menu == nil {
		panic("cart service missing required dependency")
	}
	return &Service{store: store, menu: menu}
}

// AddLine stages quantity units of a menu item at its current price. Adding
// an item that is already in the cart is a Conflict; lines are never merged.
func (s *Service) AddLine(ctx context.Context, slug string, quantity int) (*models.CartLine, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, models.Validation("menuitem is required")
	}

	item, err := s.menu.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.Validation("menu item %q does not exist", slug)
		}
		return nil, err
	}

	line := &models.CartLine{UserID: who.UserID, Quantity: quantity}
	if err := line.PriceFrom(*item); err != nil {
		return nil, err
	}
	if err := s.store.CreateCartLine(ctx, line); err != nil {
		return nil, err
	}
	line.MenuItem = item

	zerolog.Ctx(ctx).Debug().Str("menuitem", slug).Int("quantity", quantity).Msg("cart line added")
	return line, nil
}

func (s *Service) Lines(ctx context.Context) ([]models.CartLine, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListCartLines(ctx, who.UserID)
}

// Clear empties the caller's cart and returns the number of removed lines.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.DeleteCartLines(ctx, who.UserID)
}

// Remove deletes one line. Lines of other users are reported as missing.
func (s *Service) Remove(ctx context.Context, id uint) error {
	who, err := auth.Require(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteCartLine(ctx, who.UserID, id)
}
