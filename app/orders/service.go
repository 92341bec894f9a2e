package orders

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/rs/zerolog"
)

const (
	msgCrewStatusOnly   = "Delivery crew can only update the status field."
	msgManagerCrewOnly  = "Managers can only update the delivery_crew field."
	msgUpdateForbidden  = "Only Managers or Delivery crew can update orders."
	msgDeleteForbidden  = "Only Managers can delete orders."
	msgNotDeliveryCrew  = "Selected user is not in the Delivery crew."
	fieldStatus         = "status"
	fieldDeliveryCrewID = "delivery_crew"
)

type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uint, filters models.OrderFilters) (*models.Order, error)
	ListOrders(ctx context.Context, filters models.OrderFilters, offset, limit int) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uint, status bool) error
	UpdateDeliveryCrew(ctx context.Context, id uint, crewID *uint) error
	DeleteOrder(ctx context.Context, id uint) error
}

type MenuLookup interface {
	GetBySlugs(ctx context.Context, slugs []string) (map[string]models.MenuItem, error)
}

type RoleChecker interface {
	HasRole(ctx context.Context, userID uint, role models.Role) (bool, error)
	IsManager(ctx context.Context, who *auth.Identity) (bool, error)
}

type ItemRequest struct {
	MenuItem string `json:"menuitem"`
	Quantity int    `json:"quantity"`
}

type CreateRequest struct {
	Items        []ItemRequest `json:"order_items"`
	DeliveryCrew *uint         `json:"delivery_crew"`
}

// Service is the order engine: pricing, role-scoped reads and
// field-restricted updates.
type Service struct {
	store Store
	menu  MenuLookup
	roles RoleChecker
	now   func() time.Time
}

func NewService(store Store, menu MenuLookup, roles RoleChecker) *Service {
	if store == nil || menu == nil || roles == nil {
		panic("order service missing required dependency")
	}
	return &Service{
		store: store,
		menu:  menu,
		roles: roles,
		now:   time.Now,
	}
}

// Create prices the requested items at current menu prices and stores the
// order with its items atomically.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Order, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	manager, err := s.roles.IsManager(ctx, who)
	if err != nil {
		return nil, err
	}

	// only managers may assign at creation; anyone else's request is ignored
	crewID := req.DeliveryCrew
	if !manager {
		crewID = nil
	}
	if crewID != nil {
		if err := s.requireCrew(ctx, *crewID); err != nil {
			return nil, err
		}
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:         who.UserID,
		DeliveryCrewID: crewID,
		Status:         false,
		Total:          models.OrderTotal(items),
		Date:           today(s.now()),
		Items:          items,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Uint("order_id", order.ID).
		Int("items", len(items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created")
	return order, nil
}

func (s *Service) priceItems(ctx context.Context, reqs []ItemRequest) ([]models.OrderItem, error) {
	slugs := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		slug := strings.TrimSpace(r.MenuItem)
		if slug == "" {
			return nil, models.Validation("each order item needs a menuitem")
		}
		if seen[slug] {
			return nil, models.Validation("menu item %q appears more than once", slug)
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}

	menu, err := s.menu.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(reqs))
	for i, slug := range slugs {
		menuItem, ok := menu[slug]
		if !ok {
			return nil, models.Validation("menu item %q does not exist", slug)
		}
		item, err := models.NewOrderItem(menuItem, reqs[i].Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// scope limits what the caller may see: managers see all orders, delivery
// crew the orders assigned to them, everyone else their own.
func (s *Service) scope(ctx context.Context, who *auth.Identity) (models.OrderFilters, error) {
	manager, err := s.roles.IsManager(ctx, who)
	if err != nil {
		return models.OrderFilters{}, err
	}
	if manager {
		return models.OrderFilters{}, nil
	}
	crew, err := s.roles.HasRole(ctx, who.UserID, models.RoleDeliveryCrew)
	if err != nil {
		return models.OrderFilters{}, err
	}
	id := who.UserID
	if crew {
		return models.OrderFilters{DeliveryCrewID: &id}, nil
	}
	return models.OrderFilters{UserID: &id}, nil
}

// List returns one page of the orders visible to the caller, optionally
// filtered by status.
func (s *Service) List(ctx context.Context, status *bool, offset, limit int) ([]models.Order, int64, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, 0, err
	}
	filters, err := s.scope(ctx, who)
	if err != nil {
		return nil, 0, err
	}
	filters.Status = status
	return s.store.ListOrders(ctx, filters, offset, limit)
}

// Get returns an order visible to the caller; others are NotFound.
func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	who, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	filters, err := s.scope(ctx, who)
	if err != nil {
		return nil, err
	}
	return s.store.GetOrder(ctx, id, filters)
}

// Update applies a partial update. Delivery crew may change exactly the
// status, managers exactly the delivery assignment. The crew check runs
// first, so a user holding both roles updates as crew.
func (s *Service) Update(ctx context.Context, id uint, patch map[string]json.RawMessage) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	who, _ := auth.FromContext(ctx)

	crew, err := s.roles.HasRole(ctx, who.UserID, models.RoleDeliveryCrew)
	if err != nil {
		return nil, err
	}
	if crew {
		if !onlyKey(patch, fieldStatus) {
			return nil, models.PermissionDenied(msgCrewStatusOnly)
		}
		status, err := parseStatus(patch[fieldStatus])
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdateOrderStatus(ctx, order.ID, status); err != nil {
			return nil, err
		}
		order.Status = status
		zerolog.Ctx(ctx).Info().Uint("order_id", order.ID).Bool("status", status).Msg("order status updated")
		return order, nil
	}

	manager, err := s.roles.IsManager(ctx, who)
	if err != nil {
		return nil, err
	}
	if !manager {
		return nil, models.PermissionDenied(msgUpdateForbidden)
	}
	if !onlyKey(patch, fieldDeliveryCrewID) {
		return nil, models.PermissionDenied(msgManagerCrewOnly)
	}
	crewID, err := parseCrewID(patch[fieldDeliveryCrewID])
	if err != nil {
		return nil, err
	}
	if crewID != nil {
		if err := s.requireCrew(ctx, *crewID); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateDeliveryCrew(ctx, order.ID, crewID); err != nil {
		return nil, err
	}
	order.DeliveryCrewID = crewID

	event := zerolog.Ctx(ctx).Info().Uint("order_id", order.ID)
	if crewID != nil {
		event = event.Uint("delivery_crew", *crewID)
	}
	event.Msg("order delivery assignment updated")
	return order, nil
}

// Delete removes an order and its items. Managers only.
// AuthorizeDelete reports whether the caller may delete orders at all.
func (s *Service) AuthorizeDelete(ctx context.Context) error {
	who, err := auth.Require(ctx)
	if err != nil {
		return err
	}
	manager, err := s.roles.IsManager(ctx, who)
	if err != nil {
		return err
	}
	if !manager {
		return models.PermissionDenied(msgDeleteForbidden)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.AuthorizeDelete(ctx); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Uint("order_id", id).Msg("order deleted")
	return nil
}

func (s *Service) requireCrew(ctx context.Context, userID uint) error {
	ok, err := s.roles.HasRole(ctx, userID, models.RoleDeliveryCrew)
	if err != nil {
		return err
	}
	if !ok {
		return models.Validation(msgNotDeliveryCrew)
	}
	return nil
}

// onlyKey reports whether patch has exactly one key, key.
func onlyKey(patch map[string]json.RawMessage, key string) bool {
	_, ok := patch[key]
	return ok && len(patch) == 1
}

func parseStatus(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, models.Validation("status must be a boolean")
	}
	status, ok := v.(bool)
	if !ok {
		return false, models.Validation("status must be a boolean")
	}
	return status, nil
}

// parseCrewID reads a user id; JSON null clears the assignment.
func parseCrewID(raw json.RawMessage) (*uint, error) {
	if strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var id uint
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return nil, models.Validation("delivery_crew must be a user id or null")
	}
	return &id, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
