package orders

import (
	"context"
	"sync"

	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/shopspring/decimal"
)

// --- Mock order store ---

type MockOrderStore struct {
	mu     sync.Mutex
	orders []models.Order
	nextID uint
	Err    error
}

func (m *MockOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	order.ID = m.nextID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders = append(m.orders, stored)
	return nil
}

func matches(o models.Order, f models.OrderFilters) bool {
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	if f.DeliveryCrewID != nil && (o.DeliveryCrewID == nil || *o.DeliveryCrewID != *f.DeliveryCrewID) {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	return true
}

func (m *MockOrderStore) GetOrder(_ context.Context, id uint, filters models.OrderFilters) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, o := range m.orders {
		if o.ID == id && matches(o, filters) {
			order := o
			return &order, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *MockOrderStore) ListOrders(_ context.Context, filters models.OrderFilters, offset, limit int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	out := []models.Order{}
	for _, o := range m.orders {
		if matches(o, filters) {
			out = append(out, o)
		}
	}
	total := int64(len(out))
	start := min(offset, len(out))
	end := min(offset+limit, len(out))
	return out[start:end], total, nil
}

func (m *MockOrderStore) find(id uint) *models.Order {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i]
		}
	}
	return nil
}

func (m *MockOrderStore) UpdateOrderStatus(_ context.Context, id uint, status bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.find(id)
	if o == nil {
		return models.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *MockOrderStore) UpdateDeliveryCrew(_ context.Context, id uint, crewID *uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.find(id)
	if o == nil {
		return models.ErrOrderNotFound
	}
	o.DeliveryCrewID = crewID
	return nil
}

func (m *MockOrderStore) DeleteOrder(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return models.ErrOrderNotFound
}

// --- Mock menu ---

type MockMenu map[string]models.MenuItem

func (m MockMenu) GetBySlugs(_ context.Context, slugs []string) (map[string]models.MenuItem, error) {
	found := map[string]models.MenuItem{}
	for _, s := range slugs {
		if item, ok := m[s]; ok {
			found[s] = item
		}
	}
	return found, nil
}

func testMenu() MockMenu {
	return MockMenu{
		"greek-salad":   {Slug: "greek-salad", Price: decimal.RequireFromString("12.50")},
		"bruschetta":    {Slug: "bruschetta", Price: decimal.RequireFromString("5.99")},
		"lemon-dessert": {Slug: "lemon-dessert", Price: decimal.RequireFromString("4.75")},
	}
}

// --- Mock roles ---

const (
	adminID    uint = 1
	managerID  uint = 2
	crewID     uint = 3
	customerA  uint = 4
	customerC  uint = 5
	bothRoleID uint = 6
)

var superusers = map[uint]bool{adminID: true}

type MockRoles map[uint][]models.Role

func (m MockRoles) HasRole(_ context.Context, userID uint, role models.Role) (bool, error) {
	for _, r := range m[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func (m MockRoles) IsManager(ctx context.Context, who *auth.Identity) (bool, error) {
	if who.Superuser {
		return true, nil
	}
	return m.HasRole(ctx, who.UserID, models.RoleManager)
}

func testRoles() MockRoles {
	return MockRoles{
		managerID:  {models.RoleManager},
		crewID:     {models.RoleDeliveryCrew},
		bothRoleID: {models.RoleManager, models.RoleDeliveryCrew},
	}
}

func as(id uint) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{UserID: id, Superuser: superusers[id]})
}

func ptr[T any](v T) *T {
	return &v
}
