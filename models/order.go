package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a priced, immutable snapshot of requested menu items.
// Status false means placed, true means fulfilled.
type Order struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"not null;index"`
	User           *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DeliveryCrewID *uint           `gorm:"index"`
	DeliveryCrew   *User           `gorm:"foreignKey:DeliveryCrewID;constraint:OnDelete:SET NULL"`
	Status         bool            `gorm:"not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Date           time.Time       `gorm:"type:date;not null;index"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderItem is immutable once its order is created.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey"`
	OrderID      uint            `gorm:"not null;uniqueIndex:idx_order_menuitem"`
	MenuItemSlug string          `gorm:"column:menuitem;size:255;not null;uniqueIndex:idx_order_menuitem"`
	MenuItem     *MenuItem       `gorm:"foreignKey:MenuItemSlug;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem prices quantity units of item at the item's current price.
func NewOrderItem(item MenuItem, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, Validation("quantity for %q must be a positive integer", item.Slug)
	}
	return OrderItem{
		MenuItemSlug: item.Slug,
		Quantity:     quantity,
		UnitPrice:    item.Price,
		Price:        LinePrice(item.Price, quantity),
	}, nil
}

// OrderTotal sums the line prices.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total.Round(2)
}

// OrderFilters restricts which orders a query sees.
type OrderFilters struct {
	UserID         *uint
	DeliveryCrewID *uint
	Status         *bool
}
