package models

import "github.com/shopspring/decimal"

// CartLine is one menu item staged by a user. There is at most one line per
// (user, menu item) pair.
type CartLine struct {
	ID           uint            `gorm:"primaryKey"`
	UserID       uint            `gorm:"not null;uniqueIndex:idx_cart_user_menuitem"`
	User         *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MenuItemSlug string          `gorm:"column:menuitem;size:255;not null;uniqueIndex:idx_cart_user_menuitem"`
	MenuItem     *MenuItem       `gorm:"foreignKey:MenuItemSlug;references:Slug;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (c *CartLine) TableName() string {
	return "cart"
}

// PriceFrom snapshots the menu item's current price onto the line and recomputes
// the line total. It must run on every write.
func (c *CartLine) PriceFrom(item MenuItem) error {
	if c.Quantity <= 0 {
		return Validation("quantity must be a positive integer")
	}
	c.MenuItemSlug = item.Slug
	c.UnitPrice = item.Price
	c.Price = LinePrice(item.Price, c.Quantity)
	return nil
}

// LinePrice is quantity × unit price in monetary precision.
func LinePrice(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
