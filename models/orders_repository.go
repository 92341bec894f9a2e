package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// CreateOrder writes the order and its items in one transaction. Either both
// become visible or neither does.
func (r *OrdersRepository) CreateOrder(ctx context.Context, order *Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		return tx.Omit(clause.Associations).Create(&order.Items).Error
	})
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return Validation("each menu item may appear only once per order")
	case isForeignKeyViolation(err):
		return Validation("order references a menu item or user that does not exist")
	case isOutOfRange(err):
		return Validation("order total is too large")
	default:
		return err
	}
}

func (r *OrdersRepository) scoped(ctx context.Context, filters OrderFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&Order{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DeliveryCrewID != nil {
		query = query.Where("delivery_crew_id = ?", *filters.DeliveryCrewID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}

func (r *OrdersRepository) GetOrder(ctx context.Context, id uint, filters OrderFilters) (*Order, error) {
	var order Order
	err := r.scoped(ctx, filters).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) ListOrders(ctx context.Context, filters OrderFilters, offset, limit int) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.scoped(ctx, filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrdersRepository) UpdateOrderStatus(ctx context.Context, id uint, status bool) error {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateDeliveryCrew assigns the order to crewID, or clears it when nil.
func (r *OrdersRepository) UpdateDeliveryCrew(ctx context.Context, id uint, crewID *uint) error {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("delivery_crew_id", crewID)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return Validation("delivery crew user does not exist")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the order together with its items.
func (r *OrdersRepository) DeleteOrder(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}
