package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuItemsRepository struct {
	db *gorm.DB
}

type MenuItemFilters struct {
	CategorySlug string
	CategoryID   uint
	// OrderBy is one of price, -price, title, -title. Empty means price.
	OrderBy string
}

var menuItemOrdering = map[string]clause.OrderByColumn{
	"price":  {Column: clause.Column{Table: "menu_items", Name: "price"}},
	"-price": {Column: clause.Column{Table: "menu_items", Name: "price"}, Desc: true},
	"title":  {Column: clause.Column{Table: "menu_items", Name: "title"}},
	"-title": {Column: clause.Column{Table: "menu_items", Name: "title"}, Desc: true},
}

// ValidOrdering reports whether the menu items can be sorted by key.
func ValidOrdering(key string) bool {
	_, ok := menuItemOrdering[key]
	return ok
}

func NewMenuItemsRepository(db *gorm.DB) *MenuItemsRepository {
	return &MenuItemsRepository{
		db: db,
	}
}

func (r *MenuItemsRepository) GetFilteredMenuItems(ctx context.Context, offset, limit int, filters MenuItemFilters) ([]MenuItem, int64, error) {
	var items []MenuItem
	var total int64

	query := r.db.WithContext(ctx).Model(&MenuItem{}).
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id")

	// Filter
	if filters.CategorySlug != "" {
		query = query.Where("categories.slug = ?", filters.CategorySlug)
	}
	if filters.CategoryID != 0 {
		query = query.Where("menu_items.category_id = ?", filters.CategoryID)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := menuItemOrdering[filters.OrderBy]
	if !ok {
		order = menuItemOrdering["price"]
	}
	// slug breaks ties so pages are stable
	query = query.Preload("Category").Order(order).Order("menu_items.slug")

	// Apply pagination
	if err := query.Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *MenuItemsRepository) GetBySlug(ctx context.Context, slug string) (*MenuItem, error) {
	var item MenuItem
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err // Other DB error
	}
	return &item, nil
}

// GetBySlugs returns the menu items found among slugs, keyed by slug.
func (r *MenuItemsRepository) GetBySlugs(ctx context.Context, slugs []string) (map[string]MenuItem, error) {
	found := make(map[string]MenuItem, len(slugs))
	if len(slugs) == 0 {
		return found, nil
	}
	var items []MenuItem
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		found[item.Slug] = item
	}
	return found, nil
}

func (r *MenuItemsRepository) CreateMenuItem(ctx context.Context, item *MenuItem) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
	switch {
	case err == nil:
		return r.loadCategory(ctx, item)
	case isUniqueViolation(err):
		return Conflict("menu item with slug %q already exists", item.Slug)
	case isForeignKeyViolation(err):
		return Validation("category %d does not exist", item.CategoryID)
	default:
		return err
	}
}

// UpdateMenuItem writes every mutable column of an existing menu item.
func (r *MenuItemsRepository) UpdateMenuItem(ctx context.Context, item *MenuItem) error {
	res := r.db.WithContext(ctx).Model(&MenuItem{}).
		Where("slug = ?", item.Slug).
		Updates(map[string]any{
			"title":       item.Title,
			"price":       item.Price,
			"featured":    item.Featured,
			"category_id": item.CategoryID,
		})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return Validation("category %d does not exist", item.CategoryID)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return r.loadCategory(ctx, item)
}

// DeleteMenuItem removes a menu item. Cart lines and order lines that reference
// it are deleted with it; Order.Total is not recomputed, so a placed order can
// end up with a total larger than the sum of its remaining lines.
func (r *MenuItemsRepository) DeleteMenuItem(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&MenuItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *MenuItemsRepository) loadCategory(ctx context.Context, item *MenuItem) error {
	// a stale primary key on the loaded struct would be added to the WHERE clause
	item.Category = Category{}
	return r.db.WithContext(ctx).First(&item.Category, item.CategoryID).Error
}
