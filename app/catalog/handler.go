package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
	"github.com/shopspring/decimal"
)

const managersOnly = "Only Admin or Managers are allowed to perform this action."

type Response struct {
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
	MenuItems []MenuItem `json:"menu_items"`
}

type Category struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type MenuItem struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Price    string   `json:"price"`
	Featured bool     `json:"featured"`
	Category Category `json:"category"`
}

type MenuItemProvider interface {
	GetFilteredMenuItems(ctx context.Context, offset, limit int, filters models.MenuItemFilters) ([]models.MenuItem, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, slug string) error
}

type CategoryLookup interface {
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
}

// ManagerGate authorizes manager-only writes.
type ManagerGate interface {
	RequireManager(ctx context.Context, msg string) (*auth.Identity, error)
}

type CatalogHandler struct {
	repo       MenuItemProvider
	categories CategoryLookup
	gate       ManagerGate
	perPage    int
}

func NewCatalogHandler(r MenuItemProvider, categories CategoryLookup, gate ManagerGate, perPage int) *CatalogHandler {
	if perPage < 1 {
		perPage = 2
	}
	return &CatalogHandler{
		repo:       r,
		categories: categories,
		gate:       gate,
		perPage:    perPage,
	}
}

func toMenuItem(m models.MenuItem) MenuItem {
	return MenuItem{
		Slug:     m.Slug,
		Title:    m.Title,
		Price:    m.Price.StringFixed(2),
		Featured: m.Featured,
		Category: Category{
			ID:    m.Category.ID,
			Title: m.Category.Title,
			Slug:  m.Category.Slug,
		},
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePage(r, h.perPage)

	// Unknown ordering keys are ignored
	ordering := r.URL.Query().Get("ordering")
	if !models.ValidOrdering(ordering) {
		ordering = ""
	}

	filters := models.MenuItemFilters{
		CategorySlug: r.URL.Query().Get("category"),
		OrderBy:      ordering,
	}

	res, total, err := h.repo.GetFilteredMenuItems(r.Context(), page.Offset(), page.PerPage, filters)
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch menu items")
		return
	}

	items := make([]MenuItem, len(res))
	for i, m := range res {
		items[i] = toMenuItem(m)
	}

	api.OKResponse(w, http.StatusOK, Response{
		Total:     int(total),
		Page:      page.Number,
		PerPage:   page.PerPage,
		MenuItems: items,
	})
}

// HandleGetByCategory lists every menu item of one category, unpaginated.
func (h *CatalogHandler) HandleGetByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		api.WriteError(w, r, models.ErrCategoryNotFound, "")
		return
	}
	if _, err := h.categories.GetCategory(r.Context(), uint(id)); err != nil {
		api.WriteError(w, r, err, "Failed to fetch category")
		return
	}

	// a negative limit disables LIMIT
	res, _, err := h.repo.GetFilteredMenuItems(r.Context(), 0, -1, models.MenuItemFilters{CategoryID: uint(id)})
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch menu items")
		return
	}

	items := make([]MenuItem, len(res))
	for i, m := range res {
		items[i] = toMenuItem(m)
	}
	api.OKResponse(w, http.StatusOK, items)
}

func (h *CatalogHandler) HandleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	item, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch menu item")
		return
	}
	api.OKResponse(w, http.StatusOK, toMenuItem(*item))
}

type menuItemInput struct {
	Title    *string          `json:"title"`
	Slug     string           `json:"slug"`
	Price    *decimal.Decimal `json:"price"`
	Featured *bool            `json:"featured"`
	Category *uint            `json:"category"`
}

// complete fills item from a full representation; every field but slug is required.
func (in menuItemInput) complete(item *models.MenuItem) error {
	switch {
	case in.Title == nil:
		return models.Validation("title is required")
	case in.Price == nil:
		return models.Validation("price is required")
	case in.Featured == nil:
		return models.Validation("featured is required")
	case in.Category == nil:
		return models.Validation("category is required")
	}
	in.apply(item)
	return nil
}

// apply copies the fields present in the input onto item.
func (in menuItemInput) apply(item *models.MenuItem) {
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}
	if in.Category != nil {
		item.CategoryID = *in.Category
	}
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	var input menuItemInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	item := &models.MenuItem{Slug: input.Slug}
	if err := input.complete(item); err != nil {
		api.WriteError(w, r, err, "")
		return
	}
	if err := item.Normalize(); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	if err := h.repo.CreateMenuItem(r.Context(), item); err != nil {
		api.WriteError(w, r, err, "Failed to create menu item")
		return
	}
	api.OKResponse(w, http.StatusCreated, toMenuItem(*item))
}

// HandleReplace is PUT: every writable field must be supplied. The slug stays.
func (h *CatalogHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	var input menuItemInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	item, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch menu item")
		return
	}
	if err := input.complete(item); err != nil {
		api.WriteError(w, r, err, "")
		return
	}
	h.save(w, r, item)
}

// HandlePatch is a partial update of title, price, featured and category.
func (h *CatalogHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	var input menuItemInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	item, err := h.repo.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch menu item")
		return
	}
	input.apply(item)
	h.save(w, r, item)
}

func (h *CatalogHandler) save(w http.ResponseWriter, r *http.Request, item *models.MenuItem) {
	if err := item.Normalize(); err != nil {
		api.WriteError(w, r, err, "")
		return
	}
	if err := h.repo.UpdateMenuItem(r.Context(), item); err != nil {
		api.WriteError(w, r, err, "Failed to update menu item")
		return
	}
	api.OKResponse(w, http.StatusOK, toMenuItem(*item))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	if err := h.repo.DeleteMenuItem(r.Context(), r.PathValue("slug")); err != nil {
		api.WriteError(w, r, err, "Failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
