package categories

import (
	"context"
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/app/auth"
	"github.com/littlelemon/ordering-api/models"
)

const managersOnly = "Only Admin or Managers are allowed to perform this action."

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

// ManagerGate authorizes manager-only writes.
type ManagerGate interface {
	RequireManager(ctx context.Context, msg string) (*auth.Identity, error)
}

type CategoryHandler struct {
	repo CategoryProvider
	gate ManagerGate
}

func NewCategoryHandler(r CategoryProvider, gate ManagerGate) *CategoryHandler {
	return &CategoryHandler{repo: r, gate: gate}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.WriteError(w, r, err, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:    c.ID,
			Title: c.Title,
			Slug:  c.Slug,
		}
	}
	api.OKResponse(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	var input struct {
		Title string `json:"title"`
		Slug  string `json:"slug"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	category := &models.Category{
		Title: input.Title,
		Slug:  input.Slug,
	}
	if err := category.Normalize(); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		api.WriteError(w, r, err, "Failed to create category")
		return
	}

	api.OKResponse(w, http.StatusCreated, CategoryResponse{
		ID:    category.ID,
		Title: category.Title,
		Slug:  category.Slug,
	})
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireManager(r.Context(), managersOnly); err != nil {
		api.WriteError(w, r, err, "Failed to check permissions")
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		api.WriteError(w, r, models.ErrCategoryNotFound, "")
		return
	}

	if err := h.repo.DeleteCategory(r.Context(), uint(id)); err != nil {
		api.WriteError(w, r, err, "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
