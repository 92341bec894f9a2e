package cart

import (
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/models"
)

type LineResponse struct {
	ID        uint   `json:"id"`
	MenuItem  string `json:"menuitem"`
	Title     string `json:"title,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Price     string `json:"price"`
}

type CartHandler struct {
	service *Service
}

func NewCartHandler(service *Service) *CartHandler {
	if service == nil {
		panic("cart service cannot be nil")
	}
	return &CartHandler{service: service}
}

func toLineResponse(l models.CartLine) LineResponse {
	resp := LineResponse{
		ID:        l.ID,
		MenuItem:  l.MenuItemSlug,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice.StringFixed(2),
		Price:     l.Price.StringFixed(2),
	}
	if l.MenuItem != nil {
		resp.Title = l.MenuItem.Title
	}
	return resp
}

func (h *CartHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.Lines(r.Context())
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch cart")
		return
	}

	response := make([]LineResponse, len(lines))
	for i, l := range lines {
		response[i] = toLineResponse(l)
	}
	api.OKResponse(w, http.StatusOK, response)
}

func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MenuItem string `json:"menuitem"`
		Quantity int    `json:"quantity"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	line, err := h.service.AddLine(r.Context(), input.MenuItem, input.Quantity)
	if err != nil {
		api.WriteError(w, r, err, "Failed to add to cart")
		return
	}
	api.OKResponse(w, http.StatusCreated, toLineResponse(*line))
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Clear(r.Context())
	if err != nil {
		api.WriteError(w, r, err, "Failed to clear cart")
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]any{
		"detail":  "All cart items deleted.",
		"deleted": deleted,
	})
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		api.WriteError(w, r, models.ErrCartLineNotFound, "")
		return
	}

	if err := h.service.Remove(r.Context(), uint(id)); err != nil {
		api.WriteError(w, r, err, "Failed to remove cart item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
