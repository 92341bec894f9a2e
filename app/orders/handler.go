package orders

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/littlelemon/ordering-api/app/api"
	"github.com/littlelemon/ordering-api/models"
)

type ItemResponse struct {
	MenuItem  string `json:"menuitem"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Price     string `json:"price"`
}

type OrderResponse struct {
	ID           uint           `json:"id"`
	User         uint           `json:"user"`
	DeliveryCrew *uint          `json:"delivery_crew"`
	Status       bool           `json:"status"`
	Total        string         `json:"total"`
	Date         string         `json:"date"`
	Items        []ItemResponse `json:"order_items"`
}

type ListResponse struct {
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Orders  []OrderResponse `json:"orders"`
}

type OrderHandler struct {
	service *Service
	perPage int
}

func NewOrderHandler(service *Service, perPage int) *OrderHandler {
	if service == nil {
		panic("order service cannot be nil")
	}
	if perPage < 1 {
		perPage = 10
	}
	return &OrderHandler{service: service, perPage: perPage}
}

func toOrderResponse(o models.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			MenuItem:  it.MenuItemSlug,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Price:     it.Price.StringFixed(2),
		}
	}
	return OrderResponse{
		ID:           o.ID,
		User:         o.UserID,
		DeliveryCrew: o.DeliveryCrewID,
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		Date:         o.Date.Format("2006-01-02"),
		Items:        items,
	}
}

func orderID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		return 0, models.ErrOrderNotFound
	}
	return uint(id), nil
}

func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := api.ParsePage(r, h.perPage)

	var status *bool
	if sStr := r.URL.Query().Get("status"); sStr != "" {
		v, err := strconv.ParseBool(sStr)
		if err != nil {
			api.WriteError(w, r, models.Validation("status must be true or false"), "")
			return
		}
		status = &v
	}

	res, total, err := h.service.List(r.Context(), status, page.Offset(), page.PerPage)
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch orders")
		return
	}

	orders := make([]OrderResponse, len(res))
	for i, o := range res {
		orders[i] = toOrderResponse(o)
	}
	api.OKResponse(w, http.StatusOK, ListResponse{
		Total:   int(total),
		Page:    page.Number,
		PerPage: page.PerPage,
		Orders:  orders,
	})
}

func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err, "Failed to fetch order")
		return
	}
	api.OKResponse(w, http.StatusOK, toOrderResponse(*order))
}

func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	order, err := h.service.Create(r.Context(), input)
	if err != nil {
		api.WriteError(w, r, err, "Failed to create order")
		return
	}
	api.OKResponse(w, http.StatusCreated, toOrderResponse(*order))
}

func (h *OrderHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	var patch map[string]json.RawMessage
	if err := api.DecodeJSON(r, &patch); err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	order, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		api.WriteError(w, r, err, "Failed to update order")
		return
	}
	api.OKResponse(w, http.StatusOK, toOrderResponse(*order))
}

func (h *OrderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	// a malformed id must not hide the permission error
	if err := h.service.AuthorizeDelete(r.Context()); err != nil {
		api.WriteError(w, r, err, "Failed to delete order")
		return
	}

	id, err := orderID(r)
	if err != nil {
		api.WriteError(w, r, err, "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		api.WriteError(w, r, err, "Failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
