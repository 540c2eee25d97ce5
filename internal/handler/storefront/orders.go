package storefront

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/service"
)

// OrderHandler handles order history and order detail pages.
type OrderHandler struct {
	orders   service.OrderService
	renderer *handler.Renderer
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, renderer *handler.Renderer) *OrderHandler {
	return &OrderHandler{orders: orders, renderer: renderer}
}

// List handles GET /account/orders. Registered behind RequireAuth.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	orders, err := h.orders.ListForClient(r.Context(), user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	data := BaseTemplateData(r)
	data["Orders"] = orders

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "orders", data)
}

// Detail handles GET /orders/{id}. Guest orders are visible to anyone who
// holds the ID; orders tied to an account only to their owner.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	orderID := formID(r.PathValue("id"))
	if orderID == 0 {
		handler.ErrorResponse(w, r, service.ErrOrderNotFound)
		return
	}

	detail, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if detail.Order.ClientID != nil {
		user := middleware.GetUserFromContext(r.Context())
		if user == nil || user.ID != *detail.Order.ClientID {
			handler.ErrorResponse(w, r, domain.Errorf(domain.EFORBIDDEN, "order.detail",
				"You don't have access to this order"))
			return
		}
	}

	data := BaseTemplateData(r)
	data["Order"] = detail.Order
	data["Items"] = detail.Items
	data["Total"] = detail.TotalPrice()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "order_detail", data)
}
