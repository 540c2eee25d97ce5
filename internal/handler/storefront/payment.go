package storefront

import (
	"fmt"
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/service"
)

// PaymentHandler handles the post-checkout payment pages: entering a card,
// sharing a pay-for-me link, and polling the confirmation outcome.
type PaymentHandler struct {
	orders   service.OrderService
	checkout service.CheckoutService
	baseURL  string
	renderer *handler.Renderer
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(orders service.OrderService, checkout service.CheckoutService, baseURL string, renderer *handler.Renderer) *PaymentHandler {
	return &PaymentHandler{orders: orders, checkout: checkout, baseURL: baseURL, renderer: renderer}
}

// Page handles GET /payment/{id}: the card form.
func (h *PaymentHandler) Page(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	data := BaseTemplateData(r)
	data["Order"] = detail.Order
	data["Total"] = detail.TotalPrice()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "payment", data)
}

// Someone handles GET /payment/{id}/someone: a shareable link a third party
// can use to pay the order.
func (h *PaymentHandler) Someone(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	data := BaseTemplateData(r)
	data["Order"] = detail.Order
	data["Total"] = detail.TotalPrice()
	data["PayLink"] = fmt.Sprintf("%s/payment/%d", h.baseURL, detail.Order.ID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "payment_someone", data)
}

// SubmitCard handles POST /payment/{id}: queues the asynchronous
// confirmation and sends the customer to the status page.
func (h *PaymentHandler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	orderID := formID(r.PathValue("id"))

	if err := h.checkout.SubmitCard(r.Context(), orderID, r.FormValue("card_number")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/payment/%d/status", orderID), http.StatusSeeOther)
}

// Status handles GET /payment/{id}/status: confirmation may still be in
// flight, so the page refreshes itself until the order leaves created.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	data := BaseTemplateData(r)
	data["Order"] = detail.Order
	data["Pending"] = detail.Order.Status == domain.OrderStatusCreated

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "payment_status", data)
}

func (h *PaymentHandler) loadOrder(w http.ResponseWriter, r *http.Request) (*domain.OrderDetail, bool) {
	orderID := formID(r.PathValue("id"))
	if orderID == 0 {
		handler.ErrorResponse(w, r, service.ErrOrderNotFound)
		return nil, false
	}
	detail, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return nil, false
	}
	return detail, true
}
