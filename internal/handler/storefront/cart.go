package storefront

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/service"
)

// CartHandler handles the session cart routes.
type CartHandler struct {
	cart     service.CartService
	renderer *handler.Renderer
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, renderer *handler.Renderer) *CartHandler {
	return &CartHandler{cart: cart, renderer: renderer}
}

// View handles GET /cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	summary, err := h.cart.Summary(r.Context(), sess)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	data := BaseTemplateData(r)
	data["Summary"] = summary
	data["CartLen"] = sess.CartLen()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "cart", data)
}

// Add handles POST /cart/add. With override=1 the quantity replaces the
// line's quantity instead of adding to it.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	positionID := formID(r.FormValue("position_id"))
	if positionID == 0 {
		handler.ErrorResponse(w, r, service.ErrPositionNotFound)
		return
	}
	quantity, err := strconv.ParseInt(r.FormValue("quantity"), 10, 32)
	if err != nil {
		handler.ErrorResponse(w, r, service.ErrInvalidQuantity)
		return
	}
	override := r.FormValue("override") == "1"

	sess := middleware.GetSession(r.Context())
	if err := h.cart.AddItem(r.Context(), sess, positionID, int32(quantity), override); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Remove handles POST /cart/remove.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	positionID := formID(r.FormValue("position_id"))
	sess := middleware.GetSession(r.Context())
	h.cart.RemoveItem(sess, positionID)

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
