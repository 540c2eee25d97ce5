package storefront

import (
	"fmt"
	"net/http"

	"github.com/dukerupert/vanir/internal/cookie"
	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/dukerupert/vanir/internal/session"
)

// CheckoutHandler drives the four-step checkout wizard over HTTP. The step
// travels as the "step" query parameter, so each page is bookmarkable and
// the back button works.
type CheckoutHandler struct {
	checkout service.CheckoutService
	catalog  service.CatalogService
	cart     service.CartService
	cookies  *cookie.Config
	renderer *handler.Renderer
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(
	checkout service.CheckoutService,
	catalog service.CatalogService,
	cart service.CartService,
	cookies *cookie.Config,
	renderer *handler.Renderer,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		catalog:  catalog,
		cart:     cart,
		cookies:  cookies,
		renderer: renderer,
	}
}

// Page handles GET /checkout?step=N.
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request) {
	step := domain.ParseCheckoutStep(r.URL.Query().Get("step"))
	sess := middleware.GetSession(r.Context())

	data, err := h.stepData(r, sess, step)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, stepTemplate(step), data)
}

// Submit handles POST /checkout?step=N, advancing the wizard on success and
// re-rendering the step with field errors otherwise.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	step := domain.ParseCheckoutStep(r.URL.Query().Get("step"))
	sess := middleware.GetSession(r.Context())

	switch step {
	case domain.StepClientInfo:
		err := h.checkout.SubmitClientInfo(r.Context(), sess, service.ClientInfoForm{
			Name:      r.FormValue("name"),
			Phone:     r.FormValue("phone"),
			Email:     r.FormValue("email"),
			Password1: r.FormValue("password1"),
			Password2: r.FormValue("password2"),
		})
		if err != nil {
			h.renderStepError(w, r, sess, step, err)
			return
		}
		// Signup rotates the session token; refresh the cookie.
		h.setSessionCookie(w, sess)

	case domain.StepDelivery:
		err := h.checkout.SubmitDelivery(r.Context(), sess, service.DeliveryForm{
			DeliverID: formID(r.FormValue("deliver_id")),
			City:      r.FormValue("city"),
			Address:   r.FormValue("address"),
		})
		if err != nil {
			h.renderStepError(w, r, sess, step, err)
			return
		}

	case domain.StepPayment:
		clamped, err := h.checkout.SubmitPayment(r.Context(), sess, service.PaymentForm{
			Payment: r.FormValue("payment"),
			Comment: r.FormValue("comment"),
		})
		if err != nil {
			h.renderStepError(w, r, sess, step, err)
			return
		}
		if len(clamped) > 0 {
			// The cart changed under the customer; show the final step
			// with a notice instead of silently committing less.
			data, derr := h.stepData(r, sess, domain.StepSubmit)
			if derr != nil {
				handler.ErrorResponse(w, r, derr)
				return
			}
			data["Clamped"] = clamped
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			h.renderer.RenderHTTP(w, stepTemplate(domain.StepSubmit), data)
			return
		}

	case domain.StepSubmit:
		order, err := h.checkout.Commit(r.Context(), sess)
		if err != nil {
			h.renderStepError(w, r, sess, step, err)
			return
		}
		if order.Payment == domain.PaymentOnline {
			http.Redirect(w, r, fmt.Sprintf("/payment/%d", order.ID), http.StatusSeeOther)
		} else {
			http.Redirect(w, r, fmt.Sprintf("/payment/%d/someone", order.ID), http.StatusSeeOther)
		}
		return
	}

	next := step.Next()
	http.Redirect(w, r, fmt.Sprintf("/checkout?step=%d", next), http.StatusSeeOther)
}

// Login handles POST /checkout/login: signing in mid-checkout without
// losing the cart or the fields entered so far.
func (h *CheckoutHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	sess := middleware.GetSession(r.Context())

	err := h.checkout.Login(r.Context(), sess, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		h.renderStepError(w, r, sess, domain.StepClientInfo, err)
		return
	}
	h.setSessionCookie(w, sess)

	http.Redirect(w, r, "/checkout?step=1", http.StatusSeeOther)
}

func (h *CheckoutHandler) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	h.cookies.SetSession(w, cookie.SessionCookieName, sess.Token(),
		int(session.DefaultTTL.Seconds()))
}

func (h *CheckoutHandler) stepData(r *http.Request, sess *session.Session, step domain.CheckoutStep) (map[string]interface{}, error) {
	data := BaseTemplateData(r)
	data["Step"] = int(step)
	if step == domain.StepClientInfo {
		// Returning customers get their account contact info prefilled.
		data["Fields"] = h.checkout.ClientInfo(r.Context(), sess)
	} else {
		data["Fields"] = sess.Checkout()
	}

	switch step {
	case domain.StepDelivery:
		delivers, err := h.catalog.ListDelivers(r.Context())
		if err != nil {
			return nil, err
		}
		data["Delivers"] = delivers

	case domain.StepPayment, domain.StepSubmit:
		quote, err := h.checkout.Quote(r.Context(), sess)
		if err != nil {
			return nil, err
		}
		data["Quote"] = quote
	}
	return data, nil
}

func (h *CheckoutHandler) renderStepError(w http.ResponseWriter, r *http.Request, sess *session.Session, step domain.CheckoutStep, err error) {
	if !domain.IsValidationError(err) && domain.ErrorCode(err) == domain.EINTERNAL {
		handler.ErrorResponse(w, r, err)
		return
	}

	data, derr := h.stepData(r, sess, step)
	if derr != nil {
		handler.ErrorResponse(w, r, derr)
		return
	}
	if fields := domain.GetValidationFields(err); fields != nil {
		data["Errors"] = fields
	} else {
		data["Error"] = domain.ErrorMessage(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, stepTemplate(step), data)
}

func stepTemplate(step domain.CheckoutStep) string {
	switch step {
	case domain.StepDelivery:
		return "checkout_delivery"
	case domain.StepPayment:
		return "checkout_payment"
	case domain.StepSubmit:
		return "checkout_submit"
	default:
		return "checkout_client"
	}
}
