package storefront

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/service"
)

// ProductHandler handles catalog browsing routes.
type ProductHandler struct {
	catalog  service.CatalogService
	renderer *handler.Renderer
}

// NewProductHandler creates a new product handler.
func NewProductHandler(catalog service.CatalogService, renderer *handler.Renderer) *ProductHandler {
	return &ProductHandler{catalog: catalog, renderer: renderer}
}

// List handles GET / and GET /products, optionally filtered by ?category=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID := formID(r.URL.Query().Get("category"))

	products, err := h.catalog.ListProducts(r.Context(), categoryID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	data := BaseTemplateData(r)
	data["Products"] = products
	data["Categories"] = categories
	data["CategoryID"] = categoryID

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "products", data)
}

// Detail handles GET /products/{id}: the product with all seller positions.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := formID(r.PathValue("id"))
	if id == 0 {
		handler.ErrorResponse(w, r, service.ErrProductNotFound)
		return
	}

	detail, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	data := BaseTemplateData(r)
	data["Product"] = detail.Product
	data["Positions"] = detail.Positions

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderer.RenderHTTP(w, "product_detail", data)
}
