package storefront

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/vanir/internal/middleware"
)

// BaseTemplateData returns common data for all templates: the year, the
// signed-in user, and the cart badge count.
func BaseTemplateData(r *http.Request) map[string]interface{} {
	data := map[string]interface{}{
		"Year": time.Now().Year(),
	}
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		data["User"] = user
	}
	if sess := middleware.GetSession(r.Context()); sess != nil {
		data["CartLen"] = sess.CartLen()
	}
	return data
}

// formID parses an int64 form or path value, returning 0 when absent or
// malformed.
func formID(value string) int64 {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
