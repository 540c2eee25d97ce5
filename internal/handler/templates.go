package handler

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// TemplateFuncs returns the FuncMap shared by all page templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"year": func() int {
			return time.Now().Year()
		},
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
	}
}
