// Package web holds the HTML views, embedded into the binary.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/bromosky/aventra/internal/domain"
	"github.com/bromosky/aventra/internal/format"
	"github.com/bromosky/aventra/internal/notification"
)

//go:embed templates/*.html
var templateFS embed.FS

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"rupiah":      rupiah,
		"tanggal":     format.Date,
		"statusTitle": notification.StatusTitle,
		"statusClass": statusClass,
	}
}

// Templates parses every view. Page templates are named after their file.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

func rupiah(v any) string {
	switch n := v.(type) {
	case domain.Number:
		return format.Rupiah(n.Int64())
	case int64:
		return format.Rupiah(n)
	case int:
		return format.Rupiah(int64(n))
	default:
		return format.Rupiah(0)
	}
}

func statusClass(s domain.BookingStatus) string {
	if s == "" {
		s = domain.BookingStatusAwaiting
	}
	return "status-" + strings.ToLower(strings.ReplaceAll(string(s), " ", "-"))
}
