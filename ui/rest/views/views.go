// Package views holds the server-rendered pages for the dashboard and the
// agent inbox.
package views

import (
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed *.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "*.html"))

// Render writes one named template as an HTML response.
func Render(c *fiber.Ctx, name string, data any) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return templates.ExecuteTemplate(c.Response().BodyWriter(), name, data)
}
