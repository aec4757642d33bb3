package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// OverviewTemplate is the page rendered by Controller by default.
const OverviewTemplate = "overview.html"

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// Renderer is what the controller needs from a template engine. go-template's
// renderer satisfies it.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer loads the embedded overview and nav templates. It never
// touches the working directory.
func NewTemplateRenderer() (Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("dashboard: embedded templates: %w", err)
	}
	return template.NewRenderer(
		template.WithFS(sub),
		template.WithExtension(".html"),
	)
}
