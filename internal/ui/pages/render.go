package pages

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

// page executes tmpl with data after rendering parts into HTML fields.
func page(tmpl *template.Template, data func(ctx context.Context) (any, error)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d, err := data(ctx)
		if err != nil {
			return err
		}
		return tmpl.Execute(w, d)
	})
}

// html renders the components in order.
func html(ctx context.Context, cs ...templ.Component) (template.HTML, error) {
	var out template.HTML
	for _, c := range cs {
		h, err := templ.ToGoHTML(ctx, c)
		if err != nil {
			return "", err
		}
		out += h
	}
	return out, nil
}
