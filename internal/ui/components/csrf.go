package components

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/templui/magicprofile/internal/ctxkeys"
)

var csrfTemplate = template.Must(template.New("csrf").Parse(
	`<input type="hidden" name="csrf_token" value="{{.}}">`,
))

// CSRF is the hidden token field every POST form carries.
func CSRF() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return csrfTemplate.Execute(w, ctxkeys.CSRFToken(ctx))
	})
}
