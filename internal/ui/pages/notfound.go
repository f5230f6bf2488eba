package pages

import (
	"html/template"

	"github.com/a-h/templ"
)

var notFoundTemplate = template.Must(template.New("notfound").Parse(`<div class="min-h-screen flex flex-col items-center justify-center gap-4 p-10">
	<h1>Page not found</h1>
	<a href="/">Back to start</a>
</div>`))

func NotFound() templ.Component {
	return templ.FromGoHTML(notFoundTemplate, nil)
}
