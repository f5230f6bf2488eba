package components

import (
	"html/template"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonLink      ButtonVariant = "link"
)

type ButtonProps struct {
	ID           string
	Label        string
	LoadingLabel string
	Variant      ButtonVariant
	Class        string
	Loading      bool
}

const buttonBase = "inline-flex items-center rounded-md px-4 py-2 text-sm font-medium shadow-sm focus:outline-none focus:ring-2 focus:ring-offset-2"

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary:   "border border-transparent bg-blue-600 text-white hover:bg-blue-700 focus:ring-blue-500",
	ButtonSecondary: "border border-gray-300 bg-white text-gray-700 hover:bg-gray-50 focus:ring-indigo-500",
	ButtonLink:      "bg-transparent px-0 shadow-none text-blue-600",
}

var buttonTemplate = template.Must(template.New("button").Parse(
	`<button type="submit"{{if .ID}} id="{{.ID}}"{{end}} class="{{.Class}}"{{if .LoadingLabel}} data-loading-label="{{.LoadingLabel}}"{{end}}{{if .Loading}} disabled{{end}}>{{.Text}}</button>`,
))

// Button is a submit button. While Loading it is disabled and shows LoadingLabel.
func Button(p ButtonProps) templ.Component {
	variant, ok := buttonVariants[p.Variant]
	if !ok {
		variant = buttonVariants[ButtonPrimary]
	}

	text := p.Label
	if p.Loading && p.LoadingLabel != "" {
		text = p.LoadingLabel
	}

	return templ.FromGoHTML(buttonTemplate, struct {
		ID           string
		Class        string
		LoadingLabel string
		Loading      bool
		Text         string
	}{
		ID:           p.ID,
		Class:        twmerge.Merge(buttonBase, variant, p.Class),
		LoadingLabel: p.LoadingLabel,
		Loading:      p.Loading,
		Text:         text,
	})
}
