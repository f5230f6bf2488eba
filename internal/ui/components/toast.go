package components

import (
	"html/template"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

type ToastVariant string

const (
	ToastSuccess ToastVariant = "success"
	ToastError   ToastVariant = "error"
)

// ToastProps is a one-shot notification shown above the page content.
type ToastProps struct {
	Variant ToastVariant
	Message string
}

func SuccessToast(msg string) *ToastProps {
	return &ToastProps{Variant: ToastSuccess, Message: msg}
}

func ErrorToast(msg string) *ToastProps {
	return &ToastProps{Variant: ToastError, Message: msg}
}

var toastTemplate = template.Must(template.New("toast").Parse(
	`<div role="{{.Role}}" class="{{.Class}}" data-toast="{{.Variant}}">{{.Message}}</div>`,
))

// Toast renders nothing for a nil or empty notification.
func Toast(p *ToastProps) templ.Component {
	if p == nil || p.Message == "" {
		return templ.NopComponent
	}

	class := twmerge.Merge("fixed top-4 right-4 rounded-md px-4 py-3 text-sm shadow", "bg-green-50 text-green-800")
	role := "status"
	if p.Variant == ToastError {
		class = twmerge.Merge(class, "bg-red-50 text-red-800")
		role = "alert"
	}

	return templ.FromGoHTML(toastTemplate, struct {
		Role, Class, Message string
		Variant              ToastVariant
	}{role, class, p.Message, p.Variant})
}
