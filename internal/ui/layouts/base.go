package layouts

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/templui/magicprofile/internal/ctxkeys"
)

var baseTemplate = template.Must(template.New("base").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}{{if .AppName}} | {{.AppName}}{{end}}</title>
<style>
body{margin:0;font-family:ui-sans-serif,system-ui,sans-serif;color:#111827;background:#f9fafb}
.min-h-screen{min-height:100vh}.flex{display:flex}.flex-col{flex-direction:column}.items-center{align-items:center}.justify-center{justify-content:center}
.gap-2{gap:.5rem}.gap-4{gap:1rem}.gap-10{gap:2.5rem}.p-10{padding:2.5rem}.w-full{width:100%}.text-center{text-align:center}
input{border:1px solid #d1d5db;border-radius:.375rem;padding:.5rem 1rem}
button{cursor:pointer}button[disabled]{opacity:.5;cursor:not-allowed}
</style>
</head>
<body>
<main>{{.Body}}</main>
<script nonce="{{.Nonce}}">
document.addEventListener("submit", function (e) {
  e.target.querySelectorAll("button[type=submit]").forEach(function (b) {
    b.disabled = true;
    if (b.dataset.loadingLabel) { b.textContent = b.dataset.loadingLabel; }
  });
});
</script>
</body>
</html>
`))

type baseData struct {
	Title   string
	AppName string
	Nonce   string
	Body    template.HTML
}

// Base wraps body in the page shell. It holds no state of its own.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if body == nil {
			body = templ.NopComponent
		}
		inner, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}

		data := baseData{
			Title: title,
			Nonce: templ.GetNonce(ctx),
			Body:  inner,
		}
		if cfg := ctxkeys.Config(ctx); cfg != nil {
			data.AppName = cfg.AppName
		}
		return baseTemplate.Execute(w, data)
	})
}
