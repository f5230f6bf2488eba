package pages

import (
	"context"
	"html/template"

	"github.com/a-h/templ"

	"github.com/templui/magicprofile/internal/ui/components"
)

type GateProps struct {
	Email   string
	Loading bool
	Toast   *components.ToastProps
}

var gateTemplate = template.Must(template.New("gate").Parse(`{{.Toast}}
<div class="min-h-screen flex flex-col items-center justify-center gap-10 p-10">
	<h1 class="text-center">A minimal Go magic-link demo.</h1>
	<section class="flex flex-col gap-4 items-center justify-center">
		<h2 class="text-center">Sign in via magic link with your email below</h2>
		<form method="post" action="/auth/magic-link" class="flex items-center justify-center gap-2">
			{{.CSRF}}
			<input type="email" name="email" placeholder="you@email.com" value="{{.Email}}" autocomplete="email" required>
			{{.Button}}
		</form>
	</section>
</div>`))

// Gate is the sign-in form.
func Gate(p GateProps) templ.Component {
	return page(gateTemplate, func(ctx context.Context) (any, error) {
		toast, err := html(ctx, components.Toast(p.Toast))
		if err != nil {
			return nil, err
		}
		csrf, err := html(ctx, components.CSRF())
		if err != nil {
			return nil, err
		}
		button, err := html(ctx, components.Button(components.ButtonProps{
			Label:        "Send magic link",
			LoadingLabel: "Loading",
			Variant:      components.ButtonLink,
			Loading:      p.Loading,
		}))
		if err != nil {
			return nil, err
		}
		return struct {
			Email               string
			Toast, CSRF, Button template.HTML
		}{p.Email, toast, csrf, button}, nil
	})
}
