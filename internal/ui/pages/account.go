package pages

import (
	"context"
	"html/template"

	"github.com/a-h/templ"

	"github.com/templui/magicprofile/internal/account"
	"github.com/templui/magicprofile/internal/ui/components"
)

type AccountProps struct {
	Email      string
	View       account.View
	AvatarSrc  string // resolved display URL of View.AvatarURL
	AvatarSize int
	Toast      *components.ToastProps
}

// Greeting is the account page headline.
func Greeting(username string) string {
	if username == "" {
		return "Welcome back."
	}
	return "Welcome back, " + username + "."
}

var accountTemplate = template.Must(template.New("account").Parse(`{{.Toast}}
<div class="min-h-screen flex flex-col items-center justify-center gap-10 p-10">
	<section class="flex items-center justify-center">
		<h1 class="text-center">{{.Greeting}}</h1>
	</section>
	<section class="flex flex-col w-full gap-10 items-center justify-center">
		<form method="post" action="/account/avatar" enctype="multipart/form-data" class="flex flex-col gap-2 items-center">
			{{.CSRF}}
			{{if .AvatarSrc}}<img src="{{.AvatarSrc}}" alt="Avatar" width="{{.Size}}" height="{{.Size}}" class="avatar">{{else}}<div class="avatar no-image" style="width:{{.Size}}px;height:{{.Size}}px"></div>{{end}}
			<label for="avatar">Upload an avatar</label>
			<input id="avatar" type="file" name="avatar" accept="image/*"{{if .Loading}} disabled{{end}}>
			{{.UploadButton}}
		</form>
		<form method="post" action="/account" class="flex flex-col gap-4 w-full">
			{{.CSRF}}
			<div>
				<label for="email">Email</label>
				<input id="email" type="text" name="email" value="{{.Email}}" disabled>
			</div>
			<div>
				<label for="username">Username</label>
				<input id="username" type="text" name="username" value="{{.Username}}">
			</div>
			<div>
				<label for="website">Website</label>
				<input id="website" type="url" name="website" value="{{.Website}}">
			</div>
			<div>{{.UpdateButton}}</div>
		</form>
		<form method="post" action="/auth/logout">
			{{.CSRF}}
			{{.SignOutButton}}
		</form>
	</section>
</div>`))

// Account is the profile editor of a signed-in user.
func Account(p AccountProps) templ.Component {
	return page(accountTemplate, func(ctx context.Context) (any, error) {
		toast, err := html(ctx, components.Toast(p.Toast))
		if err != nil {
			return nil, err
		}
		csrf, err := html(ctx, components.CSRF())
		if err != nil {
			return nil, err
		}
		upload, err := html(ctx, components.Button(components.ButtonProps{
			Label:        "Upload",
			LoadingLabel: "Uploading ...",
			Variant:      components.ButtonSecondary,
			Loading:      p.View.Loading,
		}))
		if err != nil {
			return nil, err
		}
		update, err := html(ctx, components.Button(components.ButtonProps{
			ID:           "update",
			Label:        "Update",
			LoadingLabel: "Loading ...",
			Variant:      components.ButtonPrimary,
			Loading:      p.View.Loading,
		}))
		if err != nil {
			return nil, err
		}
		signOut, err := html(ctx, components.Button(components.ButtonProps{
			Label:   "Sign Out",
			Variant: components.ButtonSecondary,
		}))
		if err != nil {
			return nil, err
		}

		return struct {
			Greeting, Email, Username, Website, AvatarSrc string
			Size                                          int
			Loading                                       bool
			Toast, CSRF                                   template.HTML
			UploadButton, UpdateButton, SignOutButton     template.HTML
		}{
			Greeting:      Greeting(p.View.Username),
			Email:         p.Email,
			Username:      p.View.Username,
			Website:       p.View.Website,
			AvatarSrc:     p.AvatarSrc,
			Size:          p.AvatarSize,
			Loading:       p.View.Loading,
			Toast:         toast,
			CSRF:          csrf,
			UploadButton:  upload,
			UpdateButton:  update,
			SignOutButton: signOut,
		}, nil
	})
}
