package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/magicprofile/internal/account"
	"github.com/templui/magicprofile/internal/ctxkeys"
	"github.com/templui/magicprofile/internal/metrics"
	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/service"
	"github.com/templui/magicprofile/internal/ui"
	"github.com/templui/magicprofile/internal/ui/components"
	"github.com/templui/magicprofile/internal/ui/layouts"
	"github.com/templui/magicprofile/internal/ui/pages"
)

const busyMessage = "Please wait until the current request has finished."

type AccountHandler struct {
	registry      *account.Registry
	authService   *service.AuthService
	avatarService *service.AvatarService
	recorder      metrics.Recorder
}

func NewAccountHandler(registry *account.Registry, authService *service.AuthService, avatarService *service.AvatarService, recorder metrics.Recorder) *AccountHandler {
	return &AccountHandler{
		registry:      registry,
		authService:   authService,
		avatarService: avatarService,
		recorder:      recorder,
	}
}

// Page loads the profile of the current session and renders the editor.
func (h *AccountHandler) Page(w http.ResponseWriter, r *http.Request) {
	c := h.registry.Get(sessionFrom(r).ID)
	res := c.Load(r.Context())
	h.recorder.RecordProfileOp("load", res.Status.String())
	h.render(w, r, res, nil)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	website := r.FormValue("website")

	c := h.registry.Get(sessionFrom(r).ID)
	res := c.Update(r.Context(), account.Fields{
		Username: &username,
		Website:  &website,
	})
	h.recorder.RecordProfileOp("update", res.Status.String())

	var toast *components.ToastProps
	if res.Status == account.StatusSaved {
		toast = components.SuccessToast("Profile updated")
	}
	h.render(w, r, res, toast)
}

// UploadAvatar stores the image and hands its reference to the controller.
// Whichever object the profile row does not point to afterwards is removed.
func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	c := h.registry.Get(session.ID)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.renderError(w, r, c, http.StatusUnprocessableEntity, "You must select an image to upload.")
		return
	}
	defer func() { _ = file.Close() }()

	ref, err := h.avatarService.Upload(r.Context(), session.UserID, file, header)
	if err != nil {
		slog.Warn("avatar upload failed", "error", err, "user_id", session.UserID)
		h.recorder.RecordProfileOp("avatar", account.StatusFailed.String())
		h.renderError(w, r, c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res := c.AvatarUploaded(r.Context(), ref)
	h.recorder.RecordProfileOp("avatar", res.Status.String())

	switch {
	case !res.Written:
		h.avatarService.Remove(r.Context(), ref)
	case res.Replaced != "":
		h.avatarService.Remove(r.Context(), res.Replaced)
	}

	var toast *components.ToastProps
	if res.Status == account.StatusSaved {
		toast = components.SuccessToast("Avatar updated")
	}
	h.render(w, r, res, toast)
}

// render turns a controller result into the account page. A lost session
// sends the browser back to the sign-in form.
func (h *AccountHandler) render(w http.ResponseWriter, r *http.Request, res account.Result, toast *components.ToastProps) {
	status := http.StatusOK

	switch res.Status {
	case account.StatusFailed:
		if errors.Is(res.Err, model.ErrUnauthenticated) {
			if session := sessionFrom(r); session != nil {
				h.registry.Drop(session.ID)
			}
			h.authService.ClearJWTCookie(w)
			renderGate(w, r, http.StatusUnauthorized, pages.GateProps{Toast: components.ErrorToast(res.Err.Error())})
			return
		}
		slog.Error("profile operation failed", "error", res.Err, "path", r.URL.Path)
		toast = components.ErrorToast(res.Err.Error())
		status = http.StatusUnprocessableEntity
	case account.StatusBusy:
		toast = components.ErrorToast(busyMessage)
		status = http.StatusConflict
	}

	h.renderPage(w, r, status, res.View, toast)
}

func (h *AccountHandler) renderError(w http.ResponseWriter, r *http.Request, c *account.Controller, status int, msg string) {
	h.renderPage(w, r, status, c.View(), components.ErrorToast(msg))
}

func (h *AccountHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, view account.View, toast *components.ToastProps) {
	var email string
	if user := ctxkeys.User(r.Context()); user != nil {
		email = user.Email
	}

	ui.RenderStatus(w, r, status, layouts.Base("Account", pages.Account(pages.AccountProps{
		Email:      email,
		View:       view,
		AvatarSrc:  h.avatarService.URL(view.AvatarURL),
		AvatarSize: h.avatarService.Size(),
		Toast:      toast,
	})))
}
