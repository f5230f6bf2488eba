package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/magicprofile/internal/account"
	"github.com/templui/magicprofile/internal/metrics"
	"github.com/templui/magicprofile/internal/service"
	"github.com/templui/magicprofile/internal/ui/components"
	"github.com/templui/magicprofile/internal/ui/pages"
)

type AuthHandler struct {
	gate        *account.Gate
	authService *service.AuthService
	registry    *account.Registry
	recorder    metrics.Recorder
}

func NewAuthHandler(gate *account.Gate, authService *service.AuthService, registry *account.Registry, recorder metrics.Recorder) *AuthHandler {
	return &AuthHandler{
		gate:        gate,
		authService: authService,
		registry:    registry,
		recorder:    recorder,
	}
}

func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	res := h.gate.Submit(r.Context(), email)
	h.recorder.RecordMagicLink(res.Status.String())

	switch res.Status {
	case account.GateSent:
		renderGate(w, r, http.StatusOK, pages.GateProps{Toast: components.SuccessToast(res.Message)})
	case account.GateSkipped:
		renderGate(w, r, http.StatusAccepted, pages.GateProps{Email: email, Loading: true})
	default:
		status := http.StatusInternalServerError
		if errors.Is(res.Err, service.ErrInvalidEmail) {
			status = http.StatusUnprocessableEntity
		} else {
			slog.Error("magic link request failed", "error", res.Err)
		}
		renderGate(w, r, status, pages.GateProps{Email: email, Toast: components.ErrorToast(res.Message)})
	}
}

func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	user, session, err := h.authService.VerifyMagicLink(r.Context(), token)
	if err != nil {
		h.recorder.RecordSignIn(false)
		if !errors.Is(err, service.ErrInvalidMagicLink) {
			slog.Error("magic link verification failed", "error", err)
		}
		renderGate(w, r, http.StatusBadRequest, pages.GateProps{
			Toast: components.ErrorToast("Invalid or expired magic link. Please try again."),
		})
		return
	}

	jwtToken, err := h.authService.GenerateJWT(session)
	if err != nil {
		h.recorder.RecordSignIn(false)
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		renderGate(w, r, http.StatusInternalServerError, pages.GateProps{
			Toast: components.ErrorToast("An error occurred. Please try again."),
		})
		return
	}

	h.authService.SetJWTCookie(w, jwtToken, session.ExpiresAt)
	h.recorder.RecordSignIn(true)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout signs the session out through its controller. A busy controller
// keeps the session alive and the page says so.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFrom(r); session != nil {
		c := h.registry.Get(session.ID)
		res := c.SignOut(r.Context())
		h.recorder.RecordProfileOp("sign_out", res.Status.String())

		if res.Status == account.StatusBusy {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if res.Status == account.StatusFailed {
			slog.Error("sign out failed", "error", res.Err, "session_id", session.ID)
			http.Error(w, res.Err.Error(), http.StatusInternalServerError)
			return
		}
		h.registry.Drop(session.ID)
	}

	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
