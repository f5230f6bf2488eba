package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/magicprofile/internal/ui"
	"github.com/templui/magicprofile/internal/ui/layouts"
	"github.com/templui/magicprofile/internal/ui/pages"
)

type HomeHandler struct {
	account *AccountHandler
}

func NewHomeHandler(account *AccountHandler) *HomeHandler {
	return &HomeHandler{account: account}
}

// HomePage shows the sign-in form to guests and the profile editor to signed-in users.
func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r) == nil {
		renderGate(w, r, http.StatusOK, pages.GateProps{})
		return
	}
	h.account.Page(w, r)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, layouts.Base("Not found", pages.NotFound()))
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
