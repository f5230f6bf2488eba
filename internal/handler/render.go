package handler

import (
	"net/http"

	"github.com/templui/magicprofile/internal/ctxkeys"
	"github.com/templui/magicprofile/internal/model"
	"github.com/templui/magicprofile/internal/ui"
	"github.com/templui/magicprofile/internal/ui/layouts"
	"github.com/templui/magicprofile/internal/ui/pages"
)

func sessionFrom(r *http.Request) *model.Session {
	return ctxkeys.Session(r.Context())
}

func renderGate(w http.ResponseWriter, r *http.Request, status int, props pages.GateProps) {
	ui.RenderStatus(w, r, status, layouts.Base("Sign in", pages.Gate(props)))
}
