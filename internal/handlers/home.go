package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chanrelay/internal/relay"
	"chanrelay/internal/viewmodel"
	"chanrelay/views/pages"
)

type HomeHandler struct {
	registry *relay.Registry
}

func NewHomeHandler(registry *relay.Registry) *HomeHandler {
	return &HomeHandler{registry: registry}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.IndexPage(viewmodel.IndexPage{
		Title:      "Channels",
		Channels:   h.registry.Channels(),
		SocketPath: "/socket",
		ScriptPath: "/static/relay.js",
	}))
}
