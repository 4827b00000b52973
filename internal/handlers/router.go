package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chanrelay/internal/config"
	"chanrelay/internal/relay"
)

// NewRouter wires every route of the relay. staticFS may be nil.
func NewRouter(registry *relay.Registry, conf config.Config, staticFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// long-lived socket connections must not inherit the request timeout
	NewSocketHandler(registry, conf.AllowedOrigins, conf.PingInterval).RegisterRoutes(r)
	if staticFS != nil {
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		NewHomeHandler(registry).RegisterRoutes(r)
		NewChannelHandler(registry).RegisterRoutes(r)
	})
	return r
}
