package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chanrelay/internal/config"
	"chanrelay/internal/debug"
	"chanrelay/internal/handlers"
	"chanrelay/internal/relay"
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")

	conf, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	debug.Enable(conf.Debug)

	registry := relay.NewRegistry(conf.RegistryOptions()...)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	server := &http.Server{
		Addr:              conf.Addr,
		Handler:           handlers.NewRouter(registry, conf, staticFS),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx, server, registry); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("relay listening on http://localhost%s", conf.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

type httpServer interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops the listeners before closing the registry, so no socket can
// be accepted after the registry has been emptied. Hijacked sockets outlive
// server.Shutdown and are closed by the registry.
func shutdown(ctx context.Context, server httpServer, registry *relay.Registry) error {
	err := server.Shutdown(ctx)
	registry.Close()
	return err
}

//go:embed static/*
var embeddedStatic embed.FS
