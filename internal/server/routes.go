package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", handleSwaggerUI())

	if opts.Lobby != nil {
		r.Get("/lobby", handleLobby(opts.Lobby))
	}
	if opts.Mount != nil {
		opts.Mount(r)
	}

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
