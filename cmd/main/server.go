package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/CTAG07/statcard/pkg/render"
	"github.com/CTAG07/statcard/pkg/schema"
)

type Server struct {
	config      *ServerConfig
	db          *sql.DB
	logger      *slog.Logger
	registry    *schema.Registry
	fonts       *render.FontDB
	renderAPI   *RenderAPI
	templateAPI *TemplateAPI
	statsAPI    *StatsAPI
	mux         *http.ServeMux
}

func NewServer(config *ServerConfig, logger *slog.Logger, db *sql.DB) (*Server, error) {
	registry, err := schema.NewRegistry(logger, config.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template registry: %w", err)
	}

	// A missing or empty font dir is not fatal: text renders without glyphs.
	fonts, err := render.LoadFonts(logger, config.FontDir)
	if err != nil {
		logger.Warn("No fonts loaded, text will render empty", "dir", config.FontDir, "error", err)
		fonts = render.NewFontDB(logger)
	}

	workers := config.RenderWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	statsAPI := NewStatsAPI(db, logger)
	renderAPI := NewRenderAPI(registry, fonts, statsAPI, logger, workers, config.MaxBackgroundBytes)
	templateAPI := NewTemplateAPI(registry, logger)

	server := &Server{
		config:      config,
		db:          db,
		logger:      logger,
		registry:    registry,
		fonts:       fonts,
		renderAPI:   renderAPI,
		templateAPI: templateAPI,
		statsAPI:    statsAPI,
		mux:         http.NewServeMux(),
	}

	server.renderAPI.RegisterRoutes(server.mux)
	server.templateAPI.RegisterRoutes(server.mux)
	server.statsAPI.RegisterRoutes(server.mux)
	server.mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server, nil
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
