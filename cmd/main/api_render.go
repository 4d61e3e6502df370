package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/CTAG07/statcard/pkg/render"
	"github.com/CTAG07/statcard/pkg/schema"
)

// RenderAPI holds the dependencies for the render endpoint. A weighted
// semaphore bounds the number of concurrent rasterizations, since each one
// holds a full-size RGBA buffer.
type RenderAPI struct {
	registry    *schema.Registry
	fonts       *render.FontDB
	stats       *StatsAPI
	logger      *slog.Logger
	workers     *semaphore.Weighted
	maxBytes    int64
	acquireWait time.Duration
}

func NewRenderAPI(registry *schema.Registry, fonts *render.FontDB, stats *StatsAPI, logger *slog.Logger, workers int, maxBytes int64) *RenderAPI {
	return &RenderAPI{
		registry:    registry,
		fonts:       fonts,
		stats:       stats,
		logger:      logger,
		workers:     semaphore.NewWeighted(int64(workers)),
		maxBytes:    maxBytes,
		acquireWait: 10 * time.Second,
	}
}

func (a *RenderAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/render/", a.handleRender)
}

func (a *RenderAPI) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/render/")
	if name == "" || strings.Contains(name, "/") {
		respondWithError(w, http.StatusNotFound, "Unknown template")
		return
	}
	sch, ok := a.registry.Get(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Unknown template %q", name))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxBytes)
	if err := r.ParseMultipartForm(a.maxBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return
	}

	values := &schema.PlaceholderValues{}
	if raw := r.FormValue("placeholder_values"); raw != "" {
		if err := json.Unmarshal([]byte(raw), values); err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid placeholder_values: %v", err))
			return
		}
	}

	background, err := a.backgroundImage(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Wait a bounded time for a render slot; when all workers stay busy
	// past the deadline the request is shed instead of queueing forever.
	acquireCtx, cancel := context.WithTimeout(r.Context(), a.acquireWait)
	err = a.workers.Acquire(acquireCtx, 1)
	cancel()
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Server busy")
		return
	}
	defer a.workers.Release(1)

	opts := render.Options{Fonts: a.fonts, Logger: a.logger}
	mode := "opaque"

	start := time.Now()
	var img *image.RGBA
	if background != nil {
		mode = "translucent"
		img, err = render.RenderTranslucent(sch, values, opts, background)
	} else {
		img, err = render.RenderOpaque(sch, values, opts)
	}
	renderDuration := time.Since(start)

	if err != nil {
		var compErr *render.CompositeError
		if errors.As(err, &compErr) {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Composite failed: %v", err))
			return
		}
		a.logger.Error("Render failed", "template", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Render failed: %v", err))
		return
	}

	encodeStart := time.Now()
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err = png.Encode(w, img); err != nil {
		a.logger.Error("Failed to write PNG response", "template", name, "error", err)
		return
	}
	encodeDuration := time.Since(encodeStart)

	a.stats.Record(r.Context(), name, mode, renderDuration)
	a.logger.Info(
		"Rendered template",
		"template", name,
		"mode", mode,
		"render_ms", renderDuration.Milliseconds(),
		"encode_ms", encodeDuration.Milliseconds())
}

// backgroundImage decodes the optional background_image part. Absence means
// an opaque render; a part that is present but undecodable is a client error.
func (a *RenderAPI) backgroundImage(r *http.Request) (image.Image, error) {
	file, header, err := r.FormFile("background_image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid background_image: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("background_image has content type %q, expected an image", ct)
	}

	img, err := render.DecodeBackground(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode background_image: %v", err)
	}
	return img, nil
}
