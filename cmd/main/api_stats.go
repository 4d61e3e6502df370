package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS render_stats (
    template      TEXT NOT NULL,
    mode          TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL,
    rendered_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_render_stats_template ON render_stats (template);
`

// TemplateStats aggregates render activity for one template.
type TemplateStats struct {
	Template      string  `json:"template"`
	TotalRenders  int64   `json:"total_renders"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	LastRendered  string  `json:"last_rendered"`
}

// StatsSummary provides a high-level overview of all collected stats.
type StatsSummary struct {
	TotalRenders int64           `json:"total_renders"`
	Templates    []TemplateStats `json:"templates"`
}

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
}

// Record logs one completed render. Failures are logged and swallowed: stats
// never fail a request that already produced an image.
func (s *StatsAPI) Record(ctx context.Context, template, mode string, duration time.Duration) {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO render_stats (template, mode, duration_ms, rendered_at) VALUES (?, ?, ?, ?)
    `, template, mode, duration.Milliseconds(), time.Now())
	if err != nil {
		s.logger.Error("Failed to record render stats", "template", template, "error", err)
	}
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var summary StatsSummary
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM render_stats").Scan(&summary.TotalRenders)

	rows, err := s.db.QueryContext(r.Context(), `
        SELECT template, COUNT(*), AVG(duration_ms), MAX(rendered_at)
        FROM render_stats GROUP BY template ORDER BY COUNT(*) DESC
    `)
	if err != nil {
		s.logger.Error("Failed to query render stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var ts TemplateStats
		if err = rows.Scan(&ts.Template, &ts.TotalRenders, &ts.AvgDurationMs, &ts.LastRendered); err != nil {
			s.logger.Error("Failed to scan render stats", "error", err)
			continue
		}
		summary.Templates = append(summary.Templates, ts)
	}
	respondWithJSON(w, http.StatusOK, summary)
}
