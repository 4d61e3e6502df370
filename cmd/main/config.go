package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server and the render
// pipeline.
type ServerConfig struct {
	Addr               string `json:"addr"`
	LogLevel           string `json:"log_level"`
	TemplateDir        string `json:"template_dir"`
	FontDir            string `json:"font_dir"`
	StatsDatabasePath  string `json:"stats_database_path"`
	MaxBackgroundBytes int64  `json:"max_background_bytes"`
	RenderWorkers      int    `json:"render_workers"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:               ":7278",
		LogLevel:           "info",
		TemplateDir:        "./data/templates",
		FontDir:            "./data/fonts",
		StatsDatabasePath:  "./data/statcard.db",
		MaxBackgroundBytes: 10 << 20,
		RenderWorkers:      0, // 0 means one per CPU
	}
}

// loadConfig reads the config file, writing one with defaults if it does not
// exist yet. The first write goes through an atomic rename so a crash cannot
// leave a half-written file behind.
func loadConfig(path string) (*ServerConfig, error) {
	config := DefaultServerConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data, _ := json.MarshalIndent(config, "", "  ")
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to write default config: %w", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}
