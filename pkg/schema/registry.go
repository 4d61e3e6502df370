package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const schemaFileName = "schema.json"

// Registry discovers templates in a directory and holds their loaded
// schemas for shared, read-only use by concurrent renders. Each immediate
// subdirectory containing a schema.json is one template, addressed by its
// directory name. Refresh is the only writer and is safe to call while
// renders are in flight; a template that fails to load is skipped with a
// logged error and does not affect the others.
// All methods are concurrent-safe.
type Registry struct {
	logger *slog.Logger
	dir    string

	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates a Registry rooted at dir and performs an initial
// Refresh. It fails only if the directory itself cannot be scanned.
func NewRegistry(logger *slog.Logger, dir string) (*Registry, error) {
	r := &Registry{
		logger:  logger,
		dir:     dir,
		schemas: map[string]*Schema{},
	}
	if err := r.Refresh(); err != nil {
		return nil, err
	}
	logger.Info("Template registry initialized", "dir", dir, "templates", len(r.Names()))
	return r, nil
}

// Refresh rescans the template directory and swaps in the freshly loaded
// schema set. Templates that fail to load keep their previous schema if one
// exists, so a bad edit on disk does not take a working template down.
func (r *Registry) Refresh() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to scan template directory: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	loaded := make(map[string]*Schema, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		schemaPath := filepath.Join(r.dir, name, schemaFileName)
		if _, statErr := os.Stat(schemaPath); statErr != nil {
			continue
		}

		s, loadErr := LoadFile(schemaPath)
		if loadErr != nil {
			r.logger.Error("Failed to load template, skipping", "template", name, "error", loadErr)
			if prev, ok := r.schemas[name]; ok {
				loaded[name] = prev
			}
			continue
		}
		loaded[name] = s
		r.logger.Info("Loaded template", "template", name, "placeholders", len(s.Placeholders))
	}

	r.schemas = loaded
	return nil
}

// Get returns the schema for a template name.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the sorted names of all loaded templates.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
