package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tdewolff/canvas"
)

// ptPerMm converts canvas units (treated as pixels here) into the point
// sizes FontFamily.Face expects, so that Face(px*ptPerMm) yields an em of
// px canvas units.
const ptPerMm = 72.0 / 25.4

// fontFamily pairs a canvas family with the set of styles that actually
// loaded. FontFamily.Face panics on a style the family does not hold, so a
// style is always picked from this set before asking for a face.
type fontFamily struct {
	family *canvas.FontFamily
	styles map[canvas.FontStyle]bool
}

// FontDB holds the fonts available to the renderer. It is populated once at
// startup and read-only afterwards, so it is safe for concurrent renders.
type FontDB struct {
	logger        *slog.Logger
	families      map[string]*fontFamily
	defaultFamily *fontFamily
}

// NewFontDB returns an empty database. Every text run rendered against it
// comes out without glyphs, which is the degraded mode for a server with no
// fonts installed.
func NewFontDB(logger *slog.Logger) *FontDB {
	return &FontDB{
		logger:   logger,
		families: make(map[string]*fontFamily),
	}
}

// LoadFonts scans dir for .ttf and .otf files and groups them into families
// by filename. A file named "Roboto-Bold.ttf" loads as the bold style of
// family "Roboto"; a file with no style suffix loads as regular. A family is
// registered only once a file has actually parsed, so a corrupt font can
// never leave an empty family behind. The first family loaded
// (alphabetically) becomes the fallback for unknown family names.
func LoadFonts(logger *slog.Logger, dir string) (*FontDB, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading font directory: %w", err)
	}

	db := NewFontDB(logger)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		name, style := fontNameStyle(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		key := strings.ToLower(name)
		fam, ok := db.families[key]
		if !ok {
			fam = &fontFamily{
				family: canvas.NewFontFamily(name),
				styles: make(map[canvas.FontStyle]bool),
			}
		}
		path := filepath.Join(dir, entry.Name())
		if err := fam.family.LoadFontFile(path, style); err != nil {
			logger.Error("Failed to load font file", "path", path, "error", err)
			continue
		}
		fam.styles[style] = true
		if !ok {
			db.families[key] = fam
			names = append(names, key)
		}
		logger.Debug("Loaded font", "family", name, "file", entry.Name())
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no usable fonts in %s", dir)
	}
	sort.Strings(names)
	db.defaultFamily = db.families[names[0]]
	return db, nil
}

// fontNameStyle splits a font filename stem into family name and style.
func fontNameStyle(stem string) (string, canvas.FontStyle) {
	name, suffix, ok := strings.Cut(stem, "-")
	if !ok {
		return stem, canvas.FontRegular
	}
	style := canvas.FontRegular
	lower := strings.ToLower(suffix)
	if strings.Contains(lower, "bold") {
		style |= canvas.FontBold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		style |= canvas.FontItalic
	}
	if style == canvas.FontRegular && lower != "regular" {
		// Unrecognized suffix, treat the whole stem as the family name.
		return stem, canvas.FontRegular
	}
	return name, style
}

// pickStyle chooses a loaded style closest to the wanted one: the exact
// style, then regular, then bold, then whatever loaded (lowest style value
// for determinism). Returns false only when nothing loaded at all.
func pickStyle(styles map[canvas.FontStyle]bool, want canvas.FontStyle) (canvas.FontStyle, bool) {
	candidates := []canvas.FontStyle{want}
	if want != canvas.FontRegular {
		candidates = append(candidates, canvas.FontRegular)
	}
	if want&canvas.FontBold == 0 {
		candidates = append(candidates, canvas.FontBold)
	}
	for _, c := range candidates {
		if styles[c] {
			return c, true
		}
	}

	loaded := make([]canvas.FontStyle, 0, len(styles))
	for s := range styles {
		loaded = append(loaded, s)
	}
	if len(loaded) == 0 {
		return 0, false
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i] < loaded[j] })
	return loaded[0], true
}

// Face resolves a font-family list to a concrete face of the given pixel
// size, color and CSS weight. The list is tried in order, case-insensitively;
// if nothing matches, the default family is used. A weight the family does
// not hold substitutes the nearest loaded style rather than failing. Returns
// nil when no usable font exists, in which case the caller skips the run.
func (db *FontDB) Face(families string, sizePx float64, col color.Color, weight int) *canvas.FontFace {
	if db == nil {
		return nil
	}
	fam := db.defaultFamily
	for _, name := range strings.Split(families, ",") {
		name = strings.Trim(strings.TrimSpace(name), `'"`)
		if f, ok := db.families[strings.ToLower(name)]; ok {
			fam = f
			break
		}
	}
	if fam == nil {
		return nil
	}
	want := canvas.FontRegular
	if weight >= 600 {
		want = canvas.FontBold
	}
	style, ok := pickStyle(fam.styles, want)
	if !ok && fam != db.defaultFamily && db.defaultFamily != nil {
		fam = db.defaultFamily
		style, ok = pickStyle(fam.styles, want)
	}
	if !ok {
		return nil
	}
	return fam.family.Face(sizePx*ptPerMm, col, style, canvas.FontNormal)
}
