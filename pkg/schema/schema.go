package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// MalformedSchemaError indicates that a schema file failed self-consistency
// at load time: a placeholder key that does not resolve to a node in the
// document, a text slot without a concrete inherited style, or missing
// required fields. It is fatal for that template only.
type MalformedSchemaError struct {
	Path   string
	Reason string
}

func (e *MalformedSchemaError) Error() string {
	return fmt.Sprintf("malformed schema %s: %s", e.Path, e.Reason)
}

// UnknownVersionError indicates a schema file declaring a schemaVersion this
// build does not understand.
type UnknownVersionError struct {
	Path    string
	Version int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("schema %s: unknown schema version %d", e.Path, e.Version)
}

// PlaceholderSpec describes a single addressable slot inside a template.
// It is one of ShapeAttribute, TextSlot, or ImageSlot.
type PlaceholderSpec interface {
	placeholderSpec()
}

// ShapeAttribute is a placeholder that overwrites a named attribute on a
// shape element, e.g. a bar's width or a fill color.
type ShapeAttribute struct {
	Element   string // id of the target element
	Attribute string // attribute to overwrite
	Default   string // attribute value at export time ("" if absent)
}

// TextSlot is a placeholder that replaces the text content of an element.
// Style holds the fully resolved inherited style, computed once at load.
type TextSlot struct {
	Element string
	Default string // text content at export time
	Style   TextStyle
}

// ImageSlot is a placeholder that replaces an image element's href.
type ImageSlot struct {
	Element string
	Default string // href at export time
}

func (ShapeAttribute) placeholderSpec() {}
func (TextSlot) placeholderSpec()       {}
func (ImageSlot) placeholderSpec()      {}

// Schema is the parsed, immutable description of one template: its vector
// document plus the catalog of placeholders addressable at render time.
// A Schema must not be mutated after Load; renders operate on copies
// obtained via Document.
type Schema struct {
	ID         string
	Name       string
	Width      float64 // canvas width in pixels
	Height     float64 // canvas height in pixels
	Background string  // declared background color for opaque renders ("" = white)
	AssetDir   string  // directory that relative asset references resolve against

	Placeholders map[string]PlaceholderSpec

	doc *etree.Document
}

// Document returns a deep copy of the template's vector document. The
// shared document itself is never handed out, so concurrent renders can
// mutate their copies freely.
func (s *Schema) Document() *etree.Document {
	return s.doc.Copy()
}

// AssetPath resolves a schema-relative asset reference against the template
// directory, rejecting references that escape it.
func (s *Schema) AssetPath(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("asset reference %q escapes the template directory", ref)
	}
	return filepath.Join(s.AssetDir, clean), nil
}

// LoadFile reads and validates a schema file. The document and every
// placeholder are resolved eagerly, so the returned Schema never touches the
// filesystem or re-walks the tree during rendering. Returns a
// *MalformedSchemaError or *UnknownVersionError on bad input.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var header struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err = json.Unmarshal(data, &header); err != nil {
		return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if header.SchemaVersion == nil {
		return nil, &MalformedSchemaError{Path: path, Reason: "missing 'schemaVersion'"}
	}

	switch *header.SchemaVersion {
	case 1:
		return loadV1(path, data)
	default:
		return nil, &UnknownVersionError{Path: path, Version: *header.SchemaVersion}
	}
}

// FindElementByID walks the subtree rooted at el and returns the first
// element whose id attribute equals id, or nil.
func FindElementByID(el *etree.Element, id string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.SelectAttrValue("id", "") == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := FindElementByID(child, id); found != nil {
			return found
		}
	}
	return nil
}
