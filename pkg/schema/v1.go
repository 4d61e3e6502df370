package schema

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// schemaV1 is the on-disk JSON model for schemaVersion 1. The template field
// names an SVG file relative to the schema file; placeholders is the flat
// list of "<element>#<facet>" keys the exporter declared.
type schemaV1 struct {
	SchemaVersion int      `json:"schemaVersion"`
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Template      string   `json:"template"`
	Background    string   `json:"background"`
	Placeholders  []string `json:"placeholders"`
}

func loadV1(path string, data []byte) (*Schema, error) {
	var raw schemaV1
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if raw.ID == "" {
		return nil, &MalformedSchemaError{Path: path, Reason: "missing 'id'"}
	}
	if raw.Template == "" {
		return nil, &MalformedSchemaError{Path: path, Reason: "missing 'template'"}
	}

	dir := filepath.Dir(path)
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(filepath.Join(dir, raw.Template)); err != nil {
		return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("failed to read template %q: %v", raw.Template, err)}
	}

	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, &MalformedSchemaError{Path: path, Reason: "template is not an SVG document"}
	}

	width, height, err := canvasSize(root)
	if err != nil {
		return nil, &MalformedSchemaError{Path: path, Reason: err.Error()}
	}

	s := &Schema{
		ID:           raw.ID,
		Name:         raw.Name,
		Width:        width,
		Height:       height,
		Background:   raw.Background,
		AssetDir:     dir,
		Placeholders: make(map[string]PlaceholderSpec, len(raw.Placeholders)),
		doc:          doc,
	}

	for _, key := range raw.Placeholders {
		name, facet, ok := strings.Cut(key, "#")
		if !ok || name == "" || facet == "" {
			return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("placeholder key %q is not of the form <element>#<facet>", key)}
		}
		if _, exists := s.Placeholders[key]; exists {
			return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("duplicate placeholder key %q", key)}
		}

		el := FindElementByID(root, name)
		if el == nil {
			return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("placeholder %q does not resolve to an element", key)}
		}

		switch facet {
		case "text":
			style, serr := resolveInheritedStyle(el)
			if serr != nil {
				return nil, &MalformedSchemaError{Path: path, Reason: fmt.Sprintf("placeholder %q: %v", key, serr)}
			}
			s.Placeholders[key] = TextSlot{
				Element: name,
				Default: textContent(el),
				Style:   style,
			}
		case "href":
			href := el.SelectAttrValue("href", "")
			if href == "" {
				href = el.SelectAttrValue("xlink:href", "")
			}
			s.Placeholders[key] = ImageSlot{
				Element: name,
				Default: href,
			}
		default:
			s.Placeholders[key] = ShapeAttribute{
				Element:   name,
				Attribute: facet,
				Default:   el.SelectAttrValue(facet, ""),
			}
		}
	}

	return s, nil
}

// canvasSize reads the declared raster size from the svg root, falling back
// to the viewBox when width/height are absent.
func canvasSize(root *etree.Element) (float64, float64, error) {
	w, werr := parseLength(root.SelectAttrValue("width", ""))
	h, herr := parseLength(root.SelectAttrValue("height", ""))
	if werr == nil && herr == nil && w > 0 && h > 0 {
		return w, h, nil
	}

	if vb := root.SelectAttrValue("viewBox", ""); vb != "" {
		fields := strings.Fields(strings.ReplaceAll(vb, ",", " "))
		if len(fields) == 4 {
			vw, e1 := parseLength(fields[2])
			vh, e2 := parseLength(fields[3])
			if e1 == nil && e2 == nil && vw > 0 && vh > 0 {
				return vw, vh, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("template declares no usable canvas size")
}

// textContent returns the concatenated character data of el and its
// descendants, in document order.
func textContent(el *etree.Element) string {
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.Child {
			switch c := child.(type) {
			case *etree.CharData:
				sb.WriteString(c.Data)
			case *etree.Element:
				walk(c)
			}
		}
	}
	walk(el)
	return sb.String()
}
