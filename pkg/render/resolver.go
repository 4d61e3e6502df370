package render

import (
	"sort"

	"github.com/CTAG07/statcard/pkg/schema"
)

// TextRun is one fully concrete run of text: every style field has its final
// value after cascading caller input over the slot's default style.
type TextRun struct {
	Value      string
	Fill       string
	FontSize   float64
	FontWeight int    // 0 = rasterizer default
	FontFamily string // "" = rasterizer default
}

// ResolvedShape is a shape attribute with its final value.
type ResolvedShape struct {
	Element   string
	Attribute string
	Value     string
}

// ResolvedImage is an image slot with its final href.
type ResolvedImage struct {
	Element string
	Href    string
}

// ResolvedText is a text slot expanded into its ordered run list.
type ResolvedText struct {
	Element string
	Runs    []TextRun
}

// Substitutions is the resolved substitution set for one render call: every
// placeholder in the schema appears exactly once with its final applied
// value. Slices are ordered by placeholder key so that resolution is
// deterministic.
type Substitutions struct {
	Shapes []ResolvedShape
	Images []ResolvedImage
	Text   []ResolvedText
}

// Resolve merges caller values over the schema defaults. It never fails:
// keys in values that the schema does not declare are ignored, and absent
// values fall back to the schema defaults. A nil values renders the template
// exactly as exported.
func Resolve(s *schema.Schema, values *schema.PlaceholderValues) *Substitutions {
	if values == nil {
		values = &schema.PlaceholderValues{}
	}

	keys := make([]string, 0, len(s.Placeholders))
	for key := range s.Placeholders {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	subs := &Substitutions{}
	for _, key := range keys {
		switch spec := s.Placeholders[key].(type) {
		case schema.ShapeAttribute:
			value := spec.Default
			if v, ok := values.Shapes[key]; ok {
				value = v
			}
			subs.Shapes = append(subs.Shapes, ResolvedShape{
				Element:   spec.Element,
				Attribute: spec.Attribute,
				Value:     value,
			})
		case schema.ImageSlot:
			href := spec.Default
			if v, ok := values.Images[key]; ok {
				href = v
			}
			subs.Images = append(subs.Images, ResolvedImage{
				Element: spec.Element,
				Href:    href,
			})
		case schema.TextSlot:
			subs.Text = append(subs.Text, ResolvedText{
				Element: spec.Element,
				Runs:    resolveRuns(spec, values.Text[key]),
			})
		}
	}
	return subs
}

// resolveRuns normalizes a caller text value against the slot's default.
// An absent value keeps the slot's exported text and style; a literal
// default string is rendered, never replaced by empty text.
func resolveRuns(spec schema.TextSlot, value schema.TextValue) []TextRun {
	if value.Spans == nil {
		return []TextRun{{
			Value:      spec.Default,
			Fill:       spec.Style.Fill,
			FontSize:   spec.Style.FontSize,
			FontWeight: spec.Style.FontWeight,
			FontFamily: spec.Style.FontFamily,
		}}
	}

	runs := make([]TextRun, 0, len(value.Spans))
	for _, span := range value.Spans {
		run := TextRun{
			Value:      span.Value,
			Fill:       spec.Style.Fill,
			FontSize:   spec.Style.FontSize,
			FontWeight: spec.Style.FontWeight,
			FontFamily: spec.Style.FontFamily,
		}
		if span.Fill != nil {
			run.Fill = *span.Fill
		}
		if span.FontSize != nil {
			run.FontSize = *span.FontSize
		}
		if span.FontWeight != nil {
			run.FontWeight = *span.FontWeight
		}
		if span.FontFamily != nil {
			run.FontFamily = *span.FontFamily
		}
		runs = append(runs, run)
	}
	return runs
}
