package schema

import (
	"encoding/json"
	"fmt"
)

// PlaceholderValues is the caller-supplied input for a single render. Keys
// that do not match a placeholder in the schema are ignored; missing keys
// fall back to the schema defaults. A PlaceholderValues is consumed by one
// render call and must not be reused concurrently.
type PlaceholderValues struct {
	// Text placeholder values, keyed by "<element>#text".
	Text map[string]TextValue `json:"text"`
	// Image placeholder values (data URIs or template-relative paths).
	Images map[string]string `json:"images"`
	// Shape attribute values, applied verbatim.
	Shapes map[string]string `json:"shapes"`
}

// TextSpan is one styled run of text inside a text slot. Unset style fields
// inherit the slot's resolved default style.
type TextSpan struct {
	Value      string   `json:"value"`
	Fill       *string  `json:"fill,omitempty"`
	FontSize   *float64 `json:"font_size,omitempty"`
	FontWeight *int     `json:"font_weight,omitempty"`
	FontFamily *string  `json:"font_family,omitempty"`
}

// TextValue is the value of one text placeholder. On the wire it is a bare
// string, a single span object, or a list of span objects; all three decode
// to the normalized span list used internally.
type TextValue struct {
	Spans []TextSpan
}

// UnmarshalJSON accepts the three wire shapes of a text value. Anything else
// (numbers, booleans, null) is rejected.
func (v *TextValue) UnmarshalJSON(data []byte) error {
	var lead byte
	for _, b := range data {
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			lead = b
			break
		}
	}

	switch lead {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.Spans = []TextSpan{{Value: s}}
		return nil
	case '{':
		var span TextSpan
		if err := json.Unmarshal(data, &span); err != nil {
			return err
		}
		v.Spans = []TextSpan{span}
		return nil
	case '[':
		return json.Unmarshal(data, &v.Spans)
	}
	return fmt.Errorf("text value must be a string, a span object, or a span list")
}

// MarshalJSON writes the normalized list form.
func (v TextValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Spans)
}
