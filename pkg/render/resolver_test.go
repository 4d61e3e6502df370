package render

import (
	"reflect"
	"testing"

	"github.com/CTAG07/statcard/pkg/schema"
)

func statCardSchema() *schema.Schema {
	return &schema.Schema{
		ID:     "stat-card",
		Width:  200,
		Height: 100,
		Placeholders: map[string]schema.PlaceholderSpec{
			"wins#text": schema.TextSlot{
				Element: "wins",
				Default: "0",
				Style:   schema.TextStyle{Fill: "#000000", FontSize: 12},
			},
			"bar#width":   schema.ShapeAttribute{Element: "bar", Attribute: "width", Default: "50"},
			"avatar#href": schema.ImageSlot{Element: "avatar", Default: "avatar.png"},
		},
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestResolveDefaults(t *testing.T) {
	s := statCardSchema()

	for _, values := range []*schema.PlaceholderValues{nil, {}} {
		subs := Resolve(s, values)

		if len(subs.Shapes) != 1 || subs.Shapes[0].Value != "50" {
			t.Errorf("shape did not fall back to its default: %+v", subs.Shapes)
		}
		if len(subs.Images) != 1 || subs.Images[0].Href != "avatar.png" {
			t.Errorf("image did not fall back to its default: %+v", subs.Images)
		}
		want := []TextRun{{Value: "0", Fill: "#000000", FontSize: 12}}
		if len(subs.Text) != 1 || !reflect.DeepEqual(subs.Text[0].Runs, want) {
			t.Errorf("text did not fall back to its default run: %+v", subs.Text)
		}
	}
}

func TestResolveCascade(t *testing.T) {
	s := statCardSchema()
	values := &schema.PlaceholderValues{
		Text: map[string]schema.TextValue{
			"wins#text": {Spans: []schema.TextSpan{{Value: "5", Fill: strPtr("#FF0000")}}},
		},
		Shapes: map[string]string{"bar#width": "120"},
	}

	subs := Resolve(s, values)

	// The span overrides fill but inherits the slot's font size.
	want := []TextRun{{Value: "5", Fill: "#FF0000", FontSize: 12}}
	if !reflect.DeepEqual(subs.Text[0].Runs, want) {
		t.Errorf("cascaded run = %+v, expected %+v", subs.Text[0].Runs, want)
	}
	if subs.Shapes[0].Value != "120" {
		t.Errorf("shape value = %q, expected 120", subs.Shapes[0].Value)
	}
	// Absent image value stays at the default.
	if subs.Images[0].Href != "avatar.png" {
		t.Errorf("image href = %q, expected avatar.png", subs.Images[0].Href)
	}
}

func TestResolveMultipleSpans(t *testing.T) {
	s := statCardSchema()
	values := &schema.PlaceholderValues{
		Text: map[string]schema.TextValue{
			"wins#text": {Spans: []schema.TextSpan{
				{Value: "W "},
				{Value: "5", FontWeight: intPtr(700), FontSize: floatPtr(16)},
				{Value: " / 10", FontFamily: strPtr("Mono")},
			}},
		},
	}

	subs := Resolve(s, values)

	want := []TextRun{
		{Value: "W ", Fill: "#000000", FontSize: 12},
		{Value: "5", Fill: "#000000", FontSize: 16, FontWeight: 700},
		{Value: " / 10", Fill: "#000000", FontSize: 12, FontFamily: "Mono"},
	}
	if !reflect.DeepEqual(subs.Text[0].Runs, want) {
		t.Errorf("runs = %+v, expected %+v", subs.Text[0].Runs, want)
	}
}

func TestResolveIgnoresUnknownKeys(t *testing.T) {
	s := statCardSchema()
	values := &schema.PlaceholderValues{
		Text:   map[string]schema.TextValue{"nope#text": {Spans: []schema.TextSpan{{Value: "x"}}}},
		Shapes: map[string]string{"ghost#height": "9"},
		Images: map[string]string{"phantom#href": "x.png"},
	}

	subs := Resolve(s, values)

	if len(subs.Shapes) != 1 || len(subs.Images) != 1 || len(subs.Text) != 1 {
		t.Fatalf("unknown keys changed the substitution set: %+v", subs)
	}
	if subs.Shapes[0].Element != "bar" || subs.Images[0].Element != "avatar" || subs.Text[0].Element != "wins" {
		t.Errorf("unexpected substitution targets: %+v", subs)
	}
}

func TestResolveEmptySpanListClearsText(t *testing.T) {
	s := statCardSchema()
	values := &schema.PlaceholderValues{
		Text: map[string]schema.TextValue{"wins#text": {Spans: []schema.TextSpan{}}},
	}

	subs := Resolve(s, values)

	if len(subs.Text[0].Runs) != 0 {
		t.Errorf("an explicit empty span list should clear the slot, got %+v", subs.Text[0].Runs)
	}
}
