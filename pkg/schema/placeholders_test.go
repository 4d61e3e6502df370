package schema

import (
	"encoding/json"
	"testing"
)

func TestPlaceholderValuesUnmarshal(t *testing.T) {
	raw := `{
		"text": {
			"title#text": "Hello",
			"stat#text": {"value": "42", "fill": "#FF0000"},
			"footer#text": [
				{"value": "a", "font_weight": 700},
				{"value": "b", "font_size": 9.5, "font_family": "Mono"}
			]
		},
		"images": {"avatar#href": "avatar.png"},
		"shapes": {"bar#width": "120"}
	}`

	var values PlaceholderValues
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	title := values.Text["title#text"]
	if len(title.Spans) != 1 || title.Spans[0].Value != "Hello" || title.Spans[0].Fill != nil {
		t.Errorf("bare string did not normalize to a single plain span: %+v", title.Spans)
	}

	stat := values.Text["stat#text"]
	if len(stat.Spans) != 1 {
		t.Fatalf("span object did not normalize to one span: %+v", stat.Spans)
	}
	if stat.Spans[0].Value != "42" || stat.Spans[0].Fill == nil || *stat.Spans[0].Fill != "#FF0000" {
		t.Errorf("unexpected span: %+v", stat.Spans[0])
	}
	if stat.Spans[0].FontSize != nil || stat.Spans[0].FontWeight != nil {
		t.Errorf("unset span fields should stay nil: %+v", stat.Spans[0])
	}

	footer := values.Text["footer#text"]
	if len(footer.Spans) != 2 {
		t.Fatalf("span list did not keep both spans: %+v", footer.Spans)
	}
	if footer.Spans[0].FontWeight == nil || *footer.Spans[0].FontWeight != 700 {
		t.Errorf("unexpected first span: %+v", footer.Spans[0])
	}
	if footer.Spans[1].FontSize == nil || *footer.Spans[1].FontSize != 9.5 ||
		footer.Spans[1].FontFamily == nil || *footer.Spans[1].FontFamily != "Mono" {
		t.Errorf("unexpected second span: %+v", footer.Spans[1])
	}

	if values.Images["avatar#href"] != "avatar.png" {
		t.Errorf("unexpected image value: %q", values.Images["avatar#href"])
	}
	if values.Shapes["bar#width"] != "120" {
		t.Errorf("unexpected shape value: %q", values.Shapes["bar#width"])
	}
}

func TestTextValueRejectsOtherTypes(t *testing.T) {
	for _, raw := range []string{`5`, `true`, `null`} {
		var v TextValue
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			t.Errorf("expected error for text value %s", raw)
		}
	}
}

func TestTextValueMarshalNormalizes(t *testing.T) {
	var v TextValue
	if err := json.Unmarshal([]byte(`"hi"`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `[{"value":"hi"}]` {
		t.Errorf("unexpected normalized form: %s", out)
	}
}
