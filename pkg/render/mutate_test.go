package render

import (
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/CTAG07/statcard/pkg/schema"
)

func parseDoc(tb testing.TB, svg string) *etree.Document {
	tb.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(svg); err != nil {
		tb.Fatalf("failed to parse svg: %v", err)
	}
	return doc
}

func TestApplyShapesAndImages(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
		<rect id="bar" width="50" height="20"/>
		<image id="avatar" xlink:href="old.png"/>
	</svg>`)

	err := Apply(doc, &Substitutions{
		Shapes: []ResolvedShape{{Element: "bar", Attribute: "width", Value: "120"}},
		Images: []ResolvedImage{{Element: "avatar", Href: "new.png"}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	bar := schema.FindElementByID(doc.Root(), "bar")
	if got := bar.SelectAttrValue("width", ""); got != "120" {
		t.Errorf("bar width = %q, expected 120", got)
	}
	avatar := schema.FindElementByID(doc.Root(), "avatar")
	if got := avatar.SelectAttrValue("xlink:href", ""); got != "new.png" {
		t.Errorf("avatar xlink:href = %q, expected new.png", got)
	}
	if avatar.SelectAttr("href") != nil {
		t.Error("Apply should keep the exporter's href spelling, not add a second attribute")
	}
}

func TestApplyTextRuns(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
		<text id="wins" x="5" y="5">old <tspan>content</tspan></text>
	</svg>`)

	err := Apply(doc, &Substitutions{
		Text: []ResolvedText{{Element: "wins", Runs: []TextRun{
			{Value: "W ", Fill: "#000000", FontSize: 12},
			{Value: "5", Fill: "#FF0000", FontSize: 16, FontWeight: 700, FontFamily: "Mono"},
		}}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	el := schema.FindElementByID(doc.Root(), "wins")
	spans := el.ChildElements()
	if len(spans) != 2 {
		t.Fatalf("expected 2 tspans, got %d", len(spans))
	}
	if strings.TrimSpace(el.Text()) != "" {
		t.Errorf("old direct text should be gone, got %q", el.Text())
	}

	first := spans[0]
	if first.Text() != "W " || first.SelectAttrValue("fill", "") != "#000000" ||
		first.SelectAttrValue("font-size", "") != "12" {
		t.Errorf("unexpected first tspan: %s", elementString(t, first))
	}
	if first.SelectAttr("font-weight") != nil || first.SelectAttr("font-family") != nil {
		t.Errorf("default-styled run should not carry weight/family attrs: %s", elementString(t, first))
	}
	if first.SelectAttrValue("xml:space", "") != "preserve" {
		t.Error("tspans must preserve whitespace")
	}

	second := spans[1]
	if second.SelectAttrValue("font-weight", "") != "700" ||
		second.SelectAttrValue("font-family", "") != "Mono" ||
		second.SelectAttrValue("font-size", "") != "16" {
		t.Errorf("unexpected second tspan: %s", elementString(t, second))
	}
}

func TestApplyMissingElement(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`)

	err := Apply(doc, &Substitutions{
		Shapes: []ResolvedShape{{Element: "ghost", Attribute: "width", Value: "1"}},
	})
	if err == nil {
		t.Fatal("expected an error for a target element missing from the document")
	}
}

func elementString(tb testing.TB, el *etree.Element) string {
	tb.Helper()
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		tb.Fatalf("failed to serialize element: %v", err)
	}
	return s
}
