package render

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/CTAG07/statcard/pkg/schema"
)

// Apply writes a resolved substitution set into doc, which must be a copy of
// the schema's document (see Schema.Document). Shape attributes are set
// verbatim, image hrefs are swapped, and text slots have their children
// replaced by one tspan per resolved run. The schema's own document is never
// touched.
func Apply(doc *etree.Document, subs *Substitutions) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("document has no root element")
	}

	for _, s := range subs.Shapes {
		el := schema.FindElementByID(root, s.Element)
		if el == nil {
			return fmt.Errorf("shape element %q not found in document", s.Element)
		}
		el.CreateAttr(s.Attribute, s.Value)
	}

	for _, img := range subs.Images {
		el := schema.FindElementByID(root, img.Element)
		if el == nil {
			return fmt.Errorf("image element %q not found in document", img.Element)
		}
		// Keep whichever href spelling the exporter used.
		if el.SelectAttr("xlink:href") != nil {
			el.CreateAttr("xlink:href", img.Href)
		} else {
			el.CreateAttr("href", img.Href)
		}
	}

	for _, text := range subs.Text {
		el := schema.FindElementByID(root, text.Element)
		if el == nil {
			return fmt.Errorf("text element %q not found in document", text.Element)
		}
		setTextRuns(el, text.Runs)
	}

	return nil
}

// setTextRuns replaces el's children with one tspan per run, each carrying
// its resolved style as inline presentation attributes.
func setTextRuns(el *etree.Element, runs []TextRun) {
	el.SetText("")
	for _, child := range el.ChildElements() {
		el.RemoveChild(child)
	}

	for _, run := range runs {
		ts := el.CreateElement("tspan")
		ts.CreateAttr("fill", run.Fill)
		ts.CreateAttr("font-size", strconv.FormatFloat(run.FontSize, 'f', -1, 64))
		if run.FontWeight != 0 {
			ts.CreateAttr("font-weight", strconv.Itoa(run.FontWeight))
		}
		if run.FontFamily != "" {
			ts.CreateAttr("font-family", run.FontFamily)
		}
		ts.CreateAttr("xml:space", "preserve")
		ts.SetText(run.Value)
	}
}
