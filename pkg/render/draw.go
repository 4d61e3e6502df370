package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/statcard/pkg/schema"
	"github.com/beevik/etree"
	"github.com/tdewolff/canvas"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// drawState carries the inheritable presentation properties down the element
// tree. Zero values mean "inherit nothing": fillSet distinguishes an explicit
// fill:none from an absent one.
type drawState struct {
	fill       canvas.Paint
	fillSet    bool
	stroke     canvas.Paint
	strokeSet  bool
	strokeW    float64
	fontFamily string
	fontSize   float64
	fontWeight int
	anchor     string
}

// drawer walks a mutated SVG document and issues canvas draw calls. The first
// error stops the walk; subsequent elements are skipped.
type drawer struct {
	ctx    *canvas.Context
	fonts  *FontDB
	sch    *schema.Schema
	logger *slog.Logger
	err    error
}

func initialDrawState() drawState {
	return drawState{
		fill:       canvas.Paint{Color: canvas.Black},
		fillSet:    true,
		strokeW:    1.0,
		fontSize:   16.0,
		fontWeight: 400,
		anchor:     "start",
	}
}

func (d *drawer) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

// attr resolves a presentation property from the attribute or the style=""
// declaration list, with style winning as in CSS.
func attr(el *etree.Element, name string) string {
	v := el.SelectAttrValue(name, "")
	for _, decl := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(prop) == name {
			v = strings.TrimSpace(val)
		}
	}
	return v
}

func (d *drawer) length(el *etree.Element, name string, parent float64) float64 {
	v := attr(el, name)
	if v == "" {
		return 0
	}
	n, err := parseDimension(v, parent)
	if err != nil {
		d.fail("element %q: attribute %s: %v", el.SelectAttrValue("id", el.Tag), name, err)
	}
	return n
}

func (d *drawer) inherit(el *etree.Element, st drawState) drawState {
	if v := attr(el, "fill"); v != "" {
		col, ok := parseColor(v)
		st.fill = canvas.Paint{Color: col}
		st.fillSet = ok
	}
	if v := attr(el, "stroke"); v != "" {
		col, ok := parseColor(v)
		st.stroke = canvas.Paint{Color: col}
		st.strokeSet = ok
	}
	if v := attr(el, "stroke-width"); v != "" {
		st.strokeW = d.length(el, "stroke-width", 0)
	}
	if v := attr(el, "font-family"); v != "" {
		st.fontFamily = v
	}
	if v := attr(el, "font-size"); v != "" {
		st.fontSize = d.length(el, "font-size", st.fontSize)
	}
	if v := attr(el, "font-weight"); v != "" {
		if w, ok := parseCSSFontWeight(v); ok {
			st.fontWeight = w
		}
	}
	if v := attr(el, "text-anchor"); v != "" {
		st.anchor = v
	}
	return st
}

func parseCSSFontWeight(v string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "normal":
		return 400, true
	case "bold":
		return 700, true
	}
	var w int
	if _, err := fmt.Sscanf(v, "%d", &w); err == nil && 1 <= w && w <= 1000 {
		return w, true
	}
	return 0, false
}

// paint applies the current fill/stroke state to the context and reports
// whether there is anything to paint at all.
func (d *drawer) paint(st drawState) bool {
	if st.fillSet {
		d.ctx.Style.Fill = st.fill
	} else {
		d.ctx.Style.Fill = canvas.Paint{Color: canvas.Transparent}
	}
	if st.strokeSet {
		d.ctx.Style.Stroke = st.stroke
		d.ctx.SetStrokeWidth(st.strokeW)
	} else {
		d.ctx.Style.Stroke = canvas.Paint{Color: canvas.Transparent}
	}
	return st.fillSet || st.strokeSet
}

func (d *drawer) walk(el *etree.Element, st drawState) {
	if d.err != nil {
		return
	}
	switch el.Tag {
	case "defs", "title", "desc", "metadata", "style", "symbol":
		return
	}

	st = d.inherit(el, st)

	if v := el.SelectAttrValue("transform", ""); v != "" {
		m, err := parseTransform(v)
		if err != nil {
			d.fail("element %q: %v", el.SelectAttrValue("id", el.Tag), err)
			return
		}
		d.ctx.Push()
		d.ctx.ComposeView(m)
		defer d.ctx.Pop()
	}

	switch el.Tag {
	case "svg", "g", "a":
		for _, child := range el.ChildElements() {
			d.walk(child, st)
		}
	case "rect":
		d.drawRect(el, st)
	case "circle":
		d.drawShape(el, st, canvas.Circle(d.length(el, "r", 0)),
			d.length(el, "cx", 0), d.length(el, "cy", 0))
	case "ellipse":
		d.drawShape(el, st, canvas.Ellipse(d.length(el, "rx", 0), d.length(el, "ry", 0)),
			d.length(el, "cx", 0), d.length(el, "cy", 0))
	case "line":
		p := &canvas.Path{}
		p.MoveTo(d.length(el, "x1", 0), d.length(el, "y1", 0))
		p.LineTo(d.length(el, "x2", 0), d.length(el, "y2", 0))
		d.drawShape(el, st, p, 0, 0)
	case "polyline", "polygon":
		d.drawPoly(el, st, el.Tag == "polygon")
	case "path":
		d.drawPath(el, st)
	case "image":
		d.drawImage(el, st)
	case "text":
		d.drawText(el, st)
	default:
		d.logger.Debug("Skipping unsupported element", "tag", el.Tag)
	}
}

func (d *drawer) drawShape(el *etree.Element, st drawState, p *canvas.Path, x, y float64) {
	if d.err != nil || p.Empty() {
		return
	}
	if d.paint(st) {
		d.ctx.DrawPath(x, y, p)
	}
}

func (d *drawer) drawRect(el *etree.Element, st drawState) {
	w := d.length(el, "width", d.sch.Width)
	h := d.length(el, "height", d.sch.Height)
	if d.err != nil || w <= 0 || h <= 0 {
		return
	}
	var p *canvas.Path
	if rx := d.length(el, "rx", w); rx > 0 {
		p = canvas.RoundedRectangle(w, h, rx)
	} else {
		p = canvas.Rectangle(w, h)
	}
	d.drawShape(el, st, p, d.length(el, "x", d.sch.Width), d.length(el, "y", d.sch.Height))
}

func (d *drawer) drawPoly(el *etree.Element, st drawState, closed bool) {
	pts, err := parsePoints(el.SelectAttrValue("points", ""))
	if err != nil {
		d.fail("element %q: %v", el.SelectAttrValue("id", el.Tag), err)
		return
	}
	if len(pts) < 4 {
		return
	}
	p := &canvas.Path{}
	p.MoveTo(pts[0], pts[1])
	for i := 3; i < len(pts); i += 2 {
		p.LineTo(pts[i-1], pts[i])
	}
	if closed {
		p.Close()
	}
	d.drawShape(el, st, p, 0, 0)
}

func (d *drawer) drawPath(el *etree.Element, st drawState) {
	data := el.SelectAttrValue("d", "")
	if data == "" {
		return
	}
	p, err := canvas.ParseSVGPath(data)
	if err != nil {
		d.fail("element %q: bad path data: %v", el.SelectAttrValue("id", el.Tag), err)
		return
	}
	d.drawShape(el, st, p, 0, 0)
}

func (d *drawer) drawImage(el *etree.Element, st drawState) {
	href := el.SelectAttrValue("href", "")
	if href == "" {
		href = el.SelectAttrValue("xlink:href", "")
	}
	if href == "" {
		return
	}
	img, err := d.loadImage(href)
	if err != nil {
		d.fail("element %q: %v", el.SelectAttrValue("id", el.Tag), err)
		return
	}
	x := d.length(el, "x", d.sch.Width)
	y := d.length(el, "y", d.sch.Height)
	w := d.length(el, "width", d.sch.Width)
	h := d.length(el, "height", d.sch.Height)
	if d.err != nil {
		return
	}
	bounds := img.Bounds()
	if w <= 0 {
		w = float64(bounds.Dx())
	}
	if h <= 0 {
		h = float64(bounds.Dy())
	}
	d.ctx.Push()
	d.ctx.ComposeView(canvas.Identity.Translate(x, y).Scale(
		w/float64(bounds.Dx()), h/float64(bounds.Dy())))
	d.ctx.DrawImage(0.0, 0.0, img, canvas.DPMM(1.0))
	d.ctx.Pop()
}

func (d *drawer) loadImage(href string) (image.Image, error) {
	if data, ok := strings.CutPrefix(href, "data:"); ok {
		meta, payload, found := strings.Cut(data, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("unsupported data URI")
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding embedded image: %w", err)
		}
		return img, nil
	}

	path, err := d.sch.AssetPath(href)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image asset: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image asset %q: %w", href, err)
	}
	return img, nil
}

// drawText renders a text element. Each tspan child is an independent run
// with its own styling; runs lay out left to right from the element's x,y
// baseline position, then the whole line shifts per text-anchor.
func (d *drawer) drawText(el *etree.Element, st drawState) {
	x := d.length(el, "x", d.sch.Width)
	y := d.length(el, "y", d.sch.Height)
	if d.err != nil {
		return
	}

	type run struct {
		text  *canvas.Text
		width float64
	}
	var runs []run
	var total float64

	emit := func(s string, rs drawState) {
		if s == "" {
			return
		}
		col := canvas.Black
		if rs.fillSet {
			col = rs.fill.Color
		}
		face := d.fonts.Face(rs.fontFamily, rs.fontSize, col, rs.fontWeight)
		if face == nil {
			d.logger.Warn("No font available for text run", "family", rs.fontFamily)
			return
		}
		line := canvas.NewTextLine(face, s, canvas.Left)
		w := line.Bounds().W()
		runs = append(runs, run{text: line, width: w})
		total += w
	}

	children := el.ChildElements()
	if len(children) == 0 {
		emit(el.Text(), st)
	}
	for _, child := range children {
		if child.Tag != "tspan" {
			continue
		}
		emit(child.Text(), d.inherit(child, st))
	}

	switch st.anchor {
	case "middle":
		x -= total / 2.0
	case "end":
		x -= total
	}
	for _, r := range runs {
		d.ctx.DrawText(x, y, r.text)
		x += r.width
	}
}
