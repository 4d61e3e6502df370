package render

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/CTAG07/statcard/pkg/schema"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// RenderError indicates the template could not be drawn, usually because a
// substituted value produced an invalid document. These map to server errors:
// the template accepted the values but failed to render them.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render failed: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// CompositeError indicates the caller-supplied background could not be used.
type CompositeError struct {
	Err error
}

func (e *CompositeError) Error() string { return fmt.Sprintf("composite failed: %v", e.Err) }
func (e *CompositeError) Unwrap() error { return e.Err }

// Options carries the shared rendering resources.
type Options struct {
	Fonts  *FontDB
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// RenderOpaque fills the template with the given values and rasterizes it
// over the template's own background color. The schema is not modified; the
// same inputs always produce the same pixels.
func RenderOpaque(s *schema.Schema, values *schema.PlaceholderValues, opts Options) (*image.RGBA, error) {
	return render(s, values, opts, true)
}

// RenderTranslucent renders the template with a transparent backdrop and
// composites the result over the supplied background image.
func RenderTranslucent(s *schema.Schema, values *schema.PlaceholderValues, opts Options, background image.Image) (*image.RGBA, error) {
	fg, err := render(s, values, opts, false)
	if err != nil {
		return nil, err
	}
	return Composite(fg, background), nil
}

func render(s *schema.Schema, values *schema.PlaceholderValues, opts Options, opaque bool) (*image.RGBA, error) {
	subs := Resolve(s, values)
	doc := s.Document()
	if err := Apply(doc, subs); err != nil {
		return nil, &RenderError{Err: err}
	}

	c := canvas.New(s.Width, s.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	if opaque {
		col, ok := parseColor(s.Background)
		if !ok {
			col = canvas.White
		}
		ctx.SetFillColor(col)
		ctx.DrawPath(0.0, 0.0, canvas.Rectangle(s.Width, s.Height))
	}

	d := &drawer{
		ctx:    ctx,
		fonts:  opts.Fonts,
		sch:    s,
		logger: opts.logger(),
	}
	d.walk(doc.Root(), initialDrawState())
	if d.err != nil {
		return nil, &RenderError{Err: d.err}
	}

	// One canvas unit is one pixel.
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}
