package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/colornames"
)

// parseColor parses a CSS color value. The second return is false for "none"
// and empty values (no paint). Unknown color names fall back to black rather
// than failing, matching how lenient SVG rasterizers treat bad paint.
func parseColor(v string) (color.RGBA, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "none") {
		return color.RGBA{}, false
	}
	if v[0] == '#' {
		return canvas.Hex(v), true
	}

	lower := strings.ToLower(v)
	if col, ok := colornames.Map[lower]; ok {
		return col, true
	}

	if comps, ok := colorFuncArgs(lower, "rgb("); ok {
		if len(comps) != 3 {
			return color.RGBA{0, 0, 0, 255}, true
		}
		return color.RGBA{
			R: colorComponent(comps[0]),
			G: colorComponent(comps[1]),
			B: colorComponent(comps[2]),
			A: 255,
		}, true
	}
	if comps, ok := colorFuncArgs(lower, "rgba("); ok {
		if len(comps) != 4 {
			return color.RGBA{0, 0, 0, 255}, true
		}
		alpha, err := strconv.ParseFloat(strings.TrimSpace(comps[3]), 64)
		if err != nil || alpha < 0 {
			alpha = 0
		} else if alpha > 1 {
			alpha = 1
		}
		a := uint8(alpha*255.0 + 0.5)
		// Stored premultiplied, like all color.RGBA values.
		return color.RGBA{
			R: uint8(float64(colorComponent(comps[0]))*alpha + 0.5),
			G: uint8(float64(colorComponent(comps[1]))*alpha + 0.5),
			B: uint8(float64(colorComponent(comps[2]))*alpha + 0.5),
			A: a,
		}, true
	}

	return color.RGBA{0, 0, 0, 255}, true
}

func colorFuncArgs(v, prefix string) ([]string, bool) {
	if !strings.HasPrefix(v, prefix) || !strings.HasSuffix(v, ")") {
		return nil, false
	}
	return strings.Split(v[len(prefix):len(v)-1], ","), true
}

func colorComponent(v string) uint8 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if v[len(v)-1] == '%' {
		num, err := strconv.ParseFloat(v[:len(v)-1], 64)
		if err != nil {
			return 0
		}
		return uint8(num*255.0/100.0 + 0.5)
	}
	num, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0
	}
	return uint8(num)
}

// parseDimension converts a CSS dimension to SVG user units (pixels).
// Percentages resolve against parent. Unlike color parsing, a value that is
// not a number is an error: these come from shape placeholders and a bad one
// must fail the render.
func parseDimension(v string, parent float64) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	i := 0
	for i < len(v) && (v[i] == '+' || v[i] == '-' || v[i] == '.' || (v[i] >= '0' && v[i] <= '9')) {
		i++
	}
	num, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad dimension %q", v)
	}
	switch strings.ToLower(v[i:]) {
	case "", "px":
		return num, nil
	case "pt":
		return num * 96.0 / 72.0, nil
	case "pc":
		return num * 96.0 / 6.0, nil
	case "mm":
		return num * 96.0 / 25.4, nil
	case "cm":
		return num * 10.0 * 96.0 / 25.4, nil
	case "in":
		return num * 96.0, nil
	case "%":
		return num * parent / 100.0, nil
	}
	return 0, fmt.Errorf("unknown dimension unit in %q", v)
}

// parsePoints splits a points/number list on whitespace and commas.
func parsePoints(v string) ([]float64, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	vals := make([]float64, 0, len(fields))
	for _, field := range fields {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number list %q", v)
		}
		vals = append(vals, val)
	}
	return vals, nil
}

// parseTransform parses an SVG transform list (translate, scale, rotate,
// matrix) into a canvas transformation matrix.
func parseTransform(v string) (canvas.Matrix, error) {
	m := canvas.Identity
	i, j := 0, 0
	var fun string
	for i < len(v) {
		switch v[i] {
		case '(':
			fun = strings.ToLower(strings.TrimSpace(v[j:i]))
			j = i + 1
		case ')':
			d, err := parsePoints(v[j:i])
			if err != nil {
				return m, err
			}
			switch fun {
			case "matrix":
				if len(d) != 6 {
					return m, fmt.Errorf("bad transform matrix %q", v)
				}
				m = m.Mul(canvas.Matrix{{d[0], d[2], d[4]}, {d[1], d[3], d[5]}})
			case "translate":
				switch len(d) {
				case 1:
					m = m.Translate(d[0], 0.0)
				case 2:
					m = m.Translate(d[0], d[1])
				default:
					return m, fmt.Errorf("bad transform translate %q", v)
				}
			case "scale":
				switch len(d) {
				case 1:
					m = m.Scale(d[0], d[0])
				case 2:
					m = m.Scale(d[0], d[1])
				default:
					return m, fmt.Errorf("bad transform scale %q", v)
				}
			case "rotate":
				switch len(d) {
				case 1:
					m = m.Rotate(d[0])
				case 3:
					m = m.RotateAbout(d[0], d[1], d[2])
				default:
					return m, fmt.Errorf("bad transform rotate %q", v)
				}
			default:
				return m, fmt.Errorf("unsupported transform %q", fun)
			}
			j = i + 1
		}
		i++
	}
	return m, nil
}
