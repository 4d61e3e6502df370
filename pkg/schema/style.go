package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// TextStyle is the fully resolved default style of a text slot. Fill and
// FontSize are always concrete after loading; FontWeight and FontFamily may
// stay at their zero values, in which case the rasterizer's font defaults
// apply.
type TextStyle struct {
	Fill       string
	FontSize   float64 // pixels
	FontWeight int     // 0 = unset
	FontFamily string  // "" = unset
}

// resolveInheritedStyle walks el's ancestor chain and resolves each style
// field independently, nearest ancestor wins. Fill and font size are
// required; a text slot without a concrete value for either is malformed.
func resolveInheritedStyle(el *etree.Element) (TextStyle, error) {
	var style TextStyle
	var sizeRaw string

	for e := el; e != nil; e = e.Parent() {
		if style.Fill == "" {
			style.Fill = presentationAttr(e, "fill")
		}
		if sizeRaw == "" {
			sizeRaw = presentationAttr(e, "font-size")
		}
		if style.FontWeight == 0 {
			if v := presentationAttr(e, "font-weight"); v != "" {
				w, err := parseFontWeight(v)
				if err != nil {
					return TextStyle{}, err
				}
				style.FontWeight = w
			}
		}
		if style.FontFamily == "" {
			style.FontFamily = presentationAttr(e, "font-family")
		}
	}

	if style.Fill == "" {
		return TextStyle{}, fmt.Errorf("no inherited fill")
	}
	if sizeRaw == "" {
		return TextStyle{}, fmt.Errorf("no inherited font-size")
	}
	size, err := parseLength(sizeRaw)
	if err != nil || size <= 0 {
		return TextStyle{}, fmt.Errorf("bad inherited font-size %q", sizeRaw)
	}
	style.FontSize = size

	return style, nil
}

// presentationAttr reads a presentation property from an element. An inline
// style declaration wins over the plain attribute, matching the CSS rule the
// drawing pass applies.
func presentationAttr(el *etree.Element, name string) string {
	v := el.SelectAttrValue(name, "")
	for _, item := range strings.Split(el.SelectAttrValue("style", ""), ";") {
		if key, val, ok := strings.Cut(item, ":"); ok && strings.TrimSpace(key) == name {
			v = strings.TrimSpace(val)
		}
	}
	return v
}

// parseLength converts a CSS length to pixels. Unitless values and px pass
// through; physical units convert at 96dpi.
func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty length")
	}
	i := len(v)
	for i > 0 && (v[i-1] < '0' || v[i-1] > '9') && v[i-1] != '.' {
		i--
	}
	num, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad length %q", v)
	}
	switch strings.ToLower(strings.TrimSpace(v[i:])) {
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
	}
	return 0, fmt.Errorf("unknown length unit in %q", v)
}

// parseFontWeight accepts CSS keyword or numeric weights.
func parseFontWeight(v string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "normal":
		return 400, nil
	case "bold":
		return 700, nil
	case "bolder":
		return 800, nil
	case "lighter":
		return 300, nil
	}
	w, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || w < 1 || w > 1000 {
		return 0, fmt.Errorf("bad font-weight %q", v)
	}
	return w, nil
}
