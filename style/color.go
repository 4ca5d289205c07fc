package style

import (
	"image/color"
	"strconv"
	"strings"
)

// namedColors maps the accepted color names to their RGB hex values.
var namedColors = map[string]string{
	"white":   "#FFFFFF",
	"black":   "#000000",
	"red":     "#FF0000",
	"green":   "#00FF00",
	"blue":    "#0000FF",
	"yellow":  "#FFFF00",
	"cyan":    "#00FFFF",
	"magenta": "#FF00FF",
	"orange":  "#FFA500",
	"purple":  "#800080",
	"pink":    "#FFC0CB",
	"gray":    "#808080",
	"grey":    "#808080",
}

// NormalizeColor validates a color value and returns its canonical form:
// named colors stay lowercase names, hex values become "#RRGGBB".
func NormalizeColor(field, v string) (string, error) {
	lower := strings.ToLower(v)
	if _, ok := namedColors[lower]; ok {
		return lower, nil
	}

	hex := strings.TrimPrefix(v, "#")
	if len(hex) == 6 && isHex(hex) {
		return "#" + strings.ToUpper(hex), nil
	}
	return "", InvalidField(field, "invalid color %q, use hex (#RRGGBB) or a named color", v)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// FFmpegColor converts a canonical color into the 0xRRGGBB form the
// drawtext/drawbox filters expect. Unknown values fall back to white.
func FFmpegColor(v string) string {
	hex := canonicalHex(v)
	return "0x" + strings.TrimPrefix(hex, "#")
}

// ColorNRGBA converts a canonical color plus alpha into a color.NRGBA
// for the preview rasterizer. NRGBA keeps the channels non-premultiplied,
// matching the encoder's color@alpha semantics when blended.
func ColorNRGBA(v string, alpha float64) color.NRGBA {
	hex := strings.TrimPrefix(canonicalHex(v), "#")
	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(alpha*255 + 0.5)}
}

func canonicalHex(v string) string {
	if hex, ok := namedColors[strings.ToLower(v)]; ok {
		return hex
	}
	hex := strings.TrimPrefix(v, "#")
	if len(hex) == 6 && isHex(hex) {
		return "#" + strings.ToUpper(hex)
	}
	return "#FFFFFF"
}
