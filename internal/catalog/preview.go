package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const defaultColor = "#6a0dad"

var fallbackColors = map[Category]string{
	GoodMorning:  "#FFD700",
	Motivational: "#FF6B6B",
	Shayari:      "#DA70D6",
	Religious:    "#FFD700",
	Love:         "#FF69B4",
	Festival:     "#FF6B9D",
}

var gradients = map[Category][2]string{
	GoodMorning:  {"FFD700", "FFA500"},
	Motivational: {"FF6B6B", "FF4757"},
	Shayari:      {"DA70D6", "FF69B4"},
	Religious:    {"FFD700", "DAA520"},
	Love:         {"FF69B4", "FFB6C1"},
	Festival:     {"FF6B9D", "FFC0CB"},
}

// FallbackColor is the placeholder colour shown while a template image
// cannot be loaded.
func FallbackColor(c Category) string {
	if color, ok := fallbackColors[c]; ok {
		return color
	}
	return defaultColor
}

// PreviewLabel is the human label drawn on generated previews.
func PreviewLabel(t Template) string {
	return strings.ReplaceAll(strings.TrimPrefix(t.ID, "tmpl_"), "_", " ")
}

// PreviewSVG renders a lightweight gradient thumbnail for t, coloured by its
// first category. Non-positive sizes fall back to 120x160.
func PreviewSVG(t Template, width, height int) []byte {
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 160
	}
	stops := [2]string{"6a0dad", "8b5cf6"}
	if len(t.Categories) > 0 {
		if g, ok := gradients[t.Categories[0]]; ok {
			stops = g
		}
	}

	var label bytes.Buffer
	_ = xml.EscapeText(&label, []byte(PreviewLabel(t)))

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, width, height)
	b.WriteString(`<defs><linearGradient id="grad" x1="0%" y1="0%" x2="100%" y2="100%">`)
	fmt.Fprintf(&b, `<stop offset="0%%" style="stop-color:#%s;stop-opacity:1"/>`, stops[0])
	fmt.Fprintf(&b, `<stop offset="100%%" style="stop-color:#%s;stop-opacity:1"/>`, stops[1])
	b.WriteString(`</linearGradient></defs>`)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#grad)"/>`, width, height)
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="12" fill="white" text-anchor="middle" dy=".3em">%s</text>`, width/2, height/2, label.String())
	b.WriteString(`</svg>`)
	return b.Bytes()
}
