package layout

import "captionforge/style"

// EdgeMargin is the fixed distance from a frame edge for the corner and
// edge presets.
const EdgeMargin = 50

// Layout is the fully-resolved geometry of a text block: the anchor
// pivot, each line's left edge and vertical center, and the shared line
// height. Both the encoder and the preview consume this verbatim.
type Layout struct {
	AnchorX    float64
	AnchorY    float64
	LineX      []float64 // left edge per line
	LineY      []float64 // vertical center per line
	LineW      []float64 // measured width per line
	LineHeight float64
	Alignment  string
}

// Anchor maps a resolved style to its base anchor point for the given
// frame. Custom positions are the anchor; fine offsets do not apply to
// them (they represent the position itself in custom mode).
func Anchor(st style.Record, frameW, frameH int, fine style.FineOffset) (float64, float64) {
	w := float64(frameW)
	h := float64(frameH)

	if st.Position == style.PositionCustom {
		return float64(st.CustomX), float64(st.CustomY)
	}

	var x, y float64
	switch st.Position {
	case style.PositionCenter:
		x, y = w/2, h/2
	case style.PositionTopLeft:
		x, y = EdgeMargin, EdgeMargin
	case style.PositionTopCenter:
		x, y = w/2, float64(st.FontSize)*1.5
	case style.PositionTopRight:
		x, y = w-EdgeMargin, EdgeMargin
	case style.PositionMiddleLeft:
		x, y = EdgeMargin, h/2
	case style.PositionMiddleRight:
		x, y = w-EdgeMargin, h/2
	case style.PositionBottomLeft:
		x, y = EdgeMargin, h-EdgeMargin
	case style.PositionBottomCenter:
		x, y = w/2, h-EdgeMargin
	case style.PositionBottomRight:
		x, y = w-EdgeMargin, h-EdgeMargin
	default:
		x, y = w/2, h/2
	}

	// The fine offset is added exactly once, here and nowhere else.
	return x + float64(fine.X), y + float64(fine.Y)
}

// LineHeight derives the per-line advance from the font size and the
// spacing adjustment.
func LineHeight(st style.Record) float64 {
	return float64(st.FontSize)*1.2 + float64(st.LineSpacing)
}

// Resolve turns a style, frame and wrapped lines into exact per-line
// draw positions. The block is vertically centered on the anchor; every
// line aligns against the same horizontal pivot, so a ragged block stays
// on one axis.
func Resolve(st style.Record, frameW, frameH int, lines []string, fine style.FineOffset, m Measurer) Layout {
	anchorX, anchorY := Anchor(st, frameW, frameH, fine)
	lineHeight := LineHeight(st)
	total := lineHeight * float64(len(lines))

	lay := Layout{
		AnchorX:    anchorX,
		AnchorY:    anchorY,
		LineX:      make([]float64, len(lines)),
		LineY:      make([]float64, len(lines)),
		LineW:      make([]float64, len(lines)),
		LineHeight: lineHeight,
		Alignment:  st.Alignment,
	}

	firstCenter := anchorY - total/2 + lineHeight/2
	for i, line := range lines {
		width := m.Width(line, st.FontSize)
		lay.LineW[i] = width
		lay.LineY[i] = firstCenter + lineHeight*float64(i)

		switch st.Alignment {
		case style.AlignLeft:
			lay.LineX[i] = anchorX
		case style.AlignRight:
			lay.LineX[i] = anchorX - width
		default: // center
			lay.LineX[i] = anchorX - width/2
		}
	}

	return lay
}
