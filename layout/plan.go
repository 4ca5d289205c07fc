package layout

import "captionforge/style"

// BoxPadding is the constant padding of the background box, all sides.
const BoxPadding = 10

// ShadowAlpha is the fixed opacity of the shadow pass, independent of
// text_opacity.
const ShadowAlpha = 0.7

// OpKind identifies a draw operation.
type OpKind int

const (
	OpBackground OpKind = iota
	OpShadow
	OpOutline
	OpFill
)

// DrawOp is one step of the compositing sequence. Text ops position the
// line by its left edge X and vertical center Y. The background op uses
// X/Y as the box's top-left corner with W/H extents.
type DrawOp struct {
	Kind        OpKind
	Text        string
	X, Y        float64
	W, H        float64
	Color       string
	Alpha       float64
	StrokeWidth float64
}

// Plan is the ordered draw sequence for one text block. Op order is
// fixed: one background box beneath everything, then shadow, outline and
// fill per line, top to bottom. Each op carries its own color and alpha,
// so shadow state can never bleed into the outline or fill passes.
type Plan struct {
	FontSize   int
	FontWeight int
	Ops        []DrawOp
}

// BuildPlan converts resolved geometry into the compositing sequence.
func BuildPlan(st style.Record, lay Layout, lines []string) Plan {
	p := Plan{FontSize: st.FontSize, FontWeight: st.FontWeight}

	if st.BackgroundEnabled && len(lines) > 0 {
		maxW := 0.0
		for _, w := range lay.LineW {
			if w > maxW {
				maxW = w
			}
		}

		var left float64
		switch st.Alignment {
		case style.AlignLeft:
			left = lay.AnchorX
		case style.AlignRight:
			left = lay.AnchorX - maxW
		default:
			left = lay.AnchorX - maxW/2
		}

		total := lay.LineHeight * float64(len(lines))
		p.Ops = append(p.Ops, DrawOp{
			Kind:  OpBackground,
			X:     left - BoxPadding,
			Y:     lay.AnchorY - total/2 - BoxPadding,
			W:     maxW + 2*BoxPadding,
			H:     total + 2*BoxPadding,
			Color: st.BackgroundColor,
			Alpha: st.BackgroundOpacity,
		})
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		if st.ShadowX != 0 || st.ShadowY != 0 {
			p.Ops = append(p.Ops, DrawOp{
				Kind:  OpShadow,
				Text:  line,
				X:     lay.LineX[i] + float64(st.ShadowX),
				Y:     lay.LineY[i] + float64(st.ShadowY),
				Color: st.ShadowColor,
				Alpha: ShadowAlpha,
			})
		}
		if st.BorderWidth > 0 {
			p.Ops = append(p.Ops, DrawOp{
				Kind:        OpOutline,
				Text:        line,
				X:           lay.LineX[i],
				Y:           lay.LineY[i],
				Color:       st.BorderColor,
				Alpha:       1.0,
				StrokeWidth: float64(st.BorderWidth) * 2,
			})
		}
		p.Ops = append(p.Ops, DrawOp{
			Kind:  OpFill,
			Text:  line,
			X:     lay.LineX[i],
			Y:     lay.LineY[i],
			Color: st.TextColor,
			Alpha: st.TextOpacity,
		})
	}

	return p
}
