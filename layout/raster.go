package layout

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"captionforge/style"
)

// Rasterize draws a Plan over base and returns the composited frame.
// This is the live-preview side of the engine; the encode side feeds the
// same Plan to the encoder's filter graph, so both render the exact
// geometry this package computed.
func Rasterize(base image.Image, p Plan, face font.Face) image.Image {
	dc := gg.NewContextForImage(base)
	if face != nil {
		dc.SetFontFace(face)
	}

	for _, op := range p.Ops {
		switch op.Kind {
		case OpBackground:
			dc.SetColor(style.ColorNRGBA(op.Color, op.Alpha))
			dc.DrawRectangle(op.X, op.Y, op.W, op.H)
			dc.Fill()
		case OpShadow, OpFill:
			dc.SetColor(style.ColorNRGBA(op.Color, op.Alpha))
			dc.DrawStringAnchored(op.Text, op.X, op.Y, 0, 0.5)
		case OpOutline:
			drawOutline(dc, op)
		}
	}

	return dc.Image()
}

// drawOutline strokes a line of text by stamping it around a ring of
// offsets. The ring radius is half the stroke width, which matches the
// round-join stroke the encoder produces for the same plan.
func drawOutline(dc *gg.Context, op DrawOp) {
	dc.SetColor(style.ColorNRGBA(op.Color, op.Alpha))
	radius := op.StrokeWidth / 2
	if radius < 1 {
		radius = 1
	}
	const steps = 16
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / steps
		dx := radius * math.Cos(theta)
		dy := radius * math.Sin(theta)
		dc.DrawStringAnchored(op.Text, op.X+dx, op.Y+dy, 0, 0.5)
	}
}
