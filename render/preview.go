package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"captionforge/config"
	"captionforge/layout"
	"captionforge/style"
)

// PreviewJob rasterizes a styled text block over a blank frame without
// touching the encoder. It exists so clients can iterate on styling
// cheaply; the geometry is computed by the exact code the encode path
// uses.
type PreviewJob struct {
	Text        string           `json:"text"`
	Template    string           `json:"template"`
	Overrides   *style.Overrides `json:"overrides"`
	FineOffset  style.FineOffset `json:"fine_offset"`
	FrameWidth  int              `json:"frame_width"`
	FrameHeight int              `json:"frame_height"`
}

// RenderPreview returns the composited preview frame.
func (e *Engine) RenderPreview(ctx context.Context, job PreviewJob) (image.Image, error) {
	if strings.TrimSpace(job.Text) == "" {
		return nil, fmt.Errorf("%w: text: required", style.ErrInvalidParameter)
	}
	if len(job.Text) > config.MaxClipTextLength {
		return nil, fmt.Errorf("%w: text: exceeds %d characters", style.ErrInvalidParameter, config.MaxClipTextLength)
	}
	if err := style.ValidateFineOffset(job.FineOffset); err != nil {
		return nil, err
	}

	w, h := job.FrameWidth, job.FrameHeight
	if w == 0 && h == 0 {
		w, h = config.CollageWidth, config.CollageHeight
	}
	if w < 16 || h < 16 || w > 7680 || h > 7680 {
		return nil, fmt.Errorf("%w: frame_width/frame_height: unreasonable frame size %dx%d", style.ErrInvalidParameter, w, h)
	}

	st, err := e.ResolveStyle(ctx, job.Template, job.Overrides)
	if err != nil {
		return nil, err
	}

	base := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(base, base.Bounds(), image.Black, image.Point{}, draw.Src)

	plan, _, _ := e.BuildPlanFor(st, w, h, job.Text, job.FineOffset)
	return layout.Rasterize(base, plan, e.face(st.FontSize)), nil
}
