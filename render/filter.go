package render

import (
	"fmt"
	"strings"

	"captionforge/layout"
	"captionforge/style"
)

// SanitizeText strips characters that are unsafe inside a filter graph
// (shell-relevant and smart-quote variants) and trims the result.
// Newlines survive so multi-line text keeps its manual breaks.
func SanitizeText(s string) string {
	replacer := strings.NewReplacer(
		"`", "", "$", "",
		"\"", "", "“", "", "”", "",
		"'", "", "‘", "", "’", "",
		"\r", "",
	)
	return strings.TrimSpace(replacer.Replace(s))
}

// escapeDrawtext escapes a single display line for the drawtext filter.
// Backslashes must be handled before the characters that are escaped
// with them.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	return s
}

// planFilters translates an ordered draw plan into the equivalent
// drawbox/drawtext filter chain. Op order in the plan is the filter
// order, so the encoder composites exactly like the preview rasterizer.
func (e *Engine) planFilters(p layout.Plan) string {
	var filters []string

	fontArg := "font=Sans"
	if e.fontPath != "" {
		fontArg = "fontfile=" + e.fontPath
	}

	for _, op := range p.Ops {
		switch op.Kind {
		case layout.OpBackground:
			filters = append(filters, fmt.Sprintf(
				"drawbox=x=%.0f:y=%.0f:w=%.0f:h=%.0f:color=%s@%.2f:t=fill",
				op.X, op.Y, op.W, op.H, style.FFmpegColor(op.Color), op.Alpha))

		case layout.OpShadow, layout.OpFill:
			filters = append(filters, fmt.Sprintf(
				"drawtext=%s:text='%s':fontsize=%d:fontcolor=%s@%.2f:x=%.1f:y=%.1f",
				fontArg, escapeDrawtext(op.Text), p.FontSize,
				style.FFmpegColor(op.Color), op.Alpha,
				op.X, op.Y-float64(p.FontSize)/2))

		case layout.OpOutline:
			// Transparent fill leaves only the border ring.
			filters = append(filters, fmt.Sprintf(
				"drawtext=%s:text='%s':fontsize=%d:fontcolor=%s@0.0:borderw=%.0f:bordercolor=%s@%.2f:x=%.1f:y=%.1f",
				fontArg, escapeDrawtext(op.Text), p.FontSize,
				style.FFmpegColor(op.Color), op.StrokeWidth/2,
				style.FFmpegColor(op.Color), op.Alpha,
				op.X, op.Y-float64(p.FontSize)/2))
		}
	}

	return strings.Join(filters, ",")
}

// BuildPlanFor is the one entry point both the encode path and the
// preview endpoint use: sanitize, wrap, resolve and plan in a single
// deterministic sequence.
func (e *Engine) BuildPlanFor(st style.Record, frameW, frameH int, text string, fine style.FineOffset) (layout.Plan, layout.Layout, []string) {
	clean := SanitizeText(text)
	maxWidth := float64(frameW) * float64(st.MaxTextWidthPercent) / 100

	lines := layout.Wrap(clean, maxWidth, st.FontSize, e.measurer)
	lay := layout.Resolve(st, frameW, frameH, lines, fine, e.measurer)
	plan := layout.BuildPlan(st, lay, lines)
	return plan, lay, lines
}
