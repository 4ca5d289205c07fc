package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
	"captionforge/style"
)

// OverlayJob describes one styled-text overlay render. Exactly one of
// Source (a URL) or LocalPath (an already-saved upload) must be set.
type OverlayJob struct {
	Source     string           `json:"source"`
	LocalPath  string           `json:"-"`
	Text       string           `json:"text"`
	Template   string           `json:"template"`
	Overrides  *style.Overrides `json:"overrides"`
	FineOffset style.FineOffset `json:"fine_offset"`

	// OutputFormat is one of "same", "mp4", "jpg", "png".
	OutputFormat string `json:"output_format"`
}

func (j OverlayJob) validate() error {
	if j.Source == "" && j.LocalPath == "" {
		return fmt.Errorf("%w: source: required", style.ErrInvalidParameter)
	}
	if strings.TrimSpace(j.Text) == "" {
		return fmt.Errorf("%w: text: required", style.ErrInvalidParameter)
	}
	if len(j.Text) > config.MaxClipTextLength {
		return fmt.Errorf("%w: text: exceeds %d characters", style.ErrInvalidParameter, config.MaxClipTextLength)
	}
	switch j.OutputFormat {
	case "", "same", "mp4", "jpg", "png":
	default:
		return fmt.Errorf("%w: output_format: unknown format %q", style.ErrInvalidParameter, j.OutputFormat)
	}
	return nil
}

// RenderOverlay runs the single-overlay pipeline: validate, resolve
// style, lay out the text, and encode under the two-minute ceiling.
// The returned path is the finished output file; the caller owns it.
func (e *Engine) RenderOverlay(ctx context.Context, job OverlayJob) (string, error) {
	if err := job.validate(); err != nil {
		return "", err
	}
	if err := style.ValidateFineOffset(job.FineOffset); err != nil {
		return "", err
	}

	st, err := e.ResolveStyle(ctx, job.Template, job.Overrides)
	if err != nil {
		return "", err
	}

	inputPath := job.LocalPath
	downloaded := false
	if inputPath == "" {
		inputPath, err = e.downloadFile(job.Source)
		if err != nil {
			return "", err
		}
		downloaded = true
	}
	defer func() {
		if downloaded {
			e.cleanupFiles([]string{inputPath})
		}
	}()

	outputExt := filepath.Ext(inputPath)
	if job.OutputFormat != "" && job.OutputFormat != "same" {
		outputExt = "." + job.OutputFormat
	}
	outputPath := filepath.Join(e.tempDir, uuid.NewString()+outputExt)

	ctx, cancel := context.WithTimeout(ctx, config.OverlayTimeout)
	defer cancel()

	if err := e.applyStyledText(ctx, inputPath, outputPath, job.Text, st, job.FineOffset); err != nil {
		return "", err
	}

	e.logger.Info("overlay rendered", "output", filepath.Base(outputPath))
	return outputPath, nil
}

// applyStyledText overlays text on a single input using the shared
// layout engine for all geometry and ffmpeg for the pixels.
func (e *Engine) applyStyledText(ctx context.Context, inputPath, outputPath, text string, st style.Record, fine style.FineOffset) error {
	info, err := Probe(inputPath)
	if err != nil {
		return err
	}

	plan, _, _ := e.BuildPlanFor(st, info.Width, info.Height, text, fine)
	filters := e.planFilters(plan)

	var kwargs ffmpeg.KwArgs
	if IsImage(outputPath) {
		kwargs = ffmpeg.KwArgs{
			"vf":       filters,
			"q:v":      config.ImageQuality,
			"frames:v": "1",
		}
	} else {
		kwargs = ffmpeg.KwArgs{
			"vf":       filters,
			"c:v":      config.VideoCodec,
			"preset":   config.VideoPreset,
			"crf":      config.VideoCRF,
			"c:a":      config.AudioCodec,
			"b:a":      config.AudioBitrate,
			"movflags": "+faststart",
		}
	}

	cmd := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Silent(true).
		Compile()

	return e.runCmd(ctx, cmd, outputPath)
}
