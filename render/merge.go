package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/config"
	"captionforge/style"
)

// TrimMode selects which part of the first clip's duration is removed
// before concatenation.
type TrimMode string

const (
	// TrimStart removes time from the beginning.
	TrimStart TrimMode = "start"
	// TrimEnd removes time from the end.
	TrimEnd TrimMode = "end"
	// TrimBoth clamps from the tail: the configured duration is kept
	// from the start of the clip and the remainder is dropped.
	TrimBoth TrimMode = "both"
)

// ClipSpec is one independently-styled clip of a merge request.
type ClipSpec struct {
	Source    string           `json:"source"`
	Text      string           `json:"text"`
	Template  string           `json:"template"`
	Overrides *style.Overrides `json:"overrides"`
}

// MergeJob sequences 2-10 clips into one continuous timeline.
type MergeJob struct {
	Clips             []ClipSpec `json:"clips"`
	OutputFormat      string     `json:"output_format"`
	FirstClipDuration float64    `json:"first_clip_duration"`
	FirstClipTrimMode TrimMode   `json:"first_clip_trim_mode"`
}

// trimWindow is the resolved (-ss, -t) pair for the first clip.
type trimWindow struct {
	Start    float64
	Duration float64
}

// ValidateMerge fails fast before any download or encode work begins.
func ValidateMerge(job MergeJob) error {
	if len(job.Clips) < config.MinMergeClips || len(job.Clips) > config.MaxMergeClips {
		return fmt.Errorf("%w: clips: need %d-%d clips, got %d",
			style.ErrInvalidParameter, config.MinMergeClips, config.MaxMergeClips, len(job.Clips))
	}
	for i, c := range job.Clips {
		if c.Source == "" {
			return fmt.Errorf("%w: clips[%d].source: required", style.ErrInvalidParameter, i)
		}
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("%w: clips[%d].text: required", style.ErrInvalidParameter, i)
		}
		if len(c.Text) > config.MaxClipTextLength {
			return fmt.Errorf("%w: clips[%d].text: exceeds %d characters",
				style.ErrInvalidParameter, i, config.MaxClipTextLength)
		}
	}
	switch job.OutputFormat {
	case "", "mp4", "mov":
	default:
		return fmt.Errorf("%w: output_format: must be mp4 or mov", style.ErrInvalidParameter)
	}
	if job.FirstClipDuration < 0 {
		return fmt.Errorf("%w: first_clip_duration: must be positive", style.ErrInvalidParameter)
	}
	if job.FirstClipDuration > 0 {
		switch job.FirstClipTrimMode {
		case "", TrimStart, TrimEnd, TrimBoth:
		default:
			return fmt.Errorf("%w: first_clip_trim_mode: must be start, end or both", style.ErrInvalidParameter)
		}
	}
	return nil
}

// TrimFirst resolves the trim mode against the clip's actual length.
// target is the duration to keep. A target at or beyond the clip length
// is a no-op. TrimBoth keeps the head and drops the tail.
func TrimFirst(mode TrimMode, target, clipDuration float64) *trimWindow {
	if target <= 0 || clipDuration <= 0 || target >= clipDuration {
		return nil
	}
	switch mode {
	case TrimStart:
		return &trimWindow{Start: clipDuration - target, Duration: target}
	case TrimEnd, TrimBoth, "":
		return &trimWindow{Start: 0, Duration: target}
	}
	return nil
}

// RenderMerge runs the full merge pipeline: validate, resolve each clip
// through the layout engine, trim the first clip if requested, and
// concatenate in input order under the ten-minute ceiling.
func (e *Engine) RenderMerge(ctx context.Context, job MergeJob) (string, error) {
	if err := ValidateMerge(job); err != nil {
		return "", err
	}

	// Styles resolve before any download so bad overrides fail fast.
	styles := make([]style.Record, len(job.Clips))
	for i, c := range job.Clips {
		st, err := e.ResolveStyle(ctx, c.Template, c.Overrides)
		if err != nil {
			return "", fmt.Errorf("clips[%d]: %w", i, err)
		}
		styles[i] = st
	}

	ctx, cancel := context.WithTimeout(ctx, config.MergeTimeout)
	defer cancel()

	downloaded, err := e.downloadClips(ctx, job.Clips)
	if err != nil {
		e.cleanupFiles(downloaded)
		return "", err
	}
	defer e.cleanupFiles(downloaded)

	// Overlay each clip independently. Slots are indexed, so the output
	// order is the input order no matter which resolution finishes first.
	overlayed := make([]string, len(job.Clips))
	var wg sync.WaitGroup
	errs := make([]error, len(job.Clips))
	for i := range job.Clips {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var trim *trimWindow
			if i == 0 && job.FirstClipDuration > 0 {
				info, err := Probe(downloaded[i])
				if err != nil {
					errs[i] = err
					return
				}
				trim = TrimFirst(job.FirstClipTrimMode, job.FirstClipDuration, info.Duration)
			}

			out := filepath.Join(e.tempDir, fmt.Sprintf("overlayed_%s.mp4", uuid.NewString()))
			if err := e.applyClipOverlay(ctx, downloaded[i], out, job.Clips[i].Text, styles[i], trim); err != nil {
				errs[i] = fmt.Errorf("clips[%d]: %w", i, err)
				return
			}
			overlayed[i] = out
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			e.cleanupFiles(overlayed)
			return "", err
		}
	}
	defer e.cleanupFiles(overlayed)

	format := job.OutputFormat
	if format == "" {
		format = "mp4"
	}
	outputPath := filepath.Join(e.tempDir, fmt.Sprintf("merged_%s.%s", uuid.NewString(), format))

	if err := e.concatClips(ctx, overlayed, outputPath); err != nil {
		return "", err
	}

	e.logger.Info("merge rendered", "clips", len(job.Clips), "output", filepath.Base(outputPath))
	return outputPath, nil
}

// downloadClips fetches every clip concurrently, keeping input order.
func (e *Engine) downloadClips(ctx context.Context, clips []ClipSpec) ([]string, error) {
	urls := make([]string, len(clips))
	labels := make([]string, len(clips))
	for i, c := range clips {
		urls[i] = c.Source
		labels[i] = fmt.Sprintf("clips[%d]", i)
	}
	return e.downloadAll(ctx, urls, labels)
}

// applyClipOverlay styles one clip, optionally trimming it first.
func (e *Engine) applyClipOverlay(ctx context.Context, inputPath, outputPath, text string, st style.Record, trim *trimWindow) error {
	info, err := Probe(inputPath)
	if err != nil {
		return err
	}

	plan, _, _ := e.BuildPlanFor(st, info.Width, info.Height, text, style.FineOffset{})
	filters := e.planFilters(plan)

	inKwargs := ffmpeg.KwArgs{}
	if trim != nil && trim.Start > 0 {
		inKwargs["ss"] = fmt.Sprintf("%.3f", trim.Start)
	}
	outKwargs := ffmpeg.KwArgs{
		"vf":       filters,
		"c:v":      config.VideoCodec,
		"preset":   config.VideoPreset,
		"crf":      config.VideoCRF,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"movflags": "+faststart",
	}
	if trim != nil {
		outKwargs["t"] = fmt.Sprintf("%.3f", trim.Duration)
	}

	cmd := ffmpeg.Input(inputPath, inKwargs).
		Output(outputPath, outKwargs).
		OverWriteOutput().
		Silent(true).
		Compile()

	return e.runCmd(ctx, cmd, outputPath)
}

// concatClips joins the overlayed clips in order, injecting silent audio
// for clips that have none so the concat filter always has matched
// stream pairs.
func (e *Engine) concatClips(ctx context.Context, paths []string, outputPath string) error {
	infos := make([]MediaInfo, len(paths))
	anyAudio := false
	for i, p := range paths {
		info, err := Probe(p)
		if err != nil {
			return err
		}
		infos[i] = info
		if info.HasAudio {
			anyAudio = true
		}
	}

	var segments []*ffmpeg.Stream
	for i, p := range paths {
		in := ffmpeg.Input(p)
		segments = append(segments, in.Get("v"))
		if !anyAudio {
			continue
		}
		if infos[i].HasAudio {
			segments = append(segments, in.Get("a"))
		} else {
			silent := ffmpeg.Input("anullsrc=channel_layout=stereo:sample_rate=44100", ffmpeg.KwArgs{
				"f": "lavfi",
				"t": fmt.Sprintf("%.3f", infos[i].Duration),
			})
			segments = append(segments, silent)
		}
	}

	concatKwargs := ffmpeg.KwArgs{"v": 1, "a": 0}
	if anyAudio {
		concatKwargs["a"] = 1
	}

	outKwargs := ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"preset":   config.VideoPreset,
		"crf":      config.VideoCRF,
		"movflags": "+faststart",
	}
	if anyAudio {
		outKwargs["c:a"] = config.AudioCodec
		outKwargs["b:a"] = config.AudioBitrate
	}

	cmd := ffmpeg.Concat(segments, concatKwargs).
		Output(outputPath, outKwargs).
		OverWriteOutput().
		Silent(true).
		Compile()

	return e.runCmd(ctx, cmd, outputPath)
}
