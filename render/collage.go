package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/font"

	"captionforge/config"
	"captionforge/layout"
	"captionforge/style"
)

// Slot is one named, fixed-geometry cell of a collage canvas.
type Slot struct {
	Name string
	X, Y int
	W, H int
}

// titleZoneHeight reserves the top band of the canvas for the title and
// subtitle so text never overlaps an image cell.
const titleZoneHeight = 288

// GridSlots returns the nine equal cells of the grid variant, laid out
// three by three below the title zone.
func GridSlots() []Slot {
	cellW := config.CollageWidth / 3
	cellH := (config.CollageHeight - titleZoneHeight) / 3
	slots := make([]Slot, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			slots = append(slots, Slot{
				Name: fmt.Sprintf("cell_%d", row*3+col+1),
				X:    col * cellW,
				Y:    titleZoneHeight + row*cellH,
				W:    cellW,
				H:    cellH,
			})
		}
	}
	return slots
}

// OverlapSlots returns the eight named cells of the overlap variant.
// Cells are unequally sized and deliberately overlap; later slots in
// the slice are drawn on top of earlier ones.
func OverlapSlots() []Slot {
	return []Slot{
		{Name: "back_left", X: 0, Y: titleZoneHeight, W: 620, H: 560},
		{Name: "back_right", X: 460, Y: titleZoneHeight + 70, W: 620, H: 560},
		{Name: "mid_left", X: 0, Y: 780, W: 580, H: 540},
		{Name: "mid_right", X: 500, Y: 850, W: 580, H: 540},
		{Name: "front_left", X: 40, Y: 1260, W: 540, H: 520},
		{Name: "front_right", X: 520, Y: 1330, W: 540, H: 520},
		{Name: "accent_top", X: 300, Y: 620, W: 480, H: 420},
		{Name: "accent_bottom", X: 280, Y: 1180, W: 480, H: 420},
	}
}

// GridCollageJob builds the nine-image grid variant. ImageURLs are
// assigned to cells in order, left to right, top to bottom.
type GridCollageJob struct {
	ImageURLs        []string `json:"image_urls"`
	MainTitle        string   `json:"main_title"`
	Subtitle         string   `json:"subtitle"`
	TitleFontSize    int      `json:"title_font_size"`
	SubtitleFontSize int      `json:"subtitle_font_size"`
	Duration         float64  `json:"duration"`
	FadeIn           *float64 `json:"fade_in"`
}

// OverlapCollageJob builds the eight-image overlap variant. Every slot
// name returned by OverlapSlots must be present in Images.
type OverlapCollageJob struct {
	Images           map[string]string `json:"images"`
	MainTitle        string            `json:"main_title"`
	Subtitle         string            `json:"subtitle"`
	TitleFontSize    int               `json:"title_font_size"`
	SubtitleFontSize int               `json:"subtitle_font_size"`
	Duration         float64           `json:"duration"`
	FadeIn           *float64          `json:"fade_in"`
}

// collageText carries the shared title fields of both variants.
type collageText struct {
	mainTitle        string
	subtitle         string
	titleFontSize    int
	subtitleFontSize int
}

func validateCollageTiming(duration float64, fadeIn *float64) error {
	if duration < config.CollageMinDuration || duration > config.CollageMaxDuration {
		return fmt.Errorf("%w: duration: must be between %.1f and %.1f seconds",
			style.ErrInvalidParameter, config.CollageMinDuration, config.CollageMaxDuration)
	}
	if fadeIn != nil && (*fadeIn <= 0 || *fadeIn > duration) {
		return fmt.Errorf("%w: fade_in: must be positive and not exceed duration", style.ErrInvalidParameter)
	}
	return nil
}

// resolveFadeIn picks the fade duration, randomizing inside the bounded
// sub-range when the request leaves it null.
func resolveFadeIn(fadeIn *float64) float64 {
	if fadeIn != nil {
		return *fadeIn
	}
	return config.FadeInMin + rand.Float64()*(config.FadeInMax-config.FadeInMin)
}

// RenderCollageGrid composes the 3x3 grid variant into a faded-in video.
func (e *Engine) RenderCollageGrid(ctx context.Context, job GridCollageJob) (string, error) {
	slots := GridSlots()
	if len(job.ImageURLs) != len(slots) {
		return "", fmt.Errorf("%w: image_urls: need exactly %d images, got %d",
			style.ErrInvalidParameter, len(slots), len(job.ImageURLs))
	}
	if err := validateCollageTiming(job.Duration, job.FadeIn); err != nil {
		return "", err
	}

	sources := make(map[string]string, len(slots))
	for i, s := range slots {
		sources[s.Name] = job.ImageURLs[i]
	}
	return e.renderCollage(ctx, slots, sources, collageText{
		mainTitle:        job.MainTitle,
		subtitle:         job.Subtitle,
		titleFontSize:    job.TitleFontSize,
		subtitleFontSize: job.SubtitleFontSize,
	}, job.Duration, resolveFadeIn(job.FadeIn))
}

// RenderCollageOverlap composes the eight-slot overlap variant.
func (e *Engine) RenderCollageOverlap(ctx context.Context, job OverlapCollageJob) (string, error) {
	slots := OverlapSlots()
	for _, s := range slots {
		if job.Images[s.Name] == "" {
			return "", fmt.Errorf("%w: images: missing slot %q", style.ErrInvalidParameter, s.Name)
		}
	}
	if err := validateCollageTiming(job.Duration, job.FadeIn); err != nil {
		return "", err
	}
	return e.renderCollage(ctx, slots, job.Images, collageText{
		mainTitle:        job.MainTitle,
		subtitle:         job.Subtitle,
		titleFontSize:    job.TitleFontSize,
		subtitleFontSize: job.SubtitleFontSize,
	}, job.Duration, resolveFadeIn(job.FadeIn))
}

// renderCollage downloads every slot image, composes the still, overlays
// the title block and encodes the fade-in video under the two-minute
// ceiling.
func (e *Engine) renderCollage(ctx context.Context, slots []Slot, sources map[string]string, text collageText, duration, fadeIn float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CollageTimeout)
	defer cancel()

	names := make([]string, len(slots))
	urls := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name
		urls[i] = sources[s.Name]
	}
	paths, err := e.downloadAll(ctx, urls, names)
	if err != nil {
		e.cleanupFiles(paths)
		return "", err
	}
	defer e.cleanupFiles(paths)

	canvas := image.NewRGBA(image.Rect(0, 0, config.CollageWidth, config.CollageHeight))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	for i, s := range slots {
		if err := placeImage(canvas, s, paths[i]); err != nil {
			return "", fmt.Errorf("%w: images: slot %q: %v", style.ErrInvalidParameter, s.Name, err)
		}
	}

	still, err := e.overlayTitles(ctx, canvas, text)
	if err != nil {
		return "", err
	}

	stillPath := filepath.Join(e.tempDir, fmt.Sprintf("collage_%s.png", uuid.NewString()))
	if err := writePNG(stillPath, still); err != nil {
		return "", err
	}
	defer e.cleanupFiles([]string{stillPath})

	outputPath := filepath.Join(e.tempDir, fmt.Sprintf("collage_%s.mp4", uuid.NewString()))
	cmd := ffmpeg.Input(stillPath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": 30,
	}).Output(outputPath, ffmpeg.KwArgs{
		"vf":      fmt.Sprintf("fade=t=in:st=0:d=%.2f", fadeIn),
		"t":       fmt.Sprintf("%.2f", duration),
		"c:v":     config.VideoCodec,
		"preset":  config.VideoPreset,
		"crf":     config.VideoCRF,
		"pix_fmt": "yuv420p",
	}).OverWriteOutput().Silent(true).Compile()

	if err := e.runCmd(ctx, cmd, outputPath); err != nil {
		return "", err
	}

	e.logger.Info("collage rendered", "slots", len(slots), "duration", duration, "fade_in", fadeIn)
	return outputPath, nil
}

// overlayTitles renders the title and subtitle through the same resolve
// and plan path the overlay pipelines use, anchored in the title zone.
func (e *Engine) overlayTitles(ctx context.Context, canvas image.Image, text collageText) (image.Image, error) {
	out := canvas
	topCenter := style.PositionTopCenter

	if text.mainTitle != "" {
		ov := &style.Overrides{Position: &topCenter}
		if text.titleFontSize > 0 {
			ov.FontSize = &text.titleFontSize
		}
		st, err := e.ResolveStyle(ctx, "", ov)
		if err != nil {
			return nil, fmt.Errorf("main_title: %w", err)
		}
		plan, _, _ := e.BuildPlanFor(st, config.CollageWidth, config.CollageHeight, text.mainTitle, style.FineOffset{})
		out = layout.Rasterize(out, plan, e.face(st.FontSize))
	}

	if text.subtitle != "" {
		ov := &style.Overrides{Position: &topCenter}
		if text.subtitleFontSize > 0 {
			ov.FontSize = &text.subtitleFontSize
		}
		st, err := e.ResolveStyle(ctx, "", ov)
		if err != nil {
			return nil, fmt.Errorf("subtitle: %w", err)
		}
		// Drop the subtitle below the title line, staying inside the
		// fine-offset range.
		offsetY := text.titleFontSize + 40
		if offsetY > 150 {
			offsetY = 150
		}
		fine := style.FineOffset{Y: offsetY}
		plan, _, _ := e.BuildPlanFor(st, config.CollageWidth, config.CollageHeight, text.subtitle, fine)
		out = layout.Rasterize(out, plan, e.face(st.FontSize))
	}

	return out, nil
}

// face returns a real font face when a font file is configured, nil
// otherwise (the rasterizer falls back to its built-in face).
func (e *Engine) face(fontSize int) font.Face {
	if fm, ok := e.measurer.(*layout.FaceMeasurer); ok {
		return fm.Face(fontSize)
	}
	return nil
}

// placeImage center-crops the slot's source image to the cell's aspect
// ratio, scales it to the cell size and draws it onto the canvas.
func placeImage(canvas *image.RGBA, s Slot, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode: %v", err)
	}

	crop := centerCropRect(src.Bounds().Dx(), src.Bounds().Dy(), s.W, s.H)
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := src.(subImager); ok {
		b := src.Bounds()
		src = si.SubImage(crop.Add(b.Min))
	}

	scaled := resize.Resize(uint(s.W), uint(s.H), src, resize.Lanczos3)
	dst := image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H)
	draw.Draw(canvas, dst, scaled, scaled.Bounds().Min, draw.Src)
	return nil
}

// centerCropRect returns the largest centered window of a srcW x srcH
// image that matches the dstW:dstH aspect ratio. Coordinates are
// relative to the image origin.
func centerCropRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rect(0, 0, srcW, srcH)
	}
	// Compare aspect ratios without division.
	if srcW*dstH > dstW*srcH {
		// Source is wider than the cell: crop the sides.
		cropW := srcH * dstW / dstH
		x0 := (srcW - cropW) / 2
		return image.Rect(x0, 0, x0+cropW, srcH)
	}
	// Source is taller: crop top and bottom.
	cropH := srcW * dstH / dstW
	y0 := (srcH - cropH) / 2
	return image.Rect(0, y0, srcW, y0+cropH)
}

// downloadAll fetches every URL concurrently, preserving index order.
// labels name each entry in error messages.
func (e *Engine) downloadAll(ctx context.Context, urls, labels []string) ([]string, error) {
	paths := make([]string, len(urls))
	errs := make([]error, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			paths[i], errs[i] = e.downloadFile(url)
		}(i, u)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return paths, fmt.Errorf("%s: %w", labels[i], err)
		}
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// SlotNames lists a variant's slot names in draw order, for the API docs
// and for request validation messages.
func SlotNames(slots []Slot) []string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name
	}
	return names
}
