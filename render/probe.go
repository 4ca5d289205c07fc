package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"captionforge/style"
)

// MediaInfo is the subset of probe output the pipelines care about.
type MediaInfo struct {
	Width    int
	Height   int
	Duration float64
	HasAudio bool
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// Probe inspects a media file with ffprobe.
func Probe(path string) (MediaInfo, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return MediaInfo{}, fmt.Errorf("%w: probe %s: %v", style.ErrEncoding, filepath.Base(path), err)
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return MediaInfo{}, fmt.Errorf("%w: probe output: %v", style.ErrEncoding, err)
	}

	info := MediaInfo{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = s.Width
				info.Height = s.Height
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}
	if info.Width == 0 || info.Height == 0 {
		return MediaInfo{}, fmt.Errorf("%w: no video stream in %s", style.ErrEncoding, filepath.Base(path))
	}
	return info, nil
}

// IsImage reports whether the path looks like a still image.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
