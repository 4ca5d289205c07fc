package config

import "time"

// Render Ceiling Constants
const (
	// OverlayTimeout is the enforced ceiling for a single overlay render.
	OverlayTimeout = 2 * time.Minute

	// MergeTimeout is the enforced ceiling for a multi-clip merge.
	MergeTimeout = 10 * time.Minute

	// CollageTimeout is the enforced ceiling for a collage render.
	CollageTimeout = 2 * time.Minute
)

// Merge Constants
const (
	// MinMergeClips is the minimum number of clips per merge request.
	MinMergeClips = 2

	// MaxMergeClips is the maximum number of clips per merge request.
	MaxMergeClips = 10

	// MaxClipTextLength is the maximum overlay text length per clip.
	MaxClipTextLength = 500
)

// Collage Constants
const (
	// CollageWidth is the collage output width (9:16 aspect ratio).
	CollageWidth = 1080

	// CollageHeight is the collage output height (9:16 aspect ratio).
	CollageHeight = 1920

	// CollageMinDuration is the shortest allowed collage duration in seconds.
	CollageMinDuration = 5.0

	// CollageMaxDuration is the longest allowed collage duration in seconds.
	CollageMaxDuration = 7.0

	// FadeInMin and FadeInMax bound the randomized fade-in when none is given.
	FadeInMin = 0.5
	FadeInMax = 1.5
)

// Encoding Constants
const (
	// VideoCodec is the video encoding codec.
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec.
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate.
	AudioBitrate = "128k"

	// VideoPreset is the ffmpeg encoding speed preset.
	VideoPreset = "medium"

	// VideoCRF is the constant rate factor (quality).
	VideoCRF = "23"

	// ImageQuality is the -q:v value for still-image outputs.
	ImageQuality = "2"
)

// Upload Constants
const (
	// MaxUploadSize is the maximum accepted upload size in bytes (100 MB).
	MaxUploadSize = 100 << 20
)
