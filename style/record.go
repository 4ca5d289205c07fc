package style

// Position presets. Custom places the anchor at (CustomX, CustomY) directly.
const (
	PositionCenter       = "center"
	PositionTopLeft      = "top-left"
	PositionTopCenter    = "top-center"
	PositionTopRight     = "top-right"
	PositionMiddleLeft   = "middle-left"
	PositionMiddleRight  = "middle-right"
	PositionBottomLeft   = "bottom-left"
	PositionBottomCenter = "bottom-center"
	PositionBottomRight  = "bottom-right"
	PositionCustom       = "custom"
)

// Alignment values for multi-line blocks.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Presets lists the nine named anchor locations (custom excluded).
var Presets = []string{
	PositionCenter,
	PositionTopLeft, PositionTopCenter, PositionTopRight,
	PositionMiddleLeft, PositionMiddleRight,
	PositionBottomLeft, PositionBottomCenter, PositionBottomRight,
}

// Record is a fully-populated set of styling parameters for one render.
// Every field is always present after resolution; downstream code never
// sees a partial record.
type Record struct {
	FontSize            int     `json:"font_size"`
	FontWeight          int     `json:"font_weight"`
	TextColor           string  `json:"text_color"`
	BorderWidth         int     `json:"border_width"`
	BorderColor         string  `json:"border_color"`
	ShadowX             int     `json:"shadow_x"`
	ShadowY             int     `json:"shadow_y"`
	ShadowColor         string  `json:"shadow_color"`
	Position            string  `json:"position"`
	CustomX             int     `json:"custom_x"`
	CustomY             int     `json:"custom_y"`
	BackgroundEnabled   bool    `json:"background_enabled"`
	BackgroundColor     string  `json:"background_color"`
	BackgroundOpacity   float64 `json:"background_opacity"`
	TextOpacity         float64 `json:"text_opacity"`
	Alignment           string  `json:"alignment"`
	MaxTextWidthPercent int     `json:"max_text_width_percent"`
	LineSpacing         int     `json:"line_spacing"`
}

// Overrides is a partial record supplied per-request. Nil fields keep the
// base value; present fields are range-checked before they apply.
type Overrides struct {
	FontSize            *int     `json:"font_size,omitempty"`
	FontWeight          *int     `json:"font_weight,omitempty"`
	TextColor           *string  `json:"text_color,omitempty"`
	BorderWidth         *int     `json:"border_width,omitempty"`
	BorderColor         *string  `json:"border_color,omitempty"`
	ShadowX             *int     `json:"shadow_x,omitempty"`
	ShadowY             *int     `json:"shadow_y,omitempty"`
	ShadowColor         *string  `json:"shadow_color,omitempty"`
	Position            *string  `json:"position,omitempty"`
	CustomX             *int     `json:"custom_x,omitempty"`
	CustomY             *int     `json:"custom_y,omitempty"`
	BackgroundEnabled   *bool    `json:"background_enabled,omitempty"`
	BackgroundColor     *string  `json:"background_color,omitempty"`
	BackgroundOpacity   *float64 `json:"background_opacity,omitempty"`
	TextOpacity         *float64 `json:"text_opacity,omitempty"`
	Alignment           *string  `json:"alignment,omitempty"`
	MaxTextWidthPercent *int     `json:"max_text_width_percent,omitempty"`
	LineSpacing         *int     `json:"line_spacing,omitempty"`
}

// Default returns the engine's built-in style, also used to seed the
// protected "default" template.
func Default() Record {
	return Record{
		FontSize:            46,
		FontWeight:          600,
		TextColor:           "white",
		BorderWidth:         2,
		BorderColor:         "black",
		ShadowX:             2,
		ShadowY:             2,
		ShadowColor:         "black",
		Position:            PositionBottomCenter,
		BackgroundEnabled:   false,
		BackgroundColor:     "black",
		BackgroundOpacity:   0.5,
		TextOpacity:         1.0,
		Alignment:           AlignCenter,
		MaxTextWidthPercent: 80,
		LineSpacing:         -8,
	}
}

// Resolve merges overrides into base field by field and validates the
// result. There is no down-leveling to engine defaults: the base must
// already be fully populated (templates are created through Validate).
func Resolve(base Record, ov *Overrides) (Record, error) {
	r := base
	if ov != nil {
		if ov.FontSize != nil {
			r.FontSize = *ov.FontSize
		}
		if ov.FontWeight != nil {
			r.FontWeight = *ov.FontWeight
		}
		if ov.TextColor != nil {
			r.TextColor = *ov.TextColor
		}
		if ov.BorderWidth != nil {
			r.BorderWidth = *ov.BorderWidth
		}
		if ov.BorderColor != nil {
			r.BorderColor = *ov.BorderColor
		}
		if ov.ShadowX != nil {
			r.ShadowX = *ov.ShadowX
		}
		if ov.ShadowY != nil {
			r.ShadowY = *ov.ShadowY
		}
		if ov.ShadowColor != nil {
			r.ShadowColor = *ov.ShadowColor
		}
		if ov.Position != nil {
			r.Position = *ov.Position
		}
		if ov.CustomX != nil {
			r.CustomX = *ov.CustomX
		}
		if ov.CustomY != nil {
			r.CustomY = *ov.CustomY
		}
		if ov.BackgroundEnabled != nil {
			r.BackgroundEnabled = *ov.BackgroundEnabled
		}
		if ov.BackgroundColor != nil {
			r.BackgroundColor = *ov.BackgroundColor
		}
		if ov.BackgroundOpacity != nil {
			r.BackgroundOpacity = *ov.BackgroundOpacity
		}
		if ov.TextOpacity != nil {
			r.TextOpacity = *ov.TextOpacity
		}
		if ov.Alignment != nil {
			r.Alignment = *ov.Alignment
		}
		if ov.MaxTextWidthPercent != nil {
			r.MaxTextWidthPercent = *ov.MaxTextWidthPercent
		}
		if ov.LineSpacing != nil {
			r.LineSpacing = *ov.LineSpacing
		}
	}

	// Custom position must carry explicit coordinates with it.
	if r.Position == PositionCustom && ov != nil && ov.Position != nil {
		if ov.CustomX == nil || ov.CustomY == nil {
			return Record{}, InvalidField("custom_x/custom_y", "required when position is custom")
		}
	}

	if err := Validate(&r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate range-checks every field of a record and normalizes its colors
// in place. Errors name the offending field.
func Validate(r *Record) error {
	if r.FontSize < 12 || r.FontSize > 200 {
		return InvalidField("font_size", "must be 12-200, got %d", r.FontSize)
	}
	if r.FontWeight < 100 || r.FontWeight > 900 {
		return InvalidField("font_weight", "must be 100-900, got %d", r.FontWeight)
	}
	if r.BorderWidth < 0 || r.BorderWidth > 10 {
		return InvalidField("border_width", "must be 0-10, got %d", r.BorderWidth)
	}
	if r.ShadowX < -20 || r.ShadowX > 20 {
		return InvalidField("shadow_x", "must be -20..20, got %d", r.ShadowX)
	}
	if r.ShadowY < -20 || r.ShadowY > 20 {
		return InvalidField("shadow_y", "must be -20..20, got %d", r.ShadowY)
	}
	if r.BackgroundOpacity < 0 || r.BackgroundOpacity > 1 {
		return InvalidField("background_opacity", "must be 0.0-1.0, got %g", r.BackgroundOpacity)
	}
	if r.TextOpacity < 0 || r.TextOpacity > 1 {
		return InvalidField("text_opacity", "must be 0.0-1.0, got %g", r.TextOpacity)
	}
	if r.MaxTextWidthPercent < 10 || r.MaxTextWidthPercent > 100 {
		return InvalidField("max_text_width_percent", "must be 10-100, got %d", r.MaxTextWidthPercent)
	}
	if r.LineSpacing < -50 || r.LineSpacing > 50 {
		return InvalidField("line_spacing", "must be -50..50, got %d", r.LineSpacing)
	}
	switch r.Alignment {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return InvalidField("alignment", "must be left, center or right, got %q", r.Alignment)
	}
	if !validPosition(r.Position) {
		return InvalidField("position", "unknown position %q", r.Position)
	}
	if r.Position == PositionCustom && (r.CustomX < 0 || r.CustomY < 0) {
		return InvalidField("custom_x/custom_y", "must be >= 0")
	}

	for _, c := range []struct {
		field string
		v     *string
	}{
		{"text_color", &r.TextColor},
		{"border_color", &r.BorderColor},
		{"shadow_color", &r.ShadowColor},
		{"background_color", &r.BackgroundColor},
	} {
		norm, err := NormalizeColor(c.field, *c.v)
		if err != nil {
			return err
		}
		*c.v = norm
	}
	return nil
}

func validPosition(p string) bool {
	if p == PositionCustom {
		return true
	}
	for _, preset := range Presets {
		if p == preset {
			return true
		}
	}
	return false
}

// FineOffset is an additive pixel adjustment applied to a preset anchor.
// It is orthogonal to Position and ignored entirely in custom mode.
type FineOffset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ValidateFineOffset keeps the adjustment inside the documented range.
func ValidateFineOffset(o FineOffset) error {
	if o.X < -150 || o.X > 150 {
		return InvalidField("fine_offset.x", "must be -150..150, got %d", o.X)
	}
	if o.Y < -150 || o.Y > 150 {
		return InvalidField("fine_offset.y", "must be -150..150, got %d", o.Y)
	}
	return nil
}
