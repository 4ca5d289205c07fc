package style

import (
	"errors"
	"strings"
	"testing"
)

func intp(v int) *int         { return &v }
func strp(v string) *string   { return &v }
func f64p(v float64) *float64 { return &v }
func boolp(v bool) *bool      { return &v }

func TestResolveMergesOverrides(t *testing.T) {
	base := Default()
	got, err := Resolve(base, &Overrides{
		FontSize:          intp(80),
		TextColor:         strp("#ff0000"),
		Position:          strp(PositionTopLeft),
		BackgroundEnabled: boolp(true),
		TextOpacity:       f64p(0.5),
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got.FontSize != 80 {
		t.Fatalf("FontSize = %d; want 80", got.FontSize)
	}
	if !got.BackgroundEnabled || got.TextOpacity != 0.5 {
		t.Fatal("background/opacity overrides not applied")
	}
	if got.TextColor != "#FF0000" {
		t.Fatalf("TextColor = %q; want normalized #FF0000", got.TextColor)
	}
	if got.Position != PositionTopLeft {
		t.Fatalf("Position = %q; want %q", got.Position, PositionTopLeft)
	}
	// Untouched fields keep base values.
	if got.FontWeight != base.FontWeight || got.Alignment != base.Alignment {
		t.Fatal("untouched fields changed during resolve")
	}
}

func TestResolveNilOverridesKeepsBase(t *testing.T) {
	base := Default()
	got, err := Resolve(base, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if got != base {
		t.Fatalf("Resolve(base, nil) = %+v; want base unchanged", got)
	}
}

func TestResolveCustomPositionRequiresCoordinates(t *testing.T) {
	_, err := Resolve(Default(), &Overrides{Position: strp(PositionCustom)})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v; want ErrInvalidParameter", err)
	}
	if !strings.Contains(err.Error(), "custom_x") {
		t.Fatalf("error %q does not name the missing field", err)
	}

	got, err := Resolve(Default(), &Overrides{
		Position: strp(PositionCustom),
		CustomX:  intp(100),
		CustomY:  intp(200),
	})
	if err != nil {
		t.Fatalf("Resolve with coordinates: %v", err)
	}
	if got.CustomX != 100 || got.CustomY != 200 {
		t.Fatalf("custom coordinates = (%d, %d); want (100, 200)", got.CustomX, got.CustomY)
	}
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Record)
		wantField string
	}{
		{"font size low", func(r *Record) { r.FontSize = 11 }, "font_size"},
		{"font size high", func(r *Record) { r.FontSize = 201 }, "font_size"},
		{"font weight", func(r *Record) { r.FontWeight = 950 }, "font_weight"},
		{"border width", func(r *Record) { r.BorderWidth = 11 }, "border_width"},
		{"shadow x", func(r *Record) { r.ShadowX = 21 }, "shadow_x"},
		{"shadow y", func(r *Record) { r.ShadowY = -21 }, "shadow_y"},
		{"background opacity", func(r *Record) { r.BackgroundOpacity = 1.1 }, "background_opacity"},
		{"text opacity", func(r *Record) { r.TextOpacity = -0.1 }, "text_opacity"},
		{"max text width", func(r *Record) { r.MaxTextWidthPercent = 9 }, "max_text_width_percent"},
		{"line spacing", func(r *Record) { r.LineSpacing = 51 }, "line_spacing"},
		{"alignment", func(r *Record) { r.Alignment = "justified" }, "alignment"},
		{"position", func(r *Record) { r.Position = "nowhere" }, "position"},
		{"text color", func(r *Record) { r.TextColor = "#GGGGGG" }, "text_color"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := Default()
			c.mutate(&r)
			err := Validate(&r)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v; want ErrInvalidParameter", err)
			}
			if !strings.Contains(err.Error(), c.wantField) {
				t.Fatalf("error %q does not name field %q", err, c.wantField)
			}
		})
	}
}

func TestValidateNormalizesColorsInPlace(t *testing.T) {
	r := Default()
	r.TextColor = "WHITE"
	r.BorderColor = "#ff00aa"
	if err := Validate(&r); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if r.TextColor != "white" {
		t.Fatalf("TextColor = %q; want lowercase name", r.TextColor)
	}
	if r.BorderColor != "#FF00AA" {
		t.Fatalf("BorderColor = %q; want uppercase hex", r.BorderColor)
	}
}

func TestValidateFineOffset(t *testing.T) {
	if err := ValidateFineOffset(FineOffset{X: 150, Y: -150}); err != nil {
		t.Fatalf("boundary offsets rejected: %v", err)
	}
	if err := ValidateFineOffset(FineOffset{X: 151}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v; want ErrInvalidParameter", err)
	}
	if err := ValidateFineOffset(FineOffset{Y: -151}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v; want ErrInvalidParameter", err)
	}
}
