package layout

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Measurer reports the pixel width of a string at a given font size.
// Both renderers must share one Measurer instance per request so the
// wrap and anchor math agree to the pixel.
type Measurer interface {
	Width(text string, fontSize int) float64
}

// HeuristicMeasurer approximates width as ratio*fontSize per character.
// Used when no font file is configured; 0.6 is a reasonable average for
// latin sans fonts.
type HeuristicMeasurer struct {
	Ratio float64
}

// Width implements Measurer.
func (m HeuristicMeasurer) Width(text string, fontSize int) float64 {
	ratio := m.Ratio
	if ratio == 0 {
		ratio = 0.6
	}
	return float64(len([]rune(text))) * float64(fontSize) * ratio
}

// FaceMeasurer measures with real TrueType metrics. Faces are cached per
// font size; safe for concurrent use.
type FaceMeasurer struct {
	fnt *truetype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// LoadFaceMeasurer parses a TTF file into a FaceMeasurer.
func LoadFaceMeasurer(path string) (*FaceMeasurer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &FaceMeasurer{fnt: f, faces: make(map[int]font.Face)}, nil
}

// Width implements Measurer. The lock stays held across the measurement:
// truetype faces reuse an internal glyph buffer, so the cached face must
// not be touched by two goroutines at once.
func (m *FaceMeasurer) Width(text string, fontSize int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.faceLocked(fontSize), text)
	return float64(adv) / 64.0
}

func (m *FaceMeasurer) faceLocked(fontSize int) font.Face {
	face, ok := m.faces[fontSize]
	if !ok {
		face = truetype.NewFace(m.fnt, &truetype.Options{
			Size: float64(fontSize),
			DPI:  72,
		})
		m.faces[fontSize] = face
	}
	return face
}

// Face returns a face at fontSize for rasterizing. Every call builds a
// fresh face: drawing through a face mutates its glyph buffer, and the
// cached faces belong to Width.
func (m *FaceMeasurer) Face(fontSize int) font.Face {
	return truetype.NewFace(m.fnt, &truetype.Options{
		Size: float64(fontSize),
		DPI:  72,
	})
}
