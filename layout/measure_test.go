package layout

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func loadTestMeasurer(t *testing.T) *FaceMeasurer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	m, err := LoadFaceMeasurer(path)
	if err != nil {
		t.Fatalf("LoadFaceMeasurer: %v", err)
	}
	return m
}

func TestHeuristicMeasurerWidth(t *testing.T) {
	m := HeuristicMeasurer{Ratio: 0.5}
	if got := m.Width("abcd", 10); got != 20 {
		t.Fatalf("Width = %g; want 20", got)
	}
	// Zero ratio falls back to the default.
	if got := (HeuristicMeasurer{}).Width("ab", 10); got != 12 {
		t.Fatalf("default ratio Width = %g; want 12", got)
	}
}

func TestFaceMeasurerWidth(t *testing.T) {
	m := loadTestMeasurer(t)

	if got := m.Width("", 40); got != 0 {
		t.Fatalf("Width of empty string = %g; want 0", got)
	}
	short := m.Width("hi", 40)
	long := m.Width("hi there", 40)
	if short <= 0 || long <= short {
		t.Fatalf("widths not increasing: %g, %g", short, long)
	}
	if again := m.Width("hi", 40); again != short {
		t.Fatalf("repeat measurement = %g; want %g", again, short)
	}
}

func TestFaceMeasurerConcurrentWidth(t *testing.T) {
	m := loadTestMeasurer(t)

	texts := []string{"a", "merge clip one", "WIDE TEXT", "hello, world"}
	sizes := []int{24, 40, 64}

	want := make(map[string]float64)
	for _, txt := range texts {
		for _, sz := range sizes {
			want[txt+"/"+strconv.Itoa(sz)] = m.Width(txt, sz)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				txt := texts[(seed+i)%len(texts)]
				sz := sizes[(seed+i)%len(sizes)]
				got := m.Width(txt, sz)
				if got != want[txt+"/"+strconv.Itoa(sz)] {
					select {
					case errs <- txt:
					default:
					}
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	if txt, ok := <-errs; ok {
		t.Fatalf("concurrent measurement of %q disagreed with the serial result", txt)
	}
}
