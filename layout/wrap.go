// Package layout is the pure geometry core shared by the encode path and
// the live preview: text wrapping, anchor resolution, per-line placement
// and the ordered draw plan. Nothing in this package performs I/O.
package layout

import "strings"

// Wrap splits text into display lines that fit maxWidthPx when measured
// at fontSize. Explicit newlines split paragraphs first and are preserved
// exactly; an empty or whitespace-only paragraph yields one empty line.
// Within a paragraph words accumulate greedily with single-space
// separators. A single word wider than maxWidthPx is never split: it is
// emitted on its own line even though it overflows.
func Wrap(text string, maxWidthPx float64, fontSize int, m Measurer) []string {
	var lines []string

	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			lines = append(lines, "")
			continue
		}

		words := strings.Split(paragraph, " ")
		current := ""
		for _, word := range words {
			if word == "" {
				continue
			}
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if current != "" && m.Width(candidate, fontSize) > maxWidthPx {
				lines = append(lines, current)
				current = word
				continue
			}
			current = candidate
		}
		if current != "" {
			lines = append(lines, current)
		}
	}

	return lines
}

// MaxLineWidth returns the widest measured line of a block.
func MaxLineWidth(lines []string, fontSize int, m Measurer) float64 {
	max := 0.0
	for _, l := range lines {
		if w := m.Width(l, fontSize); w > max {
			max = w
		}
	}
	return max
}
