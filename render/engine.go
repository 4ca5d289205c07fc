// Package render drives the two production pipelines (multi-clip merge
// and collage composition) plus the single-overlay path, all built on
// the shared layout engine. The encoding itself is delegated to ffmpeg;
// everything up to the filter graph is computed in layout so the encode
// and preview paths cannot drift apart.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"captionforge/layout"
	"captionforge/style"
	"captionforge/templates"
)

// Engine owns the resources a render call needs: the template registry,
// one font measurer shared by every call site, and a temp directory.
type Engine struct {
	store    templates.Store
	measurer layout.Measurer
	tempDir  string
	fontPath string
	logger   *log.Logger
}

// NewEngine wires a render engine. fontPath may be empty, in which case
// widths come from the heuristic measurer.
func NewEngine(store templates.Store, tempDir, fontPath string, logger *log.Logger) (*Engine, error) {
	var m layout.Measurer = layout.HeuristicMeasurer{}
	if fontPath != "" {
		fm, err := layout.LoadFaceMeasurer(fontPath)
		if err != nil {
			return nil, err
		}
		m = fm
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:    store,
		measurer: m,
		tempDir:  tempDir,
		fontPath: fontPath,
		logger:   logger,
	}, nil
}

// Measurer exposes the engine's measurer so the preview endpoint uses
// the exact same metrics as the encode path.
func (e *Engine) Measurer() layout.Measurer { return e.measurer }

// FontLoaded reports whether a real font file backs measurement, as
// opposed to the width heuristic.
func (e *Engine) FontLoaded() bool {
	_, ok := e.measurer.(*layout.FaceMeasurer)
	return ok
}

// ResolveStyle loads a template (default when name is empty) and merges
// per-request overrides into a fully-populated record.
func (e *Engine) ResolveStyle(ctx context.Context, templateName string, ov *style.Overrides) (style.Record, error) {
	if templateName == "" {
		templateName = templates.DefaultName
	}
	t, err := e.store.Get(ctx, templateName)
	if err != nil {
		return style.Record{}, err
	}
	return style.Resolve(t.Record, ov)
}

// runCmd executes a compiled ffmpeg command under ctx. On deadline the
// process is killed and the error reports a timeout; any other non-zero
// exit surfaces as an encoding failure.
func (e *Engine) runCmd(ctx context.Context, cmd *exec.Cmd, outputPath string) error {
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", style.ErrEncoding, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		os.Remove(outputPath) // never leave partial output visible
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: render exceeded its ceiling", style.ErrTimeout)
		}
		return ctx.Err()
	case err := <-done:
		if err != nil {
			os.Remove(outputPath)
			return fmt.Errorf("%w: %v", style.ErrEncoding, err)
		}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("%w: output file was not created", style.ErrEncoding)
	}
	return nil
}

// cleanupFiles removes temp files, logging failures only.
func (e *Engine) cleanupFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("cleanup failed", "path", p, "err", err)
		}
	}
}
