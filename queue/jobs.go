package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"captionforge/render"
	"captionforge/storage"
	"captionforge/style"
)

// JobKind selects which pipeline an async job runs.
type JobKind string

const (
	JobOverlay        JobKind = "overlay"
	JobMerge          JobKind = "merge"
	JobCollageGrid    JobKind = "collage_grid"
	JobCollageOverlap JobKind = "collage_overlap"
)

// Job is the wire format of one queued render. Exactly one payload field
// matching Kind must be set.
type Job struct {
	ID             string                    `json:"id"`
	Kind           JobKind                   `json:"kind"`
	Overlay        *render.OverlayJob        `json:"overlay,omitempty"`
	Merge          *render.MergeJob          `json:"merge,omitempty"`
	CollageGrid    *render.GridCollageJob    `json:"collage_grid,omitempty"`
	CollageOverlap *render.OverlapCollageJob `json:"collage_overlap,omitempty"`
}

// Worker runs queued jobs against the render engine and delivers results
// to object storage. Queued jobs have no caller waiting on the response,
// so an uploader is mandatory.
type Worker struct {
	engine   *render.Engine
	uploader *storage.Uploader
	logger   *log.Logger
}

// NewWorker wires a queue worker.
func NewWorker(engine *render.Engine, uploader *storage.Uploader, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{engine: engine, uploader: uploader, logger: logger}
}

// Handler returns the message handler to plug into a Consumer.
func (w *Worker) Handler() MessageHandler {
	return &TypedMessageHandler[Job]{
		Validate:   func(j *Job) bool { return j.Kind != "" },
		Process:    w.process,
		AlwaysMark: true,
		Logger:     w.logger,
	}
}

func (w *Worker) process(ctx context.Context, j *Job) error {
	outputPath, err := w.run(ctx, j)
	if err != nil {
		// Bad parameters can never succeed on retry; swallow them so the
		// offset is marked. Transient failures propagate for redelivery.
		if errors.Is(err, style.ErrInvalidParameter) || errors.Is(err, style.ErrNotFound) {
			w.logger.Warn("dropping unprocessable job", "id", j.ID, "kind", j.Kind, "err", err)
			return nil
		}
		return fmt.Errorf("job %s: %w", j.ID, err)
	}

	defer os.Remove(outputPath)

	if !w.uploader.Enabled() {
		w.logger.Error("no uploader configured, discarding result", "id", j.ID, "output", outputPath)
		return nil
	}

	name := filepath.Base(outputPath)
	url, err := w.uploader.Upload(ctx, outputPath, name)
	if err != nil {
		return fmt.Errorf("job %s: %w", j.ID, err)
	}

	w.logger.Info("job delivered", "id", j.ID, "kind", j.Kind, "url", url)
	return nil
}

func (w *Worker) run(ctx context.Context, j *Job) (string, error) {
	switch j.Kind {
	case JobOverlay:
		if j.Overlay == nil {
			return "", fmt.Errorf("%w: overlay payload missing", style.ErrInvalidParameter)
		}
		return w.engine.RenderOverlay(ctx, *j.Overlay)
	case JobMerge:
		if j.Merge == nil {
			return "", fmt.Errorf("%w: merge payload missing", style.ErrInvalidParameter)
		}
		return w.engine.RenderMerge(ctx, *j.Merge)
	case JobCollageGrid:
		if j.CollageGrid == nil {
			return "", fmt.Errorf("%w: collage_grid payload missing", style.ErrInvalidParameter)
		}
		return w.engine.RenderCollageGrid(ctx, *j.CollageGrid)
	case JobCollageOverlap:
		if j.CollageOverlap == nil {
			return "", fmt.Errorf("%w: collage_overlap payload missing", style.ErrInvalidParameter)
		}
		return w.engine.RenderCollageOverlap(ctx, *j.CollageOverlap)
	}
	return "", fmt.Errorf("%w: unknown job kind %q", style.ErrInvalidParameter, j.Kind)
}
