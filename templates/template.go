// Package templates implements the named style registry: persisted,
// fully-populated style records usable as the base for per-request
// overrides. One protected "default" entry always exists.
package templates

import (
	"context"
	"regexp"
	"time"

	"captionforge/style"
)

// DefaultName is the protected template that can be read and duplicated
// but never deleted or renamed.
const DefaultName = "default"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Template is a named, persisted style record plus metadata.
type Template struct {
	Name string `json:"name"`
	style.Record
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDefault bool      `json:"is_default"`
}

// ValidateName enforces the registry naming rule.
func ValidateName(name string) error {
	if name == "" || len(name) > 100 || !nameRe.MatchString(name) {
		return style.InvalidField("name", "must match [A-Za-z0-9_-]+ and be at most 100 characters")
	}
	return nil
}

// Store is the registry contract. Reads may proceed concurrently; writes
// to a single name are serialized by the implementation so interleaved
// partial updates can never corrupt an entry.
type Store interface {
	// Create adds a template. Fails with style.ErrConflict if the name exists.
	Create(ctx context.Context, t Template) (Template, error)

	// Get returns a template by name or style.ErrNotFound.
	Get(ctx context.Context, name string) (Template, error)

	// Update merges only the provided fields into the named template.
	Update(ctx context.Context, name string, ov *style.Overrides) (Template, error)

	// Delete removes a template. The default template is style.ErrForbidden.
	Delete(ctx context.Context, name string) error

	// Duplicate copies every field of source except name and created_at.
	Duplicate(ctx context.Context, source, newName string) (Template, error)

	// List returns all templates, default entry included.
	List(ctx context.Context) ([]Template, error)
}

// Seed ensures the protected default template exists in a store.
func Seed(ctx context.Context, s Store) error {
	if _, err := s.Get(ctx, DefaultName); err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.Create(ctx, Template{
		Name:      DefaultName,
		Record:    style.Default(),
		CreatedAt: now,
		UpdatedAt: now,
		IsDefault: true,
	})
	return err
}
