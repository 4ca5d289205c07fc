package templates

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"captionforge/style"
)

// MemoryStore is an in-process registry. The map itself is guarded by a
// read-write lock; each entry carries its own mutex so writers to one
// name never serialize writers to another.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	t       Template
	deleted bool
}

// NewMemoryStore returns an empty registry. Callers normally follow up
// with Seed to install the default template.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, t Template) (Template, error) {
	if err := ValidateName(t.Name); err != nil {
		return Template{}, err
	}
	if err := style.Validate(&t.Record); err != nil {
		return Template{}, err
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[t.Name]; exists {
		return Template{}, fmt.Errorf("%w: template %q already exists", style.ErrConflict, t.Name)
	}
	s.entries[t.Name] = &entry{t: t}
	return t, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (Template, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return Template{}, fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	return e.t, nil
}

// Update implements Store. The merge happens under the entry's own lock,
// so concurrent partial updates to one name apply whole-or-not-at-all.
func (s *MemoryStore) Update(_ context.Context, name string, ov *style.Overrides) (Template, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return Template{}, fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// A delete may have landed between the map lookup and taking the
	// entry lock; committing here would silently lose the write.
	if e.deleted {
		return Template{}, fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	merged, err := style.Resolve(e.t.Record, ov)
	if err != nil {
		return Template{}, err
	}
	e.t.Record = merged
	e.t.UpdatedAt = time.Now().UTC()
	return e.t, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	if name == DefaultName {
		return fmt.Errorf("%w: the default template cannot be deleted", style.ErrForbidden)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: template %q", style.ErrNotFound, name)
	}
	// Tombstone under the entry lock so an in-flight Update that already
	// looked this entry up cannot resurrect it after removal.
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	delete(s.entries, name)
	return nil
}

// Duplicate implements Store.
func (s *MemoryStore) Duplicate(ctx context.Context, source, newName string) (Template, error) {
	if err := ValidateName(newName); err != nil {
		return Template{}, err
	}
	src, err := s.Get(ctx, source)
	if err != nil {
		return Template{}, err
	}

	dup := src
	dup.Name = newName
	dup.IsDefault = false
	dup.CreatedAt = time.Time{} // Create stamps fresh timestamps
	return s.Create(ctx, dup)
}

// List implements Store. Output is sorted by name for stable responses.
func (s *MemoryStore) List(_ context.Context) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		out = append(out, e.t)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
