package templates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"captionforge/style"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := Seed(context.Background(), s); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	return s
}

func TestSeedInstallsProtectedDefault(t *testing.T) {
	s := seededStore(t)

	got, err := s.Get(context.Background(), DefaultName)
	if err != nil {
		t.Fatalf("Get(default) error: %v", err)
	}
	if !got.IsDefault {
		t.Fatal("default template not flagged as default")
	}
	if got.Record != style.Default() {
		t.Fatalf("default record = %+v; want engine defaults", got.Record)
	}

	// Seeding twice must not fail or reset the entry.
	if err := Seed(context.Background(), s); err != nil {
		t.Fatalf("second Seed error: %v", err)
	}
}

func TestCreateConflictAndValidation(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	tpl := Template{Name: "promo", Record: style.Default()}
	if _, err := s.Create(ctx, tpl); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.Create(ctx, tpl); !errors.Is(err, style.ErrConflict) {
		t.Fatalf("duplicate create err = %v; want ErrConflict", err)
	}

	bad := Template{Name: "bad name!", Record: style.Default()}
	if _, err := s.Create(ctx, bad); !errors.Is(err, style.ErrInvalidParameter) {
		t.Fatalf("invalid name err = %v; want ErrInvalidParameter", err)
	}

	outOfRange := Template{Name: "huge", Record: style.Default()}
	outOfRange.FontSize = 999
	if _, err := s.Create(ctx, outOfRange); !errors.Is(err, style.ErrInvalidParameter) {
		t.Fatalf("out-of-range record err = %v; want ErrInvalidParameter", err)
	}
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	fontSize := 90
	updated, err := s.Update(ctx, DefaultName, &style.Overrides{FontSize: &fontSize})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.FontSize != 90 {
		t.Fatalf("FontSize = %d; want 90", updated.FontSize)
	}
	if updated.Position != style.Default().Position {
		t.Fatal("unrelated field changed by partial update")
	}

	// Read after write observes the write.
	got, err := s.Get(ctx, DefaultName)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FontSize != 90 {
		t.Fatalf("read after update: FontSize = %d; want 90", got.FontSize)
	}

	if _, err := s.Update(ctx, "missing", &style.Overrides{FontSize: &fontSize}); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("update missing err = %v; want ErrNotFound", err)
	}
}

func TestDeleteRules(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, DefaultName); !errors.Is(err, style.ErrForbidden) {
		t.Fatalf("delete default err = %v; want ErrForbidden", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("delete missing err = %v; want ErrNotFound", err)
	}

	if _, err := s.Create(ctx, Template{Name: "temp", Record: style.Default()}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := s.Delete(ctx, "temp"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, "temp"); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("get after delete err = %v; want ErrNotFound", err)
	}
}

func TestDuplicateCopiesEverythingButIdentity(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	dup, err := s.Duplicate(ctx, DefaultName, "copy")
	if err != nil {
		t.Fatalf("Duplicate error: %v", err)
	}
	if dup.Name != "copy" {
		t.Fatalf("Name = %q; want copy", dup.Name)
	}
	if dup.IsDefault {
		t.Fatal("duplicate inherited the default flag")
	}

	src, _ := s.Get(ctx, DefaultName)
	if dup.Record != src.Record {
		t.Fatalf("duplicate record differs from source: %+v vs %+v", dup.Record, src.Record)
	}

	if _, err := s.Duplicate(ctx, "missing", "other"); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("duplicate missing source err = %v; want ErrNotFound", err)
	}
	if _, err := s.Duplicate(ctx, DefaultName, "copy"); !errors.Is(err, style.ErrConflict) {
		t.Fatalf("duplicate onto taken name err = %v; want ErrConflict", err)
	}
}

func TestListSortedByName(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.Create(ctx, Template{Name: name, Record: style.Default()}); err != nil {
			t.Fatalf("Create(%s) error: %v", name, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"alpha", "default", "mid", "zeta"}
	if len(list) != len(want) {
		t.Fatalf("List returned %d entries; want %d", len(list), len(want))
	}
	for i, tpl := range list {
		if tpl.Name != want[i] {
			t.Fatalf("List[%d] = %q; want %q", i, tpl.Name, want[i])
		}
	}
}

func TestUpdateCannotCommitIntoDeletedEntry(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, Template{Name: "gone", Record: style.Default()}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	// Keep the entry pointer, like a writer that looked the name up just
	// before the delete landed.
	s.mu.RLock()
	e := s.entries["gone"]
	s.mu.RUnlock()

	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	e.mu.Lock()
	tombstoned := e.deleted
	e.mu.Unlock()
	if !tombstoned {
		t.Fatal("deleted entry not tombstoned; a stale writer could commit into it")
	}

	// Reinsert the stale entry to simulate the race window where the
	// lookup already succeeded, then verify the write is refused.
	s.mu.Lock()
	s.entries["gone"] = e
	s.mu.Unlock()

	size := 90
	if _, err := s.Update(ctx, "gone", &style.Overrides{FontSize: &size}); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("update into deleted entry err = %v; want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "gone"); !errors.Is(err, style.ErrNotFound) {
		t.Fatalf("get of deleted entry err = %v; want ErrNotFound", err)
	}
}

func TestConcurrentUpdateDeleteNeverLosesWriteSilently(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("churn%d", i)
		if _, err := s.Create(ctx, Template{Name: name, Record: style.Default()}); err != nil {
			t.Fatalf("Create error: %v", err)
		}

		var wg sync.WaitGroup
		var updateErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			size := 90
			_, updateErr = s.Update(ctx, name, &style.Overrides{FontSize: &size})
		}()
		go func() {
			defer wg.Done()
			if err := s.Delete(ctx, name); err != nil {
				t.Errorf("Delete error: %v", err)
			}
		}()
		wg.Wait()

		// The delete always wins eventually; an update that reported
		// success must have been visible before it, never swallowed.
		if updateErr != nil && !errors.Is(updateErr, style.ErrNotFound) {
			t.Fatalf("Update error: %v", updateErr)
		}
		if _, err := s.Get(ctx, name); !errors.Is(err, style.ErrNotFound) {
			t.Fatalf("template %q survived its delete: %v", name, err)
		}
	}
}

func TestConcurrentUpdatesStayConsistent(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			size := 12 + i
			if _, err := s.Update(ctx, DefaultName, &style.Overrides{FontSize: &size}); err != nil {
				t.Errorf("Update error: %v", err)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("t%d", i)
			if _, err := s.Create(ctx, Template{Name: name, Record: style.Default()}); err != nil {
				t.Errorf("Create error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, DefaultName)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	// Whatever writer won, the record must still pass validation.
	if err := style.Validate(&got.Record); err != nil {
		t.Fatalf("record corrupted by concurrent updates: %v", err)
	}
}
