package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

func TestMergerLongerFieldWins(t *testing.T) {
	store := NewMemoryResourceStore()
	store.Add(models.Resource{
		ID:       "res-1",
		Title:    "Short title",
		Abstract: "",
		Content:  "existing content that is fairly long already",
	})

	merger := NewMerger(store, testLogger())

	merged, err := merger.Merge(context.Background(), "res-1", models.ResourceFields{
		Title:    "A considerably longer and more descriptive title",
		Abstract: "a new abstract where none existed",
		Content:  "short",
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !merged {
		t.Fatal("expected merge to report changes")
	}

	got, _ := store.FindByID(context.Background(), "res-1")
	if got.Title != "A considerably longer and more descriptive title" {
		t.Errorf("Title = %q, longer incoming title should win", got.Title)
	}
	if got.Abstract != "a new abstract where none existed" {
		t.Errorf("Abstract = %q, incoming value should fill the empty field", got.Abstract)
	}
	if got.Content != "existing content that is fairly long already" {
		t.Errorf("Content = %q, shorter incoming content must not replace it", got.Content)
	}
}

func TestMergerNoChanges(t *testing.T) {
	store := NewMemoryResourceStore()
	store.Add(models.Resource{
		ID:      "res-1",
		Title:   "The Existing Title",
		Content: "existing content",
	})

	merger := NewMerger(store, testLogger())

	merged, err := merger.Merge(context.Background(), "res-1", models.ResourceFields{
		Title:   "short",
		Content: "",
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if merged {
		t.Error("expected no changes when nothing is longer")
	}
}

func TestMergerEqualLengthKeepsExisting(t *testing.T) {
	store := NewMemoryResourceStore()
	store.Add(models.Resource{ID: "res-1", Title: "aaaa"})

	merger := NewMerger(store, testLogger())

	merged, err := merger.Merge(context.Background(), "res-1", models.ResourceFields{Title: "bbbb"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if merged {
		t.Error("equal-length incoming value must not replace the stored one")
	}
}

func TestMergerMissingResource(t *testing.T) {
	merger := NewMerger(NewMemoryResourceStore(), testLogger())

	merged, err := merger.Merge(context.Background(), "nope", models.ResourceFields{Title: "anything at all"})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if merged {
		t.Error("merging into a missing resource should be a no-op")
	}
}

func TestMergerPropagatesStoreErrors(t *testing.T) {
	merger := NewMerger(failingStore{}, testLogger())

	_, err := merger.Merge(context.Background(), "res-1", models.ResourceFields{Title: "x"})
	if !errors.Is(err, errStore) {
		t.Errorf("Merge() error = %v, want wrapped store error", err)
	}
}
