package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blanksteg/freamon/internal/freamon/hal"
	"github.com/blanksteg/freamon/internal/freamon/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "holder-test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHolder_Save(t *testing.T) {
	brain := hal.New(hal.Options{})
	brain.AddSentence("the cat sat on the mat")

	h := NewHolder(brain)
	db := newTestStore(t)

	snap, err := h.Save(context.Background(), db)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.Quads != brain.Stats().Quads {
		t.Errorf("stored quad count %d, want %d", snap.Quads, brain.Stats().Quads)
	}
	if len(snap.Data) == 0 {
		t.Error("expected snapshot data")
	}
}

func TestHolder_SwitchTo(t *testing.T) {
	old := hal.New(hal.Options{})
	old.AddSentence("old knowledge lives here now")

	replacement := hal.New(hal.Options{})
	replacement.AddSentence("fresh start for the brain")
	data, err := replacement.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	raw, err := hal.Restore(data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	h := NewHolder(old)
	db := newTestStore(t)

	if err := h.SwitchTo(context.Background(), db, raw, hal.Options{}); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}

	// The old brain was persisted before the swap.
	stored, err := db.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if stored.Quads != old.Stats().Quads {
		t.Errorf("persisted quads %d, want the old brain's %d", stored.Quads, old.Stats().Quads)
	}

	// The published brain is the replacement.
	if h.Current() == old {
		t.Error("expected the holder to publish the replacement brain")
	}
	if got := h.Current().Stats().Quads; got != replacement.Stats().Quads {
		t.Errorf("live brain quads %d, want %d", got, replacement.Stats().Quads)
	}
}

func TestHolder_SwitchToFailsOnReusedRawBrain(t *testing.T) {
	brain := hal.New(hal.Options{})
	brain.AddSentence("some sentences to remember")
	data, err := brain.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	raw, err := hal.Restore(data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := raw.Attach(hal.Options{}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	h := NewHolder(brain)
	db := newTestStore(t)

	if err := h.SwitchTo(context.Background(), db, raw, hal.Options{}); err == nil {
		t.Error("expected a reused raw brain to be rejected")
	}
	if h.Current() != brain {
		t.Error("expected the live brain to stay published after a failed switch")
	}
}
