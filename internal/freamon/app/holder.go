package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/blanksteg/freamon/internal/freamon/hal"
	"github.com/blanksteg/freamon/internal/freamon/store"
)

// Holder publishes the live brain and coordinates swapping it out while
// the bot keeps running. Callers that already hold a brain pointer
// finish their work on the old instance; new callers see the
// replacement.
type Holder struct {
	mu    sync.RWMutex
	brain *hal.Brain
}

// NewHolder starts out holding brain.
func NewHolder(brain *hal.Brain) *Holder {
	return &Holder{brain: brain}
}

// Current returns the live brain.
func (h *Holder) Current() *hal.Brain {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.brain
}

// Replace publishes next and returns the previous brain.
func (h *Holder) Replace(next *hal.Brain) *hal.Brain {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.brain
	h.brain = next
	return old
}

// Save snapshots the live brain into the store and returns the record.
func (h *Holder) Save(ctx context.Context, db *store.Store) (*store.Snapshot, error) {
	brain := h.Current()
	data, err := brain.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("app: snapshot brain: %w", err)
	}

	stats := brain.Stats()
	snap, err := db.SaveSnapshot(ctx, stats.Quads, stats.Tokens, stats.PeopleNames, data)
	if err != nil {
		return nil, fmt.Errorf("app: persist snapshot: %w", err)
	}
	return snap, nil
}

// SwitchTo saves the live brain, attaches the restored replacement and
// publishes it. The old brain is preserved in the store before the swap
// so a bad snapshot cannot lose learned language.
func (h *Holder) SwitchTo(ctx context.Context, db *store.Store, raw *hal.RawBrain, opts hal.Options) error {
	if _, err := h.Save(ctx, db); err != nil {
		return err
	}

	next, err := raw.Attach(opts)
	if err != nil {
		return fmt.Errorf("app: attach replacement brain: %w", err)
	}

	h.Replace(next)
	return nil
}
