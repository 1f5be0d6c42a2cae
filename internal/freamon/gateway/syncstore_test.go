package gateway

import (
	"context"
	"path/filepath"
	"testing"

	"maunium.net/go/mautrix/id"

	"github.com/blanksteg/freamon/internal/freamon/store"
)

func newTestSyncStore(t *testing.T) *dbSyncStore {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "sync-test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return newDBSyncStore(s.DB())
}

func TestSyncStore_FirstRunIsEmpty(t *testing.T) {
	s := newTestSyncStore(t)
	ctx := context.Background()
	user := id.UserID("@freamon:example.org")

	batch, err := s.LoadNextBatch(ctx, user)
	if err != nil || batch != "" {
		t.Errorf("LoadNextBatch = %q, %v; want empty, nil", batch, err)
	}
	filter, err := s.LoadFilterID(ctx, user)
	if err != nil || filter != "" {
		t.Errorf("LoadFilterID = %q, %v; want empty, nil", filter, err)
	}
}

func TestSyncStore_RoundTripAndUpsert(t *testing.T) {
	s := newTestSyncStore(t)
	ctx := context.Background()
	user := id.UserID("@freamon:example.org")

	if err := s.SaveNextBatch(ctx, user, "s100"); err != nil {
		t.Fatalf("SaveNextBatch: %v", err)
	}
	if err := s.SaveNextBatch(ctx, user, "s200"); err != nil {
		t.Fatalf("SaveNextBatch upsert: %v", err)
	}
	if err := s.SaveFilterID(ctx, user, "f1"); err != nil {
		t.Fatalf("SaveFilterID: %v", err)
	}

	batch, err := s.LoadNextBatch(ctx, user)
	if err != nil || batch != "s200" {
		t.Errorf("LoadNextBatch = %q, %v; want s200", batch, err)
	}
	filter, err := s.LoadFilterID(ctx, user)
	if err != nil || filter != "f1" {
		t.Errorf("LoadFilterID = %q, %v; want f1", filter, err)
	}

	// Keys are per user.
	other, err := s.LoadNextBatch(ctx, id.UserID("@other:example.org"))
	if err != nil || other != "" {
		t.Errorf("other user LoadNextBatch = %q, %v; want empty", other, err)
	}
}
