package hal

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrAlreadyAttached is returned when Attach is called twice on the same
// RawBrain. Attaching is a one-shot operation: the restored state is handed
// over to exactly one Brain.
var ErrAlreadyAttached = errors.New("hal: raw brain already attached")

// snapshotVersion guards the wire format. Bump on incompatible changes.
const snapshotVersion = 1

// snapshotQuad is the portable form of one quad with its adjacency sets.
type snapshotQuad struct {
	Tokens   [4]string
	CanStart bool
	CanEnd   bool
	Next     []string
	Prev     []string
}

// snapshot is the serialized brain state: the quad graph and the known
// people names. Conversation memory is volatile by design and not persisted.
type snapshot struct {
	Version     int
	PeopleNames []string
	Quads       []snapshotQuad
}

// Snapshot serializes the brain to bytes (gob, gzip-compressed). It takes
// the brain lock for its whole duration so the captured state is never torn.
func (b *Brain) Snapshot() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := snapshot{Version: snapshotVersion}

	snap.PeopleNames = make([]string, 0, len(b.peopleNames))
	for name := range b.peopleNames {
		snap.PeopleNames = append(snap.PeopleNames, name)
	}
	sort.Strings(snap.PeopleNames)

	snap.Quads = make([]snapshotQuad, 0, len(b.model.quads))
	for _, q := range b.model.quads {
		sq := snapshotQuad{
			Tokens:   q.tokens,
			CanStart: q.canStart,
			CanEnd:   q.canEnd,
		}
		for token := range b.model.next[q] {
			sq.Next = append(sq.Next, token)
		}
		for token := range b.model.prev[q] {
			sq.Prev = append(sq.Prev, token)
		}
		sort.Strings(sq.Next)
		sort.Strings(sq.Prev)
		snap.Quads = append(snap.Quads, sq)
	}
	sort.Slice(snap.Quads, func(i, j int) bool {
		x, y := snap.Quads[i].Tokens, snap.Quads[j].Tokens
		for n := 0; n < 4; n++ {
			if x[n] != y[n] {
				return x[n] < y[n]
			}
		}
		return false
	})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(snap); err != nil {
		return nil, fmt.Errorf("hal: encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("hal: compress snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// RawBrain is deserialized brain state that has not yet been wired to its
// non-serializable dependencies (analyzer, logger, random source). Call
// Attach exactly once to obtain a usable Brain.
type RawBrain struct {
	mu       sync.Mutex
	snap     snapshot
	attached bool
}

// Restore decodes a snapshot produced by Snapshot. The result must be
// attached before use.
func Restore(data []byte) (*RawBrain, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("hal: decompress snapshot: %w", err)
	}
	defer gz.Close()

	var snap snapshot
	if err := gob.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("hal: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("hal: unsupported snapshot version %d", snap.Version)
	}

	return &RawBrain{snap: snap}, nil
}

// Attach wires the restored state to fresh runtime dependencies and returns
// the usable Brain. A second Attach on the same RawBrain is a programming
// error and returns ErrAlreadyAttached.
func (r *RawBrain) Attach(opts Options) (*Brain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.attached {
		return nil, ErrAlreadyAttached
	}
	r.attached = true

	b := New(opts)
	for _, name := range r.snap.PeopleNames {
		b.peopleNames[name] = struct{}{}
	}

	for _, sq := range r.snap.Quads {
		q := &quad{tokens: sq.Tokens, canStart: sq.CanStart, canEnd: sq.CanEnd}
		b.model.quads[sq.Tokens] = q

		for n := 0; n < 4; n++ {
			token := sq.Tokens[n]
			set, ok := b.model.tokenQuads[token]
			if !ok {
				set = make(map[*quad]struct{}, 1)
				b.model.tokenQuads[token] = set
			}
			set[q] = struct{}{}
		}

		for _, token := range sq.Next {
			b.model.addLink(b.model.next, q, token)
		}
		for _, token := range sq.Prev {
			b.model.addLink(b.model.prev, q, token)
		}
	}

	return b, nil
}
