package hal

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
)

func testModel() *Model {
	return NewModel(rand.New(rand.NewSource(1)))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "words and spaces alternate",
			in:   "the cat",
			want: []string{"the", " ", "cat"},
		},
		{
			name: "punctuation glued to following space",
			in:   "Hi, there!",
			want: []string{"Hi", ", ", "there", "!"},
		},
		{
			name: "edges trimmed",
			in:   "  hello  ",
			want: []string{"hello"},
		},
		{
			name: "digits are word characters",
			in:   "room 101",
			want: []string{"room", " ", "101"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	in := "The quick, brown fox... jumps!"
	if got := strings.Join(tokenize(in), ""); got != in {
		t.Errorf("joined tokens = %q, want %q", got, in)
	}
}

func TestLearn_TooShortIsNoOp(t *testing.T) {
	m := testModel()
	m.Learn("a b") // three tokens: "a", " ", "b"
	if m.QuadCount() != 0 {
		t.Errorf("expected no quads for a short sentence, got %d", m.QuadCount())
	}
	if m.Generate("") != "" {
		t.Error("expected empty generation from an empty model")
	}
}

func TestLearn_QuadDedup(t *testing.T) {
	m := testModel()
	m.Learn("a b c d")
	first := m.QuadCount()
	if first == 0 {
		t.Fatal("expected quads after learning")
	}

	m.Learn("a b c d")
	if m.QuadCount() != first {
		t.Errorf("relearning the same sentence changed quad count: %d -> %d", first, m.QuadCount())
	}
}

func TestLearn_FlagsOnlyUpgrade(t *testing.T) {
	m := testModel()

	// "c d e" appears mid-sentence here, so its first window cannot start.
	m.Learn("a b c d e")
	key := [4]string{"c", " ", "d", " "}
	q, ok := m.quads[key]
	if !ok {
		t.Fatal("expected mid-sentence quad to exist")
	}
	if q.canStart {
		t.Error("mid-sentence quad should not be able to start")
	}

	// The same window at the head of a sentence upgrades canStart.
	m.Learn("c d e")
	if !q.canStart {
		t.Error("expected canStart to upgrade to true")
	}

	// Relearning the first sentence must not downgrade it.
	m.Learn("a b c d e")
	if !q.canStart {
		t.Error("canStart must never transition back to false")
	}
}

func TestGenerate_EmptyModel(t *testing.T) {
	m := testModel()
	if got := m.Generate(""); got != "" {
		t.Errorf("expected empty string from empty model, got %q", got)
	}
	if got := m.Generate("anything"); got != "" {
		t.Errorf("expected empty string from empty model with seed, got %q", got)
	}
}

func TestGenerate_UnknownSeedFallsBackToWholeModel(t *testing.T) {
	m := testModel()
	m.Learn("the cat sat on the mat")
	if got := m.Generate("zebra"); got == "" {
		t.Error("expected generation to fall back to the whole model for an unknown seed")
	}
}

func TestGenerate_SeededContainsSeed(t *testing.T) {
	m := testModel()
	m.Learn("The cat sat on the mat.")
	m.Learn("The dog sat on the log.")

	for i := 0; i < 20; i++ {
		got := m.Generate("sat")
		if got == "" {
			t.Fatal("expected non-empty seeded generation")
		}
		if !strings.Contains(got, "sat") {
			t.Errorf("expected %q to contain the seed", got)
		}
	}
}

func TestGenerate_VocabularyStaysLearned(t *testing.T) {
	m := testModel()
	m.Learn("The cat sat on the mat.")
	m.Learn("The dog sat on the log.")

	vocab := map[string]bool{
		"the": true, "cat": true, "sat": true, "on": true,
		"mat": true, "dog": true, "log": true,
	}

	wordRe := regexp.MustCompile(`[a-zA-Z0-9]+`)
	for i := 0; i < 50; i++ {
		got := m.Generate("sat")
		for _, w := range wordRe.FindAllString(got, -1) {
			if !vocab[strings.ToLower(w)] {
				t.Fatalf("generated word %q not in learned vocabulary (message %q)", w, got)
			}
		}
	}
}

func TestGenerate_TerminatesOnSelfCycle(t *testing.T) {
	m := testModel()

	// A quad that succeeds and precedes itself, with no start or end marker
	// anywhere. Without the walk cap this would never terminate.
	key := [4]string{"a", "a", "a", "a"}
	q := &quad{tokens: key}
	m.quads[key] = q
	m.tokenQuads["a"] = map[*quad]struct{}{q: {}}
	m.addLink(m.next, q, "a")
	m.addLink(m.prev, q, "a")

	if got := m.Generate(""); got == "" {
		t.Error("expected some output from the cyclic model")
	}
}

func TestGenerate_DeadEndStopsWalk(t *testing.T) {
	m := testModel()

	// A quad with no successors and no end marker: the walk must hard-stop
	// instead of dereferencing a missing adjacency set.
	key := [4]string{"x", " ", "y", " "}
	q := &quad{tokens: key}
	m.quads[key] = q

	if got := m.Generate(""); got != "x y " {
		t.Errorf("expected the bare quad tokens, got %q", got)
	}
}
