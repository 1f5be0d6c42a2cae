// Package hal implements the chatbot's brain: a quad-gram Markov model of
// observed language, a bounded per-conversation memory of recent talkers and
// ranked words, and the response composer that ties the two together.
//
// The package name follows the MegaHAL lineage of the model design.
package hal

import (
	"math/rand"
	"strings"
	"time"
)

// wordChars are the characters that make up word tokens. Anything else is
// treated as punctuation.
const wordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxWalkLength caps each walk direction. The quad graph can contain cycles
// that never reach a start/end marker (a quad can even succeed itself), so
// the walk needs a hard stop to guarantee termination.
const maxWalkLength = 1024

// quad is one observed 4-token window. The token tuple is immutable after
// creation; canStart and canEnd only ever move from false to true.
type quad struct {
	tokens   [4]string
	canStart bool
	canEnd   bool
}

// Model is the quad-gram Markov model. It stores every observed 4-token
// window exactly once, an index from each token to the quads containing it,
// and forward/backward adjacency between windows observed consecutively.
//
// Model is not safe for concurrent use on its own; the owning Brain
// serializes access.
type Model struct {
	rng *rand.Rand

	// quads interns every observed window by its token tuple.
	quads map[[4]string]*quad
	// tokenQuads maps a token to the set of quads it appears in.
	tokenQuads map[string]map[*quad]struct{}
	// next and prev record which single tokens were observed directly
	// after and before a quad in the learned sequences.
	next map[*quad]map[string]struct{}
	prev map[*quad]map[string]struct{}
}

// NewModel creates an empty model. A nil rng gets a time-seeded source;
// tests inject a fixed seed for determinism.
func NewModel(rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Model{
		rng:        rng,
		quads:      make(map[[4]string]*quad),
		tokenQuads: make(map[string]map[*quad]struct{}),
		next:       make(map[*quad]map[string]struct{}),
		prev:       make(map[*quad]map[string]struct{}),
	}
}

// Learn tokenizes the sentence into alternating word/punctuation runs and
// records every overlapping 4-token window. Sentences shorter than 4 tokens
// teach the model nothing.
func (m *Model) Learn(sentence string) {
	parts := tokenize(sentence)
	if len(parts) < 4 {
		return
	}

	for i := 0; i+3 < len(parts); i++ {
		key := [4]string{parts[i], parts[i+1], parts[i+2], parts[i+3]}
		q, ok := m.quads[key]
		if !ok {
			q = &quad{tokens: key}
			m.quads[key] = q
		}

		if i == 0 {
			q.canStart = true
		}
		if i == len(parts)-4 {
			q.canEnd = true
		}

		for n := 0; n < 4; n++ {
			token := parts[i+n]
			set, ok := m.tokenQuads[token]
			if !ok {
				set = make(map[*quad]struct{}, 1)
				m.tokenQuads[token] = set
			}
			set[q] = struct{}{}
		}

		if i > 0 {
			m.addLink(m.prev, q, parts[i-1])
		}
		if i+4 < len(parts) {
			m.addLink(m.next, q, parts[i+4])
		}
	}
}

// Generate random-walks the quad graph and returns a token sequence as a
// single string, with no whitespace inserted between tokens (word tokens and
// punctuation tokens already carry their original spacing).
//
// With a non-empty seed that the model knows, the walk starts from a random
// quad containing the seed; otherwise from a random quad of the whole model.
// Returns "" when the model is empty.
func (m *Model) Generate(seed string) string {
	var candidates []*quad
	if set, ok := m.tokenQuads[seed]; ok && seed != "" {
		candidates = make([]*quad, 0, len(set))
		for q := range set {
			candidates = append(candidates, q)
		}
	} else {
		candidates = make([]*quad, 0, len(m.quads))
		for _, q := range m.quads {
			candidates = append(candidates, q)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	middle := candidates[m.rng.Intn(len(candidates))]

	parts := make([]string, 0, 8)
	parts = append(parts, middle.tokens[:]...)

	// Walk forward until a window that may end a sentence. A window with no
	// recorded successor is treated as if it could end; without that
	// fallback a dead-end window would dereference a missing adjacency set.
	steps := 0
	for q := middle; !q.canEnd && steps < maxWalkLength; steps++ {
		token, ok := m.pickLink(m.next, q)
		if !ok {
			break
		}
		parts = append(parts, token)
		q, ok = m.quads[[4]string{q.tokens[1], q.tokens[2], q.tokens[3], token}]
		if !ok {
			break
		}
	}

	// Walk backward the same way, prepending.
	steps = 0
	for q := middle; !q.canStart && steps < maxWalkLength; steps++ {
		token, ok := m.pickLink(m.prev, q)
		if !ok {
			break
		}
		parts = append([]string{token}, parts...)
		q, ok = m.quads[[4]string{token, q.tokens[0], q.tokens[1], q.tokens[2]}]
		if !ok {
			break
		}
	}

	return strings.Join(parts, "")
}

// QuadCount returns the number of distinct observed windows.
func (m *Model) QuadCount() int {
	return len(m.quads)
}

// TokenCount returns the number of distinct observed tokens.
func (m *Model) TokenCount() int {
	return len(m.tokenQuads)
}

// KnowsToken reports whether the model has seen the token in any window.
func (m *Model) KnowsToken(token string) bool {
	_, ok := m.tokenQuads[token]
	return ok
}

func (m *Model) addLink(index map[*quad]map[string]struct{}, q *quad, token string) {
	set, ok := index[q]
	if !ok {
		set = make(map[string]struct{}, 1)
		index[q] = set
	}
	set[token] = struct{}{}
}

// pickLink selects a uniformly random linked token for q, reporting false
// when no links are recorded.
func (m *Model) pickLink(index map[*quad]map[string]struct{}, q *quad) (string, bool) {
	set := index[q]
	if len(set) == 0 {
		return "", false
	}
	tokens := make([]string, 0, len(set))
	for t := range set {
		tokens = append(tokens, t)
	}
	return tokens[m.rng.Intn(len(tokens))], true
}

// tokenize splits a sentence into alternating runs of word characters and
// punctuation. Runs keep their characters verbatim, so joining the tokens
// back together reproduces the trimmed sentence exactly.
func tokenize(sentence string) []string {
	sentence = strings.TrimSpace(sentence)

	var parts []string
	var buf strings.Builder
	punctuation := false
	for _, ch := range sentence {
		if isWordChar(ch) == punctuation {
			punctuation = !punctuation
			if buf.Len() > 0 {
				parts = append(parts, buf.String())
			}
			buf.Reset()
		}
		buf.WriteRune(ch)
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}

	return parts
}

func isWordChar(ch rune) bool {
	return strings.ContainsRune(wordChars, ch)
}
