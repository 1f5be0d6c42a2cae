package hal

import (
	"container/list"
	"sort"
	"strings"

	"github.com/blanksteg/freamon/internal/freamon/nlp"
)

const (
	// talkerLimit caps how many recent participants a conversation remembers.
	talkerLimit = 6
	// wordLimit caps how many recent ranked words a conversation remembers.
	wordLimit = 12

	// DefaultConversationCapacity bounds how many conversations the brain
	// tracks at once. The least recently touched conversation is evicted
	// when the bound is exceeded.
	DefaultConversationCapacity = 64
)

// ConversationState is the rolling memory of a single conversation: the most
// recent distinct talkers (oldest evicted first) and the most recent ranked
// words (lowest rank evicted first). Uniqueness of the conversation name is
// the caller's responsibility.
type ConversationState struct {
	name       string
	talkers    []string // insertion order, oldest first; case-insensitive identity
	words      []nlp.Word
	lastTalker string
}

// NewConversationState creates an empty state for the named conversation.
func NewConversationState(name string) *ConversationState {
	return &ConversationState{name: name}
}

// Name returns the conversation's name.
func (s *ConversationState) Name() string { return s.name }

// LastTalker returns the most recent speaker, or "" before anyone has spoken.
func (s *ConversationState) LastTalker() string { return s.lastTalker }

// AddTalker records a recent participant. Names are compared case-
// insensitively; re-adding a known talker refreshes its recency instead of
// duplicating it. When the limit is exceeded the oldest talker is dropped.
func (s *ConversationState) AddTalker(talker string) {
	s.lastTalker = talker

	for i, existing := range s.talkers {
		if strings.EqualFold(existing, talker) {
			s.talkers = append(append(s.talkers[:i:i], s.talkers[i+1:]...), talker)
			return
		}
	}

	s.talkers = append(s.talkers, talker)
	if len(s.talkers) > talkerLimit {
		s.talkers = s.talkers[1:]
	}
}

// Talkers returns a copy of the remembered participants, oldest first.
func (s *ConversationState) Talkers() []string {
	out := make([]string, len(s.talkers))
	copy(out, s.talkers)
	return out
}

// RetainWords replaces the conversation's word memory with the given list.
// An empty list is a no-op: a message with no rankable words should not erase
// what the conversation was about. The stored set is kept sorted by
// descending rank and bounded at the word limit, dropping the lowest-ranked
// words first.
func (s *ConversationState) RetainWords(words []nlp.Word) {
	if len(words) == 0 {
		return
	}

	s.words = s.words[:0]
	for _, w := range words {
		s.addWord(w)
	}
}

// Words returns a copy of the remembered words, highest rank first.
func (s *ConversationState) Words() []nlp.Word {
	out := make([]nlp.Word, len(s.words))
	copy(out, s.words)
	return out
}

// addWord inserts a single word in rank order, deduplicating identical words
// and evicting the lowest-ranked entry when the limit is exceeded.
func (s *ConversationState) addWord(w nlp.Word) {
	idx := sort.Search(len(s.words), func(i int) bool {
		return nlp.Compare(s.words[i], w) >= 0
	})
	if idx < len(s.words) && nlp.Compare(s.words[idx], w) == 0 {
		return
	}

	s.words = append(s.words, nlp.Word{})
	copy(s.words[idx+1:], s.words[idx:])
	s.words[idx] = w

	if len(s.words) > wordLimit {
		s.words = s.words[:wordLimit]
	}
}

// conversationCache is a capacity-bounded LRU of conversation states.
//
// The original design held conversation memory in a weak map, leaving
// eviction to garbage-collection timing. Here eviction is deterministic:
// touching a conversation marks it most-recently-used, and creating one past
// capacity drops the least-recently-used entry. Conversation memory is
// volatile either way — callers must not rely on it surviving.
type conversationCache struct {
	capacity int
	order    *list.List // front = most recently used; values are *ConversationState
	items    map[string]*list.Element
}

func newConversationCache(capacity int) *conversationCache {
	if capacity <= 0 {
		capacity = DefaultConversationCapacity
	}
	return &conversationCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// ensure returns the state for the named conversation, creating it lazily.
func (c *conversationCache) ensure(name string) *ConversationState {
	if el, ok := c.items[name]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*ConversationState)
	}

	state := NewConversationState(name)
	c.items[name] = c.order.PushFront(state)

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*ConversationState).name)
	}

	return state
}

// peek returns the state without affecting recency, or nil if absent.
func (c *conversationCache) peek(name string) *ConversationState {
	if el, ok := c.items[name]; ok {
		return el.Value.(*ConversationState)
	}
	return nil
}

func (c *conversationCache) len() int {
	return c.order.Len()
}
