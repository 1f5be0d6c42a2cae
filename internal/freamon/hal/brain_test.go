package hal

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/blanksteg/freamon/internal/freamon/nlp"
)

// taggingParser tags each whitespace-separated word with a canned relation,
// standing in for the real grammar parser.
type taggingParser struct {
	tags map[string]string
}

func (p taggingParser) Parse(text string) ([]nlp.Dependency, error) {
	var deps []nlp.Dependency
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?")
		if w == "" {
			continue
		}
		deps = append(deps, nlp.Dependency{Token: w, Relation: p.tags[strings.ToLower(w)]})
	}
	return deps, nil
}

func testBrain(tags map[string]string) *Brain {
	return New(Options{
		Analyzer: nlp.NewAnalyzer(taggingParser{tags: tags}, nil),
		Rand:     rand.New(rand.NewSource(42)),
	})
}

func TestHandleMessage_RetainsWordsAndTalker(t *testing.T) {
	b := testBrain(map[string]string{"cat": "nn", "sat": "root"})
	b.HandleMessage("#chan", "alice", "the cat sat down", "freamon")

	state := b.Conversation("#chan")
	if state == nil {
		t.Fatal("expected conversation state")
	}

	words := state.Words()
	if len(words) == 0 {
		t.Fatal("expected retained words")
	}
	if words[0].Text != "cat" {
		t.Errorf("expected highest-ranked word cat, got %q", words[0].Text)
	}

	talkers := state.Talkers()
	if len(talkers) != 1 || talkers[0] != "alice" {
		t.Errorf("expected alice as the only talker, got %v", talkers)
	}
	if state.LastTalker() != "alice" {
		t.Errorf("expected last talker alice, got %q", state.LastTalker())
	}
}

func TestHandleMessage_BotIdentityStripped(t *testing.T) {
	b := testBrain(map[string]string{"freamon": "nn", "weather": "nn"})
	b.HandleMessage("#chan", "alice", "freamon knows the weather", "Freamon")

	state := b.Conversation("#chan")
	for _, w := range state.Words() {
		if strings.EqualFold(w.Text, "freamon") {
			t.Errorf("expected the bot's own name stripped from words, got %v", state.Words())
		}
	}
}

func TestHandleMessage_BotNotRememberedAsTalker(t *testing.T) {
	b := testBrain(nil)
	b.HandleMessage("#chan", "Freamon", "talking to myself again", "Freamon")

	state := b.Conversation("#chan")
	if len(state.Talkers()) != 0 {
		t.Errorf("expected no talkers when the bot talks to itself, got %v", state.Talkers())
	}
}

func TestAddPersonName_Rules(t *testing.T) {
	b := testBrain(nil)

	b.AddPersonName("bo")         // too short
	b.AddPersonName("ali ce")     // whitespace not allowed
	b.AddPersonName("nick!")      // outside the nickname alphabet
	b.AddPersonName("Wendy")      // fine
	b.AddPersonName("Wendy")      // duplicate
	b.AddPersonName("bodie_real") // underscore allowed

	if got := b.Stats().PeopleNames; got != 2 {
		t.Errorf("expected 2 remembered names, got %d", got)
	}
}

func TestAddSentence_FilteredMessagesTeachNothing(t *testing.T) {
	b := testBrain(nil)
	b.AddSentence("12345")
	b.AddSentence("!command")
	if got := b.Stats().Quads; got != 0 {
		t.Errorf("expected nothing learned from filtered messages, got %d quads", got)
	}

	b.AddSentence("the cat sat on the mat")
	if got := b.Stats().Quads; got == 0 {
		t.Error("expected quads after learning a real sentence")
	}
}

func TestReplyPrivate_NeverEmpty(t *testing.T) {
	// Empty model: every generation path fails, the composer must still
	// answer something.
	b := testBrain(nil)
	got := b.ReplyPrivate("alice", "alice", "hi", "freamon")
	if got != fallbackReply {
		t.Errorf("expected fallback reply from empty brain, got %q", got)
	}
}

func TestReplyPrivate_UsesLearnedLanguage(t *testing.T) {
	b := testBrain(map[string]string{"cat": "nn", "dog": "nn"})
	b.AddSentence("The cat sat on the mat.")
	b.AddSentence("The dog sat on the log.")

	got := b.ReplyPrivate("alice", "alice", "tell me about the cat", "freamon")
	if got == "" {
		t.Fatal("expected a reply")
	}
	if got == fallbackReply {
		t.Fatalf("expected a generated reply, got the fallback")
	}
}

func TestReplyPublic_ObfuscatesParticipants(t *testing.T) {
	b := testBrain(map[string]string{"wendy": "nn"})
	// Teach sentences that mention Wendy so the reply can contain her name.
	b.AddSentence("Wendy sat on the mat again today.")
	b.AddSentence("Wendy sat on the log again today.")

	for i := 0; i < 10; i++ {
		got := b.ReplyPublic("#chan", "alice", "what about Wendy", "freamon", []string{"alice", "Wendy"})
		if strings.Contains(strings.ToLower(got), "wendy") {
			t.Fatalf("expected wendy's name obfuscated in %q", got)
		}
	}
}

func TestAppropriateNicknames_ReplacesKnownPerson(t *testing.T) {
	b := testBrain(nil)
	b.AddPersonName("Steve")

	state := NewConversationState("#chan")
	state.AddTalker("Bodie")

	got := b.appropriateNicknames("Steve knows best", state)
	if got != "Bodie knows best" {
		t.Errorf("expected Steve replaced by Bodie, got %q", got)
	}
}

func TestAppropriateNicknames_NoMatchesPassesThrough(t *testing.T) {
	b := testBrain(nil)
	b.AddPersonName("Steve")

	state := NewConversationState("#chan")
	state.AddTalker("Bodie")

	msg := "nothing personal here"
	if got := b.appropriateNicknames(msg, state); got != msg {
		t.Errorf("expected message unchanged, got %q", got)
	}
}

func TestAppropriateNicknames_WholeWordOnly(t *testing.T) {
	b := testBrain(nil)
	b.AddPersonName("plan")

	state := NewConversationState("#chan")
	state.AddTalker("Kima")

	// "plan" inside "planned" must not be replaced.
	if got := b.appropriateNicknames("we planned this", state); got != "we planned this" {
		t.Errorf("expected substring mention ignored, got %q", got)
	}
}

func TestRandomSelectionBound(t *testing.T) {
	b := testBrain(nil)

	if got := b.randomSelectionBound(0); got != 0 {
		t.Errorf("bound for 0 words = %d, want 0", got)
	}
	if got := b.randomSelectionBound(1); got != 0 {
		t.Errorf("bound for 1 word = %d, want 0", got)
	}
	for i := 0; i < 100; i++ {
		got := b.randomSelectionBound(10)
		if got < 0 || got >= 7 {
			t.Fatalf("bound for 10 words = %d, want [0,7)", got)
		}
	}
}
