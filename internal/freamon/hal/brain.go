package hal

import (
	"log/slog"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blanksteg/freamon/internal/freamon/nlp"
	"github.com/blanksteg/freamon/internal/freamon/sanitize"
)

// generationAttempts is how often a seeded generation is retried before the
// seed is given up on. The model occasionally returns an empty walk, so a
// single attempt is not enough.
const generationAttempts = 32

// fallbackReply is returned when every generation path comes up empty. The
// composer never propagates an empty reply to the caller.
const fallbackReply = "I have no idea."

// nicknameRe matches names worth remembering for later substitution.
var nicknameRe = regexp.MustCompile(`^[a-zA-Z-_]+$`)

// Brain is the aggregate root of the chatbot: the Markov model, the set of
// people names ever observed, and the bounded per-conversation memory. It is
// the unit of persistence and the unit of mutual exclusion — every mutating
// operation takes the one brain-wide lock, because conversations share the
// model and the name set underneath.
type Brain struct {
	mu sync.Mutex

	rng           *rand.Rand
	logger        *slog.Logger
	model         *Model
	peopleNames   map[string]struct{}
	conversations *conversationCache
	analyzer      *nlp.Analyzer
	learnNames    bool
}

// Options configures a new Brain. The zero value is usable: a prose-backed
// analyzer, the default logger, a time-seeded random source, the default
// conversation capacity, and name learning enabled.
type Options struct {
	// Analyzer ranks the words of incoming messages. When nil, an analyzer
	// over the default prose parser is constructed.
	Analyzer *nlp.Analyzer

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Rand is the random source for all generation decisions. Tests inject
	// a fixed seed; nil gets a time-seeded source.
	Rand *rand.Rand

	// ConversationCapacity bounds the conversation LRU.
	// Defaults to DefaultConversationCapacity.
	ConversationCapacity int

	// DisableNameLearning turns off both the collection of people names and
	// their substitution into generated replies.
	DisableNameLearning bool
}

// New creates an empty Brain.
func New(opts Options) *Brain {
	if opts.Analyzer == nil {
		opts.Analyzer = nlp.NewAnalyzer(nlp.NewProseParser(), opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Brain{
		rng:           opts.Rand,
		logger:        opts.Logger,
		model:         NewModel(opts.Rand),
		peopleNames:   make(map[string]struct{}),
		conversations: newConversationCache(opts.ConversationCapacity),
		analyzer:      opts.Analyzer,
		learnNames:    !opts.DisableNameLearning,
	}
}

// AddSentence teaches the model one sentence. The sentence is filtered first;
// messages that filter down to nothing teach nothing.
func (b *Brain) AddSentence(sentence string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addSentence(sentence)
}

func (b *Brain) addSentence(sentence string) {
	filtered, ok := sanitize.FilterMessage(sentence)
	if !ok || sanitize.EmptyString(filtered) {
		b.logger.Debug("message empty after filtering", "message", sentence)
		return
	}

	start := time.Now()
	b.model.Learn(filtered)
	b.logger.Debug("learned sentence", "sentence", filtered, "took", time.Since(start))
}

// AddPersonName remembers a name as someone whose mention in generated text
// may later be swapped for a current talker. Short names, names with
// characters outside the nickname alphabet, and duplicates are ignored.
func (b *Brain) AddPersonName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addPersonName(name)
}

func (b *Brain) addPersonName(name string) {
	if !b.learnNames {
		return
	}
	if len(strings.TrimSpace(name)) < 4 || !nicknameRe.MatchString(name) {
		return
	}
	if _, known := b.peopleNames[name]; known {
		return
	}

	b.logger.Debug("remembering person", "name", name)
	b.peopleNames[name] = struct{}{}
}

// HandleMessage performs the common per-message bookkeeping: learn the
// sentence, remember the sender's name, and update the conversation's word
// and talker memory. The bot's own identity is stripped from the ranked
// words, and the bot is never remembered as a talker of its own messages.
func (b *Brain) HandleMessage(conversation, sender, message, botNick string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handleMessage(conversation, sender, message, botNick)
}

func (b *Brain) handleMessage(conversation, sender, message, botNick string) {
	b.logger.Debug("handling message", "conversation", conversation, "sender", sender)
	b.addPersonName(sender)
	b.addSentence(message)

	state := b.conversations.ensure(conversation)

	filtered, ok := sanitize.FilterMessage(message)
	if !ok {
		filtered = ""
	}
	words := b.analyzer.AnalyzePhrase(filtered)

	// The bot's own name is never a relevant topic.
	kept := words[:0]
	for _, w := range words {
		if !strings.EqualFold(w.Text, botNick) {
			kept = append(kept, w)
		}
	}
	state.RetainWords(kept)

	if !strings.EqualFold(sender, botNick) {
		state.AddTalker(sender)
	}
}

// ReplyPrivate handles the triggering message and generates a reply relevant
// to the one-to-one conversation. It always returns a non-empty string.
func (b *Brain) ReplyPrivate(conversation, sender, message, botNick string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handleMessage(conversation, sender, message, botNick)
	return b.generateRelevant(b.conversations.ensure(conversation))
}

// ReplyPublic handles the triggering message and generates a reply relevant
// to the channel, then obfuscates accidental highlights of the currently
// present participants (the sender and the bot excepted). It always returns
// a non-empty string.
func (b *Brain) ReplyPublic(conversation, sender, message, botNick string, participants []string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handleMessage(conversation, sender, message, botNick)
	reply := b.generateRelevant(b.conversations.ensure(conversation))
	return preventHighlighting(reply, participants, sender, botNick, b.rng)
}

// GenerateOriginal produces an unseeded message with no conversation focus.
func (b *Brain) GenerateOriginal() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generateOriginal()
}

func (b *Brain) generateOriginal() string {
	message := b.attemptGeneration("")
	if message == "" {
		return fallbackReply
	}
	return sanitize.BeautifyMessage(message)
}

// generateRelevant picks a focus word from the conversation's recent words
// and seeds generation with it. The starting rank is drawn from the top 70%
// of the word list; from there, progressively lower-ranked candidates are
// tried until one yields a reply. With no usable words or no successful
// seeded generation, an unseeded message is produced instead.
func (b *Brain) generateRelevant(state *ConversationState) string {
	words := state.Words()
	if len(words) > 0 {
		start := b.randomSelectionBound(len(words))
		for _, focus := range words[start:] {
			b.logger.Debug("trying focus word", "word", focus.Text, "type", focus.Type.String())
			message := b.attemptGeneration(focus.Text)
			if message == "" {
				continue
			}
			message = b.appropriateNicknames(message, state)
			message = sanitize.BeautifyMessage(message)
			if message != "" {
				return message
			}
		}
	}

	b.logger.Debug("no relevant focus produced a message, generating an original one")
	return b.generateOriginal()
}

// attemptGeneration brute-forces model generation, which sometimes returns an
// empty walk. Returns "" when every attempt failed.
func (b *Brain) attemptGeneration(focus string) string {
	for attempt := 0; attempt < generationAttempts; attempt++ {
		if message := b.model.Generate(focus); message != "" {
			return message
		}
	}
	return ""
}

// randomSelectionBound returns a starting index into a descending-ranked list
// of size n, bounded to the top 70% so low-value words are only reached by
// falling through.
func (b *Brain) randomSelectionBound(n int) int {
	if n <= 1 {
		return 0
	}
	return b.rng.Intn(int(float64(n) * 0.7))
}

// appropriateNicknames replaces mentions of known people in the generated
// message with the conversation's current talkers. The model happily inserts
// names of people who are not around; swapping them for recent talkers keeps
// personal references relevant. Matching is whole-word and case-insensitive,
// replacement one-to-one against a shuffled talker list, stopping when either
// side runs out. Best-effort: a message with no matches passes unchanged.
func (b *Brain) appropriateNicknames(message string, state *ConversationState) string {
	if !b.learnNames {
		return message
	}

	talkers := state.Talkers()
	b.rng.Shuffle(len(talkers), func(i, j int) {
		talkers[i], talkers[j] = talkers[j], talkers[i]
	})

	names := make([]string, 0, len(b.peopleNames))
	for name := range b.peopleNames {
		names = append(names, name)
	}
	sort.Strings(names)

	var contained []string
	for _, name := range names {
		if len(contained) == len(talkers) {
			break
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(message) {
			contained = append(contained, name)
		}
	}

	for i := 0; i < len(contained) && i < len(talkers); i++ {
		b.logger.Debug("replacing name", "old", contained[i], "new", talkers[i])
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(contained[i]) + `\b`)
		message = re.ReplaceAllString(message, talkers[i])
	}

	return message
}

// Stats describes the size of a brain for logging and CLI output.
type Stats struct {
	Quads         int
	Tokens        int
	PeopleNames   int
	Conversations int
}

// Stats returns the brain's current size.
func (b *Brain) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Quads:         b.model.QuadCount(),
		Tokens:        b.model.TokenCount(),
		PeopleNames:   len(b.peopleNames),
		Conversations: b.conversations.len(),
	}
}

// Conversation returns the state for the named conversation without creating
// one, or nil when the brain has no memory of it.
func (b *Brain) Conversation(name string) *ConversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations.peek(name)
}
