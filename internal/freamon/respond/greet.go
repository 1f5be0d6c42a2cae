package respond

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/blanksteg/freamon/internal/freamon/config"
)

// Greeter welcomes people joining a room from fixed phrase lists, one
// list for the bot's own arrival and one for everybody else. Greetings
// share a cooldown and a chance roll so the bot does not welcome every
// single join.
type Greeter struct {
	mu       sync.Mutex
	settings *config.Settings
	rng      *rand.Rand

	joins  []string
	greets []string

	lastGreeting time.Time
	now          func() time.Time
}

// NewGreeter builds a greeter from phrase lists. Phrases may carry the
// %user% and %channel% masks. A nil rng gets a time-seeded source.
func NewGreeter(settings *config.Settings, joins, greets []string, rng *rand.Rand) *Greeter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Greeter{
		settings: settings,
		rng:      rng,
		joins:    joins,
		greets:   greets,
		now:      time.Now,
	}
}

// LoadPhrases reads a line-separated phrase list, dropping blank lines.
func LoadPhrases(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("respond: read phrases: %w", err)
	}
	var phrases []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			phrases = append(phrases, line)
		}
	}
	return phrases, nil
}

// Greet decides whether to welcome user joining channel and returns the
// phrase to send. self marks the bot's own arrival. The boolean reports
// whether a greeting is due.
func (g *Greeter) Greet(ctx context.Context, user, channel string, self bool) (string, bool) {
	phrases := g.greets
	if self {
		phrases = g.joins
	}
	if len(phrases) == 0 {
		return "", false
	}

	g.mu.Lock()
	cooled := g.now().Sub(g.lastGreeting) > g.settings.Cooldown()
	g.mu.Unlock()
	if !cooled || !g.settings.RollGreeting() {
		return "", false
	}

	if err := g.settings.SimulateDelay(ctx); err != nil {
		return "", false
	}

	g.mu.Lock()
	phrase := phrases[g.rng.Intn(len(phrases))]
	g.lastGreeting = g.now()
	g.mu.Unlock()

	phrase = strings.ReplaceAll(phrase, ChannelMask, channel)
	phrase = strings.ReplaceAll(phrase, UserMask, user)
	return phrase, true
}
