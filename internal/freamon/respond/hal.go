package respond

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/blanksteg/freamon/internal/freamon/config"
)

// Brain is the conversational core the language stage delegates to.
type Brain interface {
	HandleMessage(conversationName, sender, message, botNick string)
	ReplyPublic(conversationName, sender, message, botNick string, participants []string) string
	ReplyPrivate(conversationName, sender, message, botNick string) string
}

// BrainSource yields the current brain. The brain can be swapped at
// runtime, so stages resolve it per event.
type BrainSource func() Brain

// CommandFilter silences messages that address the command interface so
// they never reach the language stages.
func CommandFilter() Stage {
	return func(ctx context.Context, ev *Event) (string, bool) {
		if strings.HasPrefix(ev.Message, "!") {
			return "", true
		}
		return "", false
	}
}

// HalResponder produces generated replies, moderated to feel human: a
// typing delay before answering, a cooldown between unprovoked messages
// and weighted chance rolls.
type HalResponder struct {
	mu       sync.Mutex
	source   BrainSource
	settings *config.Settings

	lastMessage time.Time
	tiredUntil  map[string]time.Time
	now         func() time.Time
}

// NewHalResponder builds the language stage around a brain source.
func NewHalResponder(source BrainSource, settings *config.Settings) *HalResponder {
	return &HalResponder{
		source:     source,
		settings:   settings,
		tiredUntil: make(map[string]time.Time),
		now:        time.Now,
	}
}

// Tire silences generated replies in a room for the configured tire
// period. The bot keeps listening and learning while quiet.
func (h *HalResponder) Tire(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tiredUntil[room] = h.now().Add(h.settings.TirePeriod())
}

// Wake ends a room's quiet period early.
func (h *HalResponder) Wake(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tiredUntil, room)
}

func (h *HalResponder) tired(room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now().Before(h.tiredUntil[room])
}

// TireStage recognizes the go-away commands: "!plsgo" sends the bot
// into a quiet period for the room, "!plscome" calls it back. It runs
// ahead of the command filter, which swallows every other "!" message.
func (h *HalResponder) TireStage() Stage {
	return func(ctx context.Context, ev *Event) (string, bool) {
		if ev.Private {
			return "", false
		}
		switch strings.TrimSpace(ev.Message) {
		case "!plsgo":
			h.Tire(ev.Room)
			return ev.Sender + ": ok i go now", true
		case "!plscome":
			h.Wake(ev.Room)
			return ":D", true
		}
		return "", false
	}
}

// Stage returns the pipeline stage. Events that do not earn a reply are
// still fed to the brain so it keeps learning.
func (h *HalResponder) Stage() Stage {
	return func(ctx context.Context, ev *Event) (string, bool) {
		brain := h.source()
		if brain == nil {
			return "", false
		}
		if ev.Private {
			return h.respondPrivate(ctx, brain, ev)
		}
		return h.respondPublic(ctx, brain, ev)
	}
}

func (h *HalResponder) respondPrivate(ctx context.Context, brain Brain, ev *Event) (string, bool) {
	if !h.cooledDown() {
		brain.HandleMessage(ev.Room, ev.Sender, ev.Message, ev.BotNick)
		return "", false
	}
	if err := h.settings.SimulateDelay(ctx); err != nil {
		brain.HandleMessage(ev.Room, ev.Sender, ev.Message, ev.BotNick)
		return "", false
	}

	response := brain.ReplyPrivate(ev.Room, ev.Sender, ev.Message, ev.BotNick)
	h.touch()
	return h.redirectSelfMentions(response, ev), true
}

func (h *HalResponder) respondPublic(ctx context.Context, brain Brain, ev *Event) (string, bool) {
	if h.tired(ev.Room) {
		brain.HandleMessage(ev.Room, ev.Sender, ev.Message, ev.BotNick)
		return "", false
	}

	mentioned := containsFold(ev.Message, ev.BotNick)

	respond := false
	switch {
	case mentioned:
		// Being addressed overrides the cooldown.
		respond = h.settings.RollPingResponse()
	case h.cooledDown():
		respond = h.settings.RollPublicResponse()
	}
	if !respond {
		brain.HandleMessage(ev.Room, ev.Sender, ev.Message, ev.BotNick)
		return "", false
	}

	if err := h.settings.SimulateDelay(ctx); err != nil {
		brain.HandleMessage(ev.Room, ev.Sender, ev.Message, ev.BotNick)
		return "", false
	}

	response := brain.ReplyPublic(ev.Room, ev.Sender, ev.Message, ev.BotNick, ev.Members)
	h.touch()

	response = h.redirectSelfMentions(response, ev)
	if mentioned && !containsFold(response, ev.Sender) {
		response = ev.Sender + ": " + response
	}
	return response, true
}

// redirectSelfMentions rewrites the bot's own name in a generated reply
// to the person being answered, so learned sentences that mention the
// bot read as addressed to the other party.
func (h *HalResponder) redirectSelfMentions(response string, ev *Event) string {
	if ev.BotNick == "" || !containsFold(response, ev.BotNick) {
		return response
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(ev.BotNick))
	if err != nil {
		return response
	}
	return re.ReplaceAllLiteralString(response, ev.Sender)
}

func (h *HalResponder) cooledDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now().Sub(h.lastMessage) > h.settings.Cooldown()
}

func (h *HalResponder) touch() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastMessage = h.now()
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
