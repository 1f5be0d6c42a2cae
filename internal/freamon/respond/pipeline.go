// Package respond decides what, if anything, the bot says to an incoming
// event. Responders are arranged as an ordered pipeline of stages; the
// first stage that produces an answer wins.
package respond

import (
	"context"
	"log/slog"
)

// Event is one incoming message presented to the pipeline.
type Event struct {
	// Room is the conversation identifier. For private chats this is the
	// peer's own ID.
	Room string

	// Sender is the display name of whoever wrote the message.
	Sender string

	// Message is the raw message body.
	Message string

	// BotNick is the name the bot currently answers to.
	BotNick string

	// Private marks direct messages, which skip the public chance rolls.
	Private bool

	// Members lists everyone present in the room, for highlight avoidance.
	Members []string
}

// Stage attempts to answer an event. The second return reports whether
// the stage handled the event: a handled event with an empty response
// means deliberate silence and stops the pipeline.
type Stage func(ctx context.Context, ev *Event) (string, bool)

// Pipeline runs stages in registration order.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// NewPipeline builds a pipeline over the given stages. A nil logger
// falls back to slog.Default.
func NewPipeline(logger *slog.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{stages: stages, logger: logger}
}

// Respond walks the stages and returns the first response produced.
// The boolean reports whether anything should be sent.
func (p *Pipeline) Respond(ctx context.Context, ev *Event) (string, bool) {
	for i, stage := range p.stages {
		response, handled := stage(ctx, ev)
		if !handled {
			continue
		}
		if response == "" {
			p.logger.Debug("stage silenced the event", "stage", i, "room", ev.Room)
			return "", false
		}
		p.logger.Debug("stage produced a response", "stage", i, "room", ev.Room)
		return response, true
	}
	return "", false
}
