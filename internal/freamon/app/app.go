// Package app wires the bot together: brain, persistence, responder
// pipeline and the Matrix gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/blanksteg/freamon/common/trace"
	"github.com/blanksteg/freamon/internal/freamon/config"
	"github.com/blanksteg/freamon/internal/freamon/gateway"
	"github.com/blanksteg/freamon/internal/freamon/hal"
	"github.com/blanksteg/freamon/internal/freamon/nlp"
	"github.com/blanksteg/freamon/internal/freamon/respond"
	"github.com/blanksteg/freamon/internal/freamon/store"
)

// typingTimeout caps how long the typing indicator stays lit while the
// bot simulates composing a reply.
const typingTimeout = 30 * time.Second

// App is the assembled bot.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	settings *config.Settings

	store    *store.Store
	holder   *Holder
	pipeline *respond.Pipeline
	greeter  *respond.Greeter
	gateway  *gateway.Client
	cron     *cron.Cron
}

// New builds the application from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := store.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	settings := config.NewSettings(cfg.Behavior, nil)
	brainOpts := hal.Options{
		Analyzer:             nlp.NewAnalyzer(nlp.NewProseParser(), logger),
		Logger:               logger,
		ConversationCapacity: cfg.ConversationCapacity,
		DisableNameLearning:  !settings.LearnNames(),
	}

	brain, err := loadBrain(context.Background(), db, brainOpts, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	holder := NewHolder(brain)

	halStage := respond.NewHalResponder(func() respond.Brain { return holder.Current() }, settings)
	stages := []respond.Stage{halStage.TireStage(), respond.CommandFilter()}
	if cfg.FixedFile != "" {
		fixed, err := respond.LoadFixedResponses(cfg.FixedFile, settings)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
		stages = append(stages, fixed.Stage())
	}
	stages = append(stages, halStage.Stage())

	greeter, err := buildGreeter(cfg, settings)
	if err != nil {
		db.Close()
		return nil, err
	}

	gw, err := gateway.New(&gateway.Config{
		Homeserver:  cfg.Homeserver,
		UserID:      cfg.UserID,
		AccessToken: cfg.AccessToken,
		Rooms:       cfg.Rooms,
		DB:          db.DB(),
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		settings: settings,
		store:    db,
		holder:   holder,
		pipeline: respond.NewPipeline(logger, stages...),
		greeter:  greeter,
		gateway:  gw,
	}

	if cfg.AutosaveSchedule != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(cfg.AutosaveSchedule, a.autosave); err != nil {
			db.Close()
			return nil, fmt.Errorf("app: autosave schedule: %w", err)
		}
	}

	return a, nil
}

// loadBrain restores the latest stored snapshot, or starts fresh when
// the store is empty.
func loadBrain(ctx context.Context, db *store.Store, opts hal.Options, logger *slog.Logger) (*hal.Brain, error) {
	snap, err := db.LoadLatest(ctx)
	if errors.Is(err, store.ErrNoSnapshots) {
		logger.Info("no stored brain, starting fresh")
		return hal.New(opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("app: load brain: %w", err)
	}

	raw, err := hal.Restore(snap.Data)
	if err != nil {
		return nil, fmt.Errorf("app: restore brain %s: %w", snap.ID, err)
	}
	brain, err := raw.Attach(opts)
	if err != nil {
		return nil, fmt.Errorf("app: attach brain %s: %w", snap.ID, err)
	}

	logger.Info("restored brain",
		"snapshot", snap.ID,
		"quads", snap.Quads,
		"tokens", snap.Tokens,
	)
	return brain, nil
}

func buildGreeter(cfg *config.Config, settings *config.Settings) (*respond.Greeter, error) {
	var joins, greets []string
	var err error
	if cfg.JoinsFile != "" {
		if joins, err = respond.LoadPhrases(cfg.JoinsFile); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	if cfg.GreetingsFile != "" {
		if greets, err = respond.LoadPhrases(cfg.GreetingsFile); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	return respond.NewGreeter(settings, joins, greets, nil), nil
}

// Run starts the gateway and blocks until an interrupt arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.logger.Info("starting Matrix sync", "homeserver", a.cfg.Homeserver, "user", a.cfg.UserID)
	err := a.gateway.Start(ctx, gateway.Handlers{
		OnMessage: a.handleMessage,
		OnJoin:    a.handleJoin,
	})
	if err != nil {
		return fmt.Errorf("app: start gateway: %w", err)
	}

	if a.cron != nil {
		a.cron.Start()
		a.logger.Info("autosave scheduled", "spec", a.cfg.AutosaveSchedule)
	}

	a.logger.Info("freamon is listening; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutting down")
	return nil
}

// Stop persists the brain and releases everything.
func (a *App) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
	a.gateway.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if snap, err := a.holder.Save(ctx, a.store); err != nil {
		a.logger.Error("failed to save brain on shutdown", "error", err)
	} else {
		a.logger.Info("saved brain", "snapshot", snap.ID, "quads", snap.Quads)
	}

	a.store.Close()
}

// Brain returns the brain holder, for command-layer access.
func (a *App) Brain() *Holder {
	return a.holder
}

func (a *App) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := a.holder.Save(ctx, a.store)
	if err != nil {
		a.logger.Error("autosave failed", "error", err)
		return
	}
	a.logger.Info("autosaved brain", "snapshot", snap.ID, "quads", snap.Quads)
}

func (a *App) handleMessage(ctx context.Context, msg gateway.Message) {
	ctx = trace.WithTraceID(ctx, trace.GenerateID())
	logger := a.logger.With("trace_id", trace.FromContext(ctx))

	ev := &respond.Event{
		Room:    msg.RoomID,
		Sender:  msg.Sender,
		Message: msg.Body,
		BotNick: a.cfg.DisplayName,
		Private: msg.Private,
	}
	if !msg.Private {
		ev.Members = a.gateway.Members(ctx, msg.RoomID)
	}

	// The pipeline simulates typing time, so light the indicator while
	// it thinks.
	a.gateway.SetTyping(ctx, msg.RoomID, true, typingTimeout)
	response, ok := a.pipeline.Respond(ctx, ev)
	a.gateway.SetTyping(ctx, msg.RoomID, false, 0)
	if !ok {
		return
	}

	if err := a.gateway.SendText(ctx, msg.RoomID, response); err != nil {
		logger.Error("failed to send response", "room", msg.RoomID, "error", err)
	}
}

func (a *App) handleJoin(ctx context.Context, join gateway.Join) {
	greeting, ok := a.greeter.Greet(ctx, join.User, join.RoomID, join.Self)
	if !ok {
		return
	}
	if err := a.gateway.SendText(ctx, join.RoomID, greeting); err != nil {
		a.logger.Error("failed to send greeting", "room", join.RoomID, "error", err)
	}
}
