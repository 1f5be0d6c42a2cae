package config

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Settings is the live, concurrency-safe view of the behavior values.
// The chance rolls and the artificial delay live here so every caller
// shares one source of randomness.
type Settings struct {
	mu  sync.RWMutex
	rng *rand.Rand

	publicChance int
	pingChance   int
	greetChance  int
	fixedChance  int

	cooldown   time.Duration
	tirePeriod time.Duration
	minDelay   time.Duration
	maxDelay   time.Duration

	learnNames bool
}

// NewSettings builds runtime settings from validated behavior values.
// A nil rng gets a time-seeded source.
func NewSettings(b Behavior, rng *rand.Rand) *Settings {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	learn := true
	if b.LearnNames != nil {
		learn = *b.LearnNames
	}
	return &Settings{
		rng:          rng,
		publicChance: b.PublicChance,
		pingChance:   b.PingChance,
		greetChance:  b.GreetChance,
		fixedChance:  b.FixedChance,
		cooldown:     time.Duration(b.CooldownSeconds) * time.Second,
		tirePeriod:   time.Duration(b.TirePeriodSeconds) * time.Second,
		minDelay:     time.Duration(b.MinDelayMs) * time.Millisecond,
		maxDelay:     time.Duration(b.MaxDelayMs) * time.Millisecond,
		learnNames:   learn,
	}
}

// rollChance decides true chance% of the time.
func (s *Settings) rollChance(chance int) bool {
	if chance >= chanceMax {
		return true
	}
	if chance <= 0 {
		return false
	}
	return chance > s.rng.Intn(chanceMax)
}

// RollPublicResponse decides whether an unaddressed message gets answered.
func (s *Settings) RollPublicResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollChance(s.publicChance)
}

// RollPingResponse decides whether an addressed message gets answered.
func (s *Settings) RollPingResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollChance(s.pingChance)
}

// RollGreeting decides whether a joining user gets greeted.
func (s *Settings) RollGreeting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollChance(s.greetChance)
}

// RollFixedResponse decides whether a matched fixed response is used.
func (s *Settings) RollFixedResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollChance(s.fixedChance)
}

// SimulateDelay sleeps for a random span within the configured delay
// window, as if the bot were typing. It returns early when ctx is done.
func (s *Settings) SimulateDelay(ctx context.Context) error {
	s.mu.Lock()
	span := s.minDelay
	if s.maxDelay > 0 {
		span += time.Duration(s.rng.Int63n(int64(s.maxDelay)))
	}
	s.mu.Unlock()

	timer := time.NewTimer(span)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Cooldown is the minimum quiet period between unaddressed responses.
func (s *Settings) Cooldown() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cooldown
}

// TirePeriod is how long the bot stays quiet after being told to go away.
func (s *Settings) TirePeriod() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tirePeriod
}

// LearnNames reports whether speaker names enter the nickname pool.
func (s *Settings) LearnNames() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learnNames
}

// SetChances replaces the response chances at runtime. Out-of-range
// values are clamped rather than rejected.
func (s *Settings) SetChances(public, ping, greet int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicChance = clampChance(public)
	s.pingChance = clampChance(ping)
	s.greetChance = clampChance(greet)
}

func clampChance(chance int) int {
	if chance < 0 {
		return 0
	}
	if chance > chanceMax {
		return chanceMax
	}
	return chance
}
