// Package config loads and validates the bot configuration file and
// exposes the tunable behavior values at runtime.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Chance bounds, in percent.
const chanceMax = 100

// Behavior validation bounds.
const (
	minCooldownSeconds = 1
	minMinDelayMs      = 100
	maxMinDelayMs      = 60000
	minMaxDelayMs      = 200
)

// Config is the root of the YAML configuration file.
type Config struct {
	// Homeserver is the Matrix homeserver URL.
	Homeserver string `yaml:"homeserver"`

	// UserID is the bot's fully qualified Matrix user ID.
	UserID string `yaml:"userID"`

	// AccessToken authenticates the bot. Prefer the FREAMON_ACCESS_TOKEN
	// environment variable over putting the token in the file.
	AccessToken string `yaml:"accessToken,omitempty"`

	// DisplayName is the name the bot answers to in conversation.
	DisplayName string `yaml:"displayName"`

	// Rooms lists the room IDs or aliases to join on startup.
	Rooms []string `yaml:"rooms,omitempty"`

	// Database is the path of the snapshot database.
	Database string `yaml:"database,omitempty"`

	// AutosaveSchedule is a cron expression for periodic brain snapshots.
	// Empty disables autosaving.
	AutosaveSchedule string `yaml:"autosaveSchedule,omitempty"`

	// GreetingsFile and JoinsFile are line-separated phrase lists.
	GreetingsFile string `yaml:"greetingsFile,omitempty"`
	JoinsFile     string `yaml:"joinsFile,omitempty"`

	// FixedFile is a JSON document of triggered responses.
	FixedFile string `yaml:"fixedFile,omitempty"`

	// ConversationCapacity bounds how many rooms keep live context.
	// 0 uses the built-in default.
	ConversationCapacity int `yaml:"conversationCapacity,omitempty"`

	// Behavior holds the response tuning knobs.
	Behavior Behavior `yaml:"behavior,omitempty"`
}

// Behavior are the tunable response parameters.
type Behavior struct {
	// PublicChance is the percent chance of answering an unaddressed
	// channel message.
	PublicChance int `yaml:"publicChance"`

	// PingChance is the percent chance of answering when addressed.
	PingChance int `yaml:"pingChance"`

	// GreetChance is the percent chance of greeting a joining user.
	GreetChance int `yaml:"greetChance"`

	// FixedChance is the percent chance of using a matched fixed response.
	FixedChance int `yaml:"fixedChance"`

	// CooldownSeconds is the minimum quiet period between unaddressed
	// responses in the same room.
	CooldownSeconds int `yaml:"cooldownSeconds"`

	// TirePeriodSeconds is how long the bot stays quiet in a room after
	// being told to go away.
	TirePeriodSeconds int `yaml:"tirePeriodSeconds"`

	// MinDelayMs and MaxDelayMs bound the artificial typing delay.
	MinDelayMs int `yaml:"minDelayMs"`
	MaxDelayMs int `yaml:"maxDelayMs"`

	// LearnNames controls whether speaker names enter the nickname pool.
	LearnNames *bool `yaml:"learnNames,omitempty"`
}

// DefaultBehavior mirrors the values the bot shipped with.
func DefaultBehavior() Behavior {
	learn := true
	return Behavior{
		PublicChance:      10,
		PingChance:        100,
		GreetChance:       80,
		FixedChance:       30,
		CooldownSeconds:   5,
		TirePeriodSeconds: 15 * 60,
		MinDelayMs:        2000,
		MaxDelayMs:        4000,
		LearnNames:        &learn,
	}
}

// Load reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{Behavior: DefaultBehavior()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "freamon.db"
	}
	if c.DisplayName == "" && c.UserID != "" {
		// "@freamon:example.org" answers to "freamon".
		name := strings.TrimPrefix(c.UserID, "@")
		if i := strings.Index(name, ":"); i > 0 {
			name = name[:i]
		}
		c.DisplayName = name
	}
	if token := os.Getenv("FREAMON_ACCESS_TOKEN"); token != "" {
		c.AccessToken = token
	}
}

// Validate checks the configuration for consistency. It returns the
// first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Homeserver) == "" {
		return fmt.Errorf("homeserver must not be empty")
	}
	if !strings.HasPrefix(c.UserID, "@") || !strings.Contains(c.UserID, ":") {
		return fmt.Errorf("userID must be a fully qualified Matrix ID, got %q", c.UserID)
	}
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Errorf("displayName must not be empty")
	}
	if c.ConversationCapacity < 0 {
		return fmt.Errorf("conversationCapacity must not be negative, got %d", c.ConversationCapacity)
	}
	if err := c.Behavior.validate(); err != nil {
		return fmt.Errorf("behavior: %w", err)
	}
	return nil
}

func (b Behavior) validate() error {
	for _, chance := range []struct {
		name  string
		value int
	}{
		{"publicChance", b.PublicChance},
		{"pingChance", b.PingChance},
		{"greetChance", b.GreetChance},
		{"fixedChance", b.FixedChance},
	} {
		if chance.value < 0 || chance.value > chanceMax {
			return fmt.Errorf("%s out of range [0, %d]: %d", chance.name, chanceMax, chance.value)
		}
	}

	if b.CooldownSeconds < minCooldownSeconds {
		return fmt.Errorf("cooldownSeconds must be at least %d, got %d", minCooldownSeconds, b.CooldownSeconds)
	}
	if b.TirePeriodSeconds < 0 {
		return fmt.Errorf("tirePeriodSeconds must not be negative, got %d", b.TirePeriodSeconds)
	}
	if b.MinDelayMs < minMinDelayMs || b.MinDelayMs > maxMinDelayMs {
		return fmt.Errorf("minDelayMs out of range [%d, %d]: %d", minMinDelayMs, maxMinDelayMs, b.MinDelayMs)
	}
	if b.MaxDelayMs < minMaxDelayMs {
		return fmt.Errorf("maxDelayMs must be at least %d, got %d", minMaxDelayMs, b.MaxDelayMs)
	}
	if b.MaxDelayMs < b.MinDelayMs {
		return fmt.Errorf("maxDelayMs (%d) must not be below minDelayMs (%d)", b.MaxDelayMs, b.MinDelayMs)
	}
	return nil
}
