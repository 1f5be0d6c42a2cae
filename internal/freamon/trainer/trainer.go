// Package trainer bulk-feeds chat logs into a language brain. Each log
// format is handled by a small Extractor function; the surrounding file
// walking, buffering and logging is shared.
package trainer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// maxLineSize bounds a single log line. Chat logs occasionally contain
// pasted walls of text well beyond bufio's default token size.
const maxLineSize = 1 << 20

// Learner is the subset of the brain a training session feeds.
type Learner interface {
	AddSentence(message string)
	AddPersonName(name string)
}

// Utterance is one extracted statement. Speaker may be empty for formats
// that carry no attribution.
type Utterance struct {
	Speaker string
	Text    string
}

// Extractor turns one raw log line into zero or more utterances.
type Extractor func(line string) []Utterance

// Trainer drives an Extractor over files and directories.
type Trainer struct {
	extract Extractor
	logger  *slog.Logger
}

// New returns a trainer for the given extractor. A nil logger falls back
// to slog.Default.
func New(extract Extractor, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{extract: extract, logger: logger}
}

// Train reads r line by line and teaches every extracted utterance.
func (t *Trainer) Train(ctx context.Context, learner Learner, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines, taught int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("trainer: train: %w", err)
		}
		lines++
		for _, u := range t.extract(scanner.Text()) {
			if u.Speaker != "" {
				learner.AddPersonName(u.Speaker)
			}
			learner.AddSentence(u.Text)
			taught++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("trainer: train: %w", err)
	}

	t.logger.Debug("training pass finished", "lines", lines, "utterances", taught)
	return nil
}

// TrainFile opens path and runs a training pass over its contents.
func (t *Trainer) TrainFile(ctx context.Context, learner Learner, path string) error {
	t.logger.Info("training from file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("trainer: open %s: %w", path, err)
	}
	defer f.Close()

	return t.Train(ctx, learner, f)
}

// TrainDir runs a training pass over every regular file in dir. A file
// that fails to train is logged and skipped so one bad log does not
// abort a bulk import.
func (t *Trainer) TrainDir(ctx context.Context, learner Learner, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("trainer: scan %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := t.TrainFile(ctx, learner, path); err != nil {
			if ctx.Err() != nil {
				return err
			}
			t.logger.Warn("skipping unreadable training file", "path", path, "error", err)
		}
	}
	return nil
}

// PlainText treats every non-blank line as one anonymous sentence.
func PlainText(line string) []Utterance {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return []Utterance{{Text: line}}
}

// IRSSILog parses lines of the form "HH:MM <@nick> message". The single
// character after the opening bracket is the mode flag and is dropped.
func IRSSILog(line string) []Utterance {
	start := strings.Index(line, "<")
	if start == -1 || start+2 > len(line) {
		return nil
	}
	rest := line[start+2:]
	return attributed(rest)
}

// HexChatLog parses lines of the form "timestamp <nick> message".
func HexChatLog(line string) []Utterance {
	start := strings.Index(line, "<")
	if start == -1 {
		return nil
	}
	rest := line[start+1:]
	return attributed(rest)
}

var kvircLineRe = regexp.MustCompile(`^.*\[.*\] <.*>.*$`)

// KVIrcLog parses KVIrc-formatted lines, tolerating color-coded logs by
// stripping the control codes before matching.
func KVIrcLog(line string) []Utterance {
	if !kvircLineRe.MatchString(line) {
		line = strings.ReplaceAll(line, "\x02", "")
		line = strings.ReplaceAll(line, "\r", "")
	}
	if !kvircLineRe.MatchString(line) {
		return nil
	}

	start := strings.Index(line, "<")
	if start == -1 {
		return nil
	}
	rest := line[start+1:]
	if strings.HasPrefix(rest, "@") || strings.HasPrefix(rest, "+") {
		rest = rest[1:]
	}
	return attributed(rest)
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

// ContinuousText splits running prose into sentences on terminal
// punctuation, each taught without attribution.
func ContinuousText(line string) []Utterance {
	var out []Utterance
	for _, sentence := range sentenceRe.FindAllString(line, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		out = append(out, Utterance{Text: sentence})
	}
	return out
}

// attributed splits "nick> message" into a speaker and their sentence.
func attributed(rest string) []Utterance {
	nameEnd := strings.Index(rest, ">")
	if nameEnd == -1 || nameEnd+2 > len(rest) {
		return nil
	}
	name := rest[:nameEnd]
	message := rest[nameEnd+2:]
	if name == "" || message == "" {
		return nil
	}
	return []Utterance{{Speaker: name, Text: message}}
}

var formats = map[string]Extractor{
	"plain":   PlainText,
	"irssi":   IRSSILog,
	"hexchat": HexChatLog,
	"kvirc":   KVIrcLog,
	"text":    ContinuousText,
}

// ByFormat looks up the extractor registered under name.
func ByFormat(name string) (Extractor, error) {
	extract, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("trainer: unknown log format %q (known: %s)",
			name, strings.Join(Formats(), ", "))
	}
	return extract, nil
}

// Formats lists the registered format names in stable order.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
