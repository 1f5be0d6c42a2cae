package nlp

import (
	"log/slog"
	"sort"
	"strings"
)

// Dependency is a single typed grammatical dependency produced by a Parser:
// the dependent token's surface string and the short relation tag linking it
// to its head.
type Dependency struct {
	Token    string
	Relation string
}

// Parser extracts typed dependencies from a sentence. Implementations may be
// arbitrarily sophisticated; the Analyzer only consumes the relation tags.
type Parser interface {
	Parse(text string) ([]Dependency, error)
}

// Analyzer turns raw phrases into ranked word lists using an injected Parser.
type Analyzer struct {
	parser Parser
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer around the given parser. If logger is nil,
// the default slog logger is used.
func NewAnalyzer(parser Parser, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{parser: parser, logger: logger}
}

// AnalyzePhrase extracts the words of the phrase and returns them sorted by
// descending rank (see Compare). Degenerate input — an empty phrase, a parser
// failure, a sentence with no rankable words — yields an empty list, never an
// error: downstream logic treats "no words" as a valid low-information state.
func (a *Analyzer) AnalyzePhrase(phrase string) []Word {
	if strings.TrimSpace(phrase) == "" {
		return nil
	}

	deps, err := a.parser.Parse(phrase)
	if err != nil {
		a.logger.Debug("phrase analysis failed", "err", err)
		return nil
	}

	words := make([]Word, 0, len(deps))
	for _, d := range deps {
		words = append(words, Word{Text: d.Token, Type: TypeFromRelation(d.Relation)})
	}

	sort.SliceStable(words, func(i, j int) bool {
		return Compare(words[i], words[j]) < 0
	})

	return words
}
