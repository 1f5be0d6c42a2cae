package nlp

import (
	"fmt"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// ProseParser is the default Parser implementation, backed by the prose
// part-of-speech tagger. It approximates typed dependencies from Penn
// Treebank tags: the first verb of the sentence is treated as the root,
// nouns before it as subjects and after it as objects, and adjectives map
// to modifiers. This is deliberately shallow — the ranking only needs the
// broad word classes, not an accurate parse tree.
type ProseParser struct{}

// NewProseParser creates the default prose-backed parser.
func NewProseParser() *ProseParser {
	return &ProseParser{}
}

// Parse tags the text and emits one dependency per word token.
func (p *ProseParser) Parse(text string) ([]Dependency, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nlp: tag phrase: %w", err)
	}

	var tokens []prose.Token
	for _, tok := range doc.Tokens() {
		if hasLetterOrDigit(tok.Text) {
			tokens = append(tokens, tok)
		}
	}

	deps := make([]Dependency, 0, len(tokens))
	seenVerb := false
	for i, tok := range tokens {
		relation := ""
		switch {
		case strings.HasPrefix(tok.Tag, "VB"):
			if !seenVerb {
				relation = "root"
				seenVerb = true
			} else {
				relation = "prt"
			}
		case strings.HasPrefix(tok.Tag, "NN"):
			// A noun directly followed by another noun is a compound
			// modifier; otherwise its role depends on which side of
			// the main verb it sits on.
			switch {
			case i+1 < len(tokens) && strings.HasPrefix(tokens[i+1].Tag, "NN"):
				relation = "nn"
			case seenVerb:
				relation = "dobj"
			default:
				relation = "nsubj"
			}
		case strings.HasPrefix(tok.Tag, "JJ"):
			relation = "amod"
		case strings.HasPrefix(tok.Tag, "PRP"):
			relation = "subj"
		}

		deps = append(deps, Dependency{Token: tok.Text, Relation: relation})
	}

	return deps, nil
}

// hasLetterOrDigit reports whether s contains at least one letter or digit,
// filtering out pure punctuation tokens.
func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
