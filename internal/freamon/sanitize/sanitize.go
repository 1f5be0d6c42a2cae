// Package sanitize deals with the idiosyncrasies of online chat text on both
// sides of the model: it scrubs incoming messages into something worth
// learning from, and polishes generated output into something worth sending.
//
// URLs are stripped because any mutation of a URL almost certainly produces an
// invalid one, so they carry no statistical value. Characters like < and @
// tend to reappear at random in generated text, so they are dropped too.
// Leading !word segments are chat commands, not language.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	commandRe = regexp.MustCompile(`!\w*`)
	urlRe     = regexp.MustCompile(`(?i)\b(([\w-]+://?|www[.])[^\s()<>]+(?:\([\w\d]+\)|([^[:punct:]\s]|/?)))`)
	digitsRe  = regexp.MustCompile(`^\d*$`)
	spaceRe   = regexp.MustCompile(`^\s*$`)

	leadingNonLetterRe = regexp.MustCompile(`^[^a-zA-Z]*`)
	leadingStrayG      = regexp.MustCompile(`^g `)
	trailingStrayG     = regexp.MustCompile(` g$`)
	runTogetherRe      = regexp.MustCompile(`([.!?,])([a-zA-Z])`)
)

// ignored are characters filtered from incoming messages entirely.
var ignored = []string{"<", "@", "*", "\"", "^"}

// reductions are over-spaced artifacts the model commonly produces. Each is
// compacted by trimming exactly its first character, repeatedly, until the
// pattern no longer occurs. Note the double-space entry: two spaces reduce to
// zero, not one. That matches the long-observed behavior of the model and is
// kept as-is.
var reductions = []string{" , ", " . ", " ' ", " g ", "  "}

// FilterMessage scrubs an incoming message before it reaches the model:
// !word command segments and URLs are removed, disruptive characters dropped,
// edges trimmed, and double-space runs deleted. Messages consisting only of
// digits carry no linguistic value; for those ok is false and the message
// should be discarded.
func FilterMessage(message string) (string, bool) {
	message = commandRe.ReplaceAllString(message, "")
	message = urlRe.ReplaceAllString(message, "")
	message = strings.TrimSpace(message)

	for _, ig := range ignored {
		message = strings.ReplaceAll(message, ig, "")
	}

	for strings.Contains(message, "  ") {
		message = strings.ReplaceAll(message, "  ", "")
	}

	if digitsRe.MatchString(message) {
		return "", false
	}

	return message, true
}

// BeautifyMessage makes a generated message presentable: the non-letter prefix
// is stripped, the first letter capitalized, over-spaced artifacts compacted,
// stray g tokens at either edge removed, and a space inserted after sentence
// punctuation that runs directly into the next word. No trailing terminator is
// appended.
func BeautifyMessage(message string) string {
	b := leadingNonLetterRe.ReplaceAllString(message, "")
	b = leadingStrayG.ReplaceAllString(b, "")
	if b == "" {
		return ""
	}

	r := []rune(b)
	r[0] = unicode.ToUpper(r[0])
	b = string(r)

	for _, reduction := range reductions {
		for strings.Contains(b, reduction) {
			b = strings.ReplaceAll(b, reduction, reduction[1:])
		}
	}

	b = trailingStrayG.ReplaceAllString(b, "")
	b = runTogetherRe.ReplaceAllString(b, "$1 $2")

	return b
}

// EmptyString reports whether s contains only whitespace.
func EmptyString(s string) bool {
	return spaceRe.MatchString(s)
}
