package hal

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxReplacementTries bounds the substitution attempts per nickname
// occurrence so an unresolvable character can never stall a reply.
const maxReplacementTries = 10

// confusables maps a lowercase letter to visually similar letters. One is
// substituted into a generated nickname so the named user's client does not
// ping them over a sentence they were never part of.
var confusables = map[rune][]rune{
	'a': {'e'},
	'b': {'d', 'p'},
	'c': {'q', 'k'},
	'd': {'b', 'p'},
	'e': {'a'},
	'f': {'b'},
	'g': {'q'},
	'h': {'k'},
	'i': {'u', 'y'},
	'j': {'y'},
	'k': {'c', 'q'},
	'l': {'w', 'r'},
	'm': {'n'},
	'n': {'m'},
	'o': {'u'},
	'p': {'b', 'd'},
	'q': {'c', 'k'},
	'r': {'l'},
	's': {'c', 'z'},
	't': {'p', 'd'},
	'u': {'o'},
	'v': {'f', 'w'},
	'w': {'v'},
	'x': {'z'},
	'y': {'i'},
	'z': {'c', 'x'},
}

// preventHighlighting corrupts accidental mentions of channel participants in
// a generated message. The sender and the bot may still be highlighted, as
// may anyone with a single-character name. Each occurrence gets one random
// character swapped for a look-alike (digits become a random digit); if the
// randomly chosen character has no look-alike, another position is tried up
// to maxReplacementTries times, after which the occurrence is left alone.
// Obfuscation is best-effort and never blocks the reply.
func preventHighlighting(message string, participants []string, sender, botNick string, rng *rand.Rand) string {
	senderLower := strings.ToLower(sender)
	botLower := strings.ToLower(botNick)

	for _, nick := range participants {
		nickLower := strings.ToLower(nick)
		if utf8.RuneCountInString(nick) <= 1 || strings.Contains(senderLower, nickLower) || strings.Contains(botLower, nickLower) {
			continue
		}

		// A case-folding regexp locates occurrences as byte ranges in the
		// message itself. Lowercasing a copy and searching that instead
		// would misalign the offsets on runes whose lowercase form has a
		// different encoded length.
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(nick))
		if err != nil {
			continue
		}

		tries := 0
		for tries <= maxReplacementTries {
			loc := re.FindStringIndex(message)
			if loc == nil {
				break
			}
			// Take the occurrence with its original capitalization.
			occurrence := []rune(message[loc[0]:loc[1]])

			pos := rng.Intn(len(occurrence))
			replacement, ok := confusableFor(occurrence[pos], rng)
			if !ok {
				tries++
				continue
			}

			occurrence[pos] = replacement
			message = message[:loc[0]] + string(occurrence) + message[loc[1]:]
			tries = 0
		}
	}

	return message
}

// confusableFor picks a look-alike for ch, preserving case. Digits map to a
// random digit; characters without an entry in the table report false.
func confusableFor(ch rune, rng *rand.Rand) (rune, bool) {
	if unicode.IsDigit(ch) {
		return rune('0' + rng.Intn(10)), true
	}

	options, ok := confusables[unicode.ToLower(ch)]
	if !ok {
		return 0, false
	}

	replacement := options[rng.Intn(len(options))]
	if unicode.IsUpper(ch) {
		replacement = unicode.ToUpper(replacement)
	}
	return replacement, true
}
