// Package nlp ranks the words of a phrase by how promising they are as the
// focus of a generated reply. Grammatical analysis is delegated to a Parser
// implementation; the ranking itself is a fixed priority per word class.
package nlp

import "strings"

// WordType is the broad grammatical class assigned to a word. The classes are
// coarser than most NLP tag sets but suffice for picking a focus word.
type WordType int

const (
	Other     WordType = iota // unclassified, lowest priority
	Adjective                 // amod
	Verb                      // prt
	Object                    // obj, dobj, pobj, ccomp, xcomp
	Subject                   // arg, subj, nsubj, csubj
	Root                      // root of the dependency tree
	Noun                      // nn
)

// Priority returns the numeric rank of the word type. Higher is more
// interesting as a focus word. The values are tuned, not derived.
func (t WordType) Priority() int {
	switch t {
	case Noun:
		return 80
	case Root:
		return 70
	case Subject:
		return 55
	case Object:
		return 50
	case Verb:
		return 40
	case Adjective:
		return 30
	default:
		return 0
	}
}

func (t WordType) String() string {
	switch t {
	case Noun:
		return "noun"
	case Root:
		return "root"
	case Subject:
		return "subject"
	case Object:
		return "object"
	case Verb:
		return "verb"
	case Adjective:
		return "adjective"
	default:
		return "other"
	}
}

// relationTypes maps dependency relation short tags onto word types,
// following the Stanford typed-dependency classification.
var relationTypes = map[string]WordType{
	"arg":   Subject,
	"subj":  Subject,
	"nsubj": Subject,
	"csubj": Subject,

	"obj":   Object,
	"dobj":  Object,
	"pobj":  Object,
	"ccomp": Object,
	"xcomp": Object,

	"amod": Adjective,
	"nn":   Noun,
	"prt":  Verb,

	"root": Root,
}

// TypeFromRelation converts a dependency relation tag to its word type.
// Unknown tags map to Other.
func TypeFromRelation(relation string) WordType {
	if t, ok := relationTypes[relation]; ok {
		return t
	}
	return Other
}

// Word pairs a surface string with its derived word type.
type Word struct {
	Text string
	Type WordType
}

// Compare orders words for ranking: higher priority first, then longer words,
// then lexicographic order. It returns a negative value when a ranks before b,
// zero when equal, positive otherwise.
//
// The length and lexicographic tie-breaks make the ordering total, so equal-
// priority words sort deterministically.
func Compare(a, b Word) int {
	if d := b.Type.Priority() - a.Type.Priority(); d != 0 {
		return d
	}
	if d := len(b.Text) - len(a.Text); d != 0 {
		return d
	}
	return strings.Compare(a.Text, b.Text)
}
