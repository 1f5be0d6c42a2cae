package nlp

import (
	"sort"
	"testing"
)

func TestWordTypePriorities(t *testing.T) {
	tests := []struct {
		typ  WordType
		want int
	}{
		{Noun, 80},
		{Root, 70},
		{Subject, 55},
		{Object, 50},
		{Verb, 40},
		{Adjective, 30},
		{Other, 0},
	}
	for _, tt := range tests {
		if got := tt.typ.Priority(); got != tt.want {
			t.Errorf("%v.Priority() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTypeFromRelation(t *testing.T) {
	tests := []struct {
		relation string
		want     WordType
	}{
		{"nsubj", Subject},
		{"csubj", Subject},
		{"subj", Subject},
		{"arg", Subject},
		{"dobj", Object},
		{"pobj", Object},
		{"ccomp", Object},
		{"xcomp", Object},
		{"obj", Object},
		{"amod", Adjective},
		{"nn", Noun},
		{"prt", Verb},
		{"root", Root},
		{"advmod", Other},
		{"", Other},
	}
	for _, tt := range tests {
		if got := TypeFromRelation(tt.relation); got != tt.want {
			t.Errorf("TypeFromRelation(%q) = %v, want %v", tt.relation, got, tt.want)
		}
	}
}

func TestCompare_OrdersByPriority(t *testing.T) {
	words := []Word{
		{Text: "it", Type: Other},
		{Text: "cat", Type: Noun},
		{Text: "ran", Type: Verb},
	}
	sort.Slice(words, func(i, j int) bool { return Compare(words[i], words[j]) < 0 })

	want := []string{"cat", "ran", "it"}
	for i, w := range words {
		if w.Text != want[i] {
			t.Errorf("position %d: got %q, want %q", i, w.Text, want[i])
		}
	}
}

func TestCompare_TieBreaksAreDeterministic(t *testing.T) {
	// Same priority: longer word ranks first, then lexicographic order.
	a := Word{Text: "longer", Type: Noun}
	b := Word{Text: "cat", Type: Noun}
	if Compare(a, b) >= 0 {
		t.Error("expected longer word to rank before shorter at equal priority")
	}

	c := Word{Text: "abc", Type: Noun}
	d := Word{Text: "xyz", Type: Noun}
	if Compare(c, d) >= 0 {
		t.Error("expected lexicographically smaller word to rank first on full tie")
	}
	if Compare(c, c) != 0 {
		t.Error("expected identical words to compare equal")
	}
}
