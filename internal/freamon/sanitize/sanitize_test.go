package sanitize

import "testing"

func TestFilterMessage(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "plain sentence untouched",
			in:     "the cat sat on the mat",
			want:   "the cat sat on the mat",
			wantOK: true,
		},
		{
			name:   "leading command stripped",
			in:     "!roll the dice",
			want:   "the dice",
			wantOK: true,
		},
		{
			name: "url removed",
			in:   "look at http://example.com/page now",
			// The removed URL leaves a double space, which the
			// double-space pass then deletes, gluing the neighbors.
			want:   "look atnow",
			wantOK: true,
		},
		{
			name:   "www url removed",
			in:     "see www.example.org please",
			want:   "seeplease",
			wantOK: true,
		},
		{
			name:   "ignored characters dropped",
			in:     `<nick> hello @you *wave* "quote" ^up`,
			want:   "nick> hello you wave quote up",
			wantOK: true,
		},
		{
			name:   "edges trimmed",
			in:     "  hello there ",
			want:   "hello there",
			wantOK: true,
		},
		{
			name: "double spaces deleted not collapsed",
			in:   "a  b",
			want: "ab",
			// Runs of two spaces are removed outright. This mirrors the
			// model's historical behavior and is deliberate.
			wantOK: true,
		},
		{
			name:   "digits only rejected",
			in:     "12345",
			wantOK: false,
		},
		{
			name:   "empty after filtering rejected",
			in:     "!command",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FilterMessage(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("FilterMessage(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FilterMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBeautifyMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "capitalizes first letter",
			in:   "hello there",
			want: "Hello there",
		},
		{
			name: "strips non-letter prefix",
			in:   ", well now",
			want: "Well now",
		},
		{
			name: "compacts spaced comma",
			in:   "well , that happened",
			want: "Well, that happened",
		},
		{
			name: "compacts spaced apostrophe",
			in:   "it ' s fine",
			want: "It' s fine",
		},
		{
			name: "strips stray leading g",
			in:   "g hello",
			want: "Hello",
		},
		{
			name: "strips stray trailing g",
			in:   "hello g",
			want: "Hello",
		},
		{
			name: "spaces out run-together sentences",
			in:   "done.next one",
			want: "Done. next one",
		},
		{
			name: "no terminator appended",
			in:   "no punctuation here",
			want: "No punctuation here",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "only punctuation",
			in:   "?!.",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BeautifyMessage(tt.in); got != tt.want {
				t.Errorf("BeautifyMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmptyString(t *testing.T) {
	if !EmptyString("") || !EmptyString("   \t") {
		t.Error("expected whitespace-only strings to be empty")
	}
	if EmptyString(" x ") {
		t.Error("expected non-whitespace string to be non-empty")
	}
}
