package trainer

import (
	"context"
	"strings"
	"testing"
)

type recordingLearner struct {
	sentences []string
	names     []string
}

func (l *recordingLearner) AddSentence(message string) {
	l.sentences = append(l.sentences, message)
}

func (l *recordingLearner) AddPersonName(name string) {
	l.names = append(l.names, name)
}

func TestPlainText(t *testing.T) {
	if got := PlainText("  hello there  "); len(got) != 1 || got[0].Text != "hello there" || got[0].Speaker != "" {
		t.Errorf("PlainText = %v", got)
	}
	if got := PlainText("   "); got != nil {
		t.Errorf("expected blank line dropped, got %v", got)
	}
}

func TestIRSSILog(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		speaker string
		text    string
	}{
		{"operator", "09:41 <@mcnulty> down in the hole", "mcnulty", "down in the hole"},
		{"regular", "09:42 < bubbles> thin line between heaven and here", "bubbles", "thin line between heaven and here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IRSSILog(tt.line)
			if len(got) != 1 {
				t.Fatalf("IRSSILog(%q) = %v", tt.line, got)
			}
			if got[0].Speaker != tt.speaker || got[0].Text != tt.text {
				t.Errorf("got %+v, want speaker %q text %q", got[0], tt.speaker, tt.text)
			}
		})
	}

	if got := IRSSILog("09:43 -!- bubbles has quit"); got != nil {
		t.Errorf("expected status line dropped, got %v", got)
	}
}

func TestHexChatLog(t *testing.T) {
	got := HexChatLog("Jan 03 09:41:22 <omar> all in the game")
	if len(got) != 1 || got[0].Speaker != "omar" || got[0].Text != "all in the game" {
		t.Errorf("HexChatLog = %v", got)
	}
	if got := HexChatLog("Jan 03 09:41:30 * omar waves"); got != nil {
		t.Errorf("expected action line dropped, got %v", got)
	}
}

func TestKVIrcLog(t *testing.T) {
	got := KVIrcLog("[09:41] <@kima> natural police")
	if len(got) != 1 || got[0].Speaker != "kima" || got[0].Text != "natural police" {
		t.Errorf("KVIrcLog = %v", got)
	}

	// Color-coded variant: control codes are stripped before matching.
	got = KVIrcLog("[09:42] <\x02daniels\x02> chain of command")
	if len(got) != 1 || got[0].Speaker != "daniels" || got[0].Text != "chain of command" {
		t.Errorf("KVIrcLog colored = %v", got)
	}

	if got := KVIrcLog("[09:43] daniels joined #western"); got != nil {
		t.Errorf("expected non-chat line dropped, got %v", got)
	}
}

func TestContinuousText(t *testing.T) {
	got := ContinuousText("The king stay the king. Everything else is everything else! Right?")
	want := []string{
		"The king stay the king.",
		"Everything else is everything else!",
		"Right?",
	}
	if len(got) != len(want) {
		t.Fatalf("ContinuousText = %v, want %d sentences", got, len(want))
	}
	for i := range got {
		if got[i].Text != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, got[i].Text, want[i])
		}
		if got[i].Speaker != "" {
			t.Errorf("sentence %d: unexpected speaker %q", i, got[i].Speaker)
		}
	}
}

func TestTrain_FeedsLearner(t *testing.T) {
	log := strings.Join([]string{
		"09:41 <@mcnulty> down in the hole",
		"09:42 -!- bubbles has joined",
		"09:43 < bubbles> got the WMD",
	}, "\n")

	learner := &recordingLearner{}
	tr := New(IRSSILog, nil)
	if err := tr.Train(context.Background(), learner, strings.NewReader(log)); err != nil {
		t.Fatalf("Train: %v", err)
	}

	if len(learner.sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %v", learner.sentences)
	}
	if len(learner.names) != 2 || learner.names[0] != "mcnulty" || learner.names[1] != "bubbles" {
		t.Errorf("expected both speakers learned, got %v", learner.names)
	}
}

func TestTrain_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(PlainText, nil)
	err := tr.Train(ctx, &recordingLearner{}, strings.NewReader("one line\n"))
	if err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestByFormat(t *testing.T) {
	for _, name := range Formats() {
		if _, err := ByFormat(name); err != nil {
			t.Errorf("ByFormat(%q): %v", name, err)
		}
	}
	if _, err := ByFormat("clay-tablet"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
