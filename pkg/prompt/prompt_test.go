package prompt

import (
	"strings"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input string
		want  Answer
	}{
		{"y", AnswerYes},
		{"Y", AnswerYes},
		{"ye", AnswerYes},
		{"yes", AnswerYes},
		{"YES", AnswerYes},
		{"s", AnswerYes},
		{"si", AnswerYes},
		{"sí", AnswerYes},
		{"Sí", AnswerYes},
		{"  yes \n", AnswerYes},
		{"n", AnswerNo},
		{"N", AnswerNo},
		{"no", AnswerNo},
		{"NO", AnswerNo},
		{"", AnswerUnknown},
		{"maybe", AnswerUnknown},
		{"yess", AnswerUnknown},
		{"nope", AnswerUnknown},
		{"0", AnswerUnknown},
	}

	for _, tt := range tests {
		if got := ParseAnswer(tt.input); got != tt.want {
			t.Errorf("ParseAnswer(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConfirmUsesDefaultOnEmptyInput(t *testing.T) {
	var out strings.Builder
	p := NewIO(strings.NewReader("\n\n"), &out)

	got, err := p.Confirm("Proceed?", true)
	if err != nil || !got {
		t.Errorf("Confirm with default true = (%v, %v), want (true, nil)", got, err)
	}
	got, err = p.Confirm("Proceed?", false)
	if err != nil || got {
		t.Errorf("Confirm with default false = (%v, %v), want (false, nil)", got, err)
	}
	if !strings.Contains(out.String(), "[Y/n]") || !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("prompt hints missing from output: %q", out.String())
	}
}

func TestConfirmParsesReply(t *testing.T) {
	p := NewIO(strings.NewReader("no\nsí\n"), &strings.Builder{})

	if got, _ := p.Confirm("Proceed?", true); got {
		t.Error("explicit no overridden by default")
	}
	if got, _ := p.Confirm("Proceed?", false); !got {
		t.Error("affirmative reply not recognized")
	}
}

func TestConfirmLoopReprompts(t *testing.T) {
	var out strings.Builder
	p := NewIO(strings.NewReader("maybe\nkinda\nyes\n"), &out)

	got, err := p.ConfirmLoop("Run the smoke test?")
	if err != nil || !got {
		t.Fatalf("ConfirmLoop = (%v, %v), want (true, nil)", got, err)
	}
	if got := strings.Count(out.String(), "Please answer yes or no."); got != 2 {
		t.Errorf("re-prompt notice printed %d times, want 2", got)
	}
}

func TestConfirmLoopReadError(t *testing.T) {
	p := NewIO(strings.NewReader("garbage"), &strings.Builder{})

	// The only line has no newline and is unrecognizable; the next read
	// hits EOF with nothing buffered.
	if _, err := p.ConfirmLoop("Proceed?"); err == nil {
		t.Fatal("ConfirmLoop = nil error on exhausted input")
	}
}

func TestAssume(t *testing.T) {
	yes := Assume(true)
	if got, _ := yes.Confirm("anything", false); !got {
		t.Error("Assume(true).Confirm = false")
	}
	if got, _ := yes.ConfirmLoop("anything"); !got {
		t.Error("Assume(true).ConfirmLoop = false")
	}
	no := Assume(false)
	if got, _ := no.Confirm("anything", true); got {
		t.Error("Assume(false).Confirm = true")
	}
}
