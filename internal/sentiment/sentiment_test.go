package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"stock-signal-bot/internal/types"
)

type fixedClassifier struct {
	label types.SentimentLabel
	err   error
}

func (f fixedClassifier) Classify(ctx context.Context, text string) (types.SentimentLabel, error) {
	return f.label, f.err
}

func TestGateOnlyPositivePasses(t *testing.T) {
	tests := []struct {
		label types.SentimentLabel
		want  bool
	}{
		{types.Positive, true},
		{types.Negative, false},
		{types.Neutral, false},
		{"mixed", false},
		{"", false},
	}
	for _, tt := range tests {
		ok, _, err := NewGate(fixedClassifier{label: tt.label}).Check(context.Background(), "text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok != tt.want {
			t.Errorf("label %q: got %v, want %v", tt.label, ok, tt.want)
		}
	}
}

func TestGateErrorFailsClosed(t *testing.T) {
	ok, label, err := NewGate(fixedClassifier{err: errors.New("down")}).Check(context.Background(), "text")
	if ok || err == nil || label != types.Neutral {
		t.Errorf("expected closed gate with error, got ok=%v label=%s err=%v", ok, label, err)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PerCycle, "PER_SYMBOL": PerSymbol, "off": Off} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("hourly"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

type echoGen struct {
	reply  string
	prompt string
}

func (g *echoGen) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	g.prompt = prompt
	return g.reply, nil
}

func TestLLMClassifier(t *testing.T) {
	tests := map[string]types.SentimentLabel{
		"POSITIVE":           types.Positive,
		" positive.\n":       types.Positive,
		"Negative sentiment": types.Negative,
		"LABEL_1":            types.Positive,
		"unsure":             types.Neutral,
		"":                   types.Neutral,
	}
	for reply, want := range tests {
		gen := &echoGen{reply: reply}
		got, err := NewLLMClassifier(gen).Classify(context.Background(), "AAPL beats estimates")
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if got != want {
			t.Errorf("reply %q: got %s, want %s", reply, got, want)
		}
		if !strings.Contains(gen.prompt, "AAPL beats estimates") {
			t.Errorf("prompt missing input text: %q", gen.prompt)
		}
	}
}

func TestLLMClassifierEmptyTextIsNeutral(t *testing.T) {
	gen := &echoGen{reply: "POSITIVE"}
	got, _ := NewLLMClassifier(gen).Classify(context.Background(), "   ")
	if got != types.Neutral || gen.prompt != "" {
		t.Errorf("expected NEUTRAL without a call, got %s (prompt %q)", got, gen.prompt)
	}
}

func TestLLMClassifierTruncatesOnRuneBoundary(t *testing.T) {
	gen := &echoGen{reply: "NEUTRAL"}
	text := strings.Repeat("€", maxClassifyInput)
	if _, err := NewLLMClassifier(gen).Classify(context.Background(), text); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !utf8.ValidString(gen.prompt) {
		t.Error("prompt contains a split rune")
	}
	if got := truncate(text, maxClassifyInput); len(got) > maxClassifyInput || len(got)%len("€") != 0 {
		t.Errorf("truncate kept %d bytes", len(got))
	}
}
