package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"stock-signal-bot/internal/types"
)

type fakeChat struct {
	reply *schema.Message
	err   error
	got   []*schema.Message
	opts  *model.Options
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	return f.reply, f.err
}

func TestChatGeneratorPassesPromptAndOptions(t *testing.T) {
	fc := &fakeChat{reply: schema.AssistantMessage("  AAPL looks strong\n", nil)}
	g := NewChatGenerator("fake", fc)

	out, err := g.Generate(context.Background(), "list tickers", types.GenConfig{MaxTokens: 150, Temperature: 0.7})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "AAPL looks strong" {
		t.Errorf("unexpected output %q", out)
	}
	if len(fc.got) != 1 || fc.got[0].Role != schema.User || fc.got[0].Content != "list tickers" {
		t.Errorf("unexpected messages %+v", fc.got)
	}
	if fc.opts.MaxTokens == nil || *fc.opts.MaxTokens != 150 {
		t.Errorf("max tokens not passed: %+v", fc.opts.MaxTokens)
	}
	if fc.opts.Temperature == nil || *fc.opts.Temperature != 0.7 {
		t.Errorf("temperature not passed: %+v", fc.opts.Temperature)
	}
}

func TestChatGeneratorErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		want types.Kind
	}{
		{context.DeadlineExceeded, types.KindTransient},
		{errors.New("error, status code: 429, message: rate limited"), types.KindTransient},
		{errors.New("error, status code: 401, message: invalid api key"), types.KindConfig},
		{errors.New("error, status code: 400, message: bad request"), types.KindPolicy},
	}
	for _, tt := range tests {
		_, err := NewChatGenerator("fake", &fakeChat{err: tt.err}).Generate(context.Background(), "p", types.GenConfig{})
		if got := types.KindOf(err); got != tt.want {
			t.Errorf("%v: got %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestChatGeneratorNilReply(t *testing.T) {
	out, err := NewChatGenerator("fake", &fakeChat{}).Generate(context.Background(), "p", types.GenConfig{})
	if err != nil || out != "" {
		t.Errorf("expected empty output, got %q, %v", out, err)
	}
}
