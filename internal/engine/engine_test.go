package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emochi/emochi/internal/model/chat"
	"github.com/emochi/emochi/internal/service/llm"
)

type stubProvider struct {
	reply string
	err   error

	system string
	turns  []llm.Turn
	opts   llm.Options
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, system string, turns []llm.Turn, opts llm.Options) (string, error) {
	s.system = system
	s.turns = turns
	s.opts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type streamingStub struct {
	stubProvider
	chunks []string
}

func (s *streamingStub) Stream(ctx context.Context, system string, turns []llm.Turn, opts llm.Options) (<-chan string, error) {
	ch := make(chan string, len(s.chunks))
	for _, c := range s.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func newEngine(t *testing.T, p llm.Provider) *Engine {
	t.Helper()
	store, err := NewStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStateStore err: %v", err)
	}
	return New(store, llm.NewRegistry(p))
}

func TestGenerateReply(t *testing.T) {
	provider := &stubProvider{reply: "okay"}
	eng := newEngine(t, provider)

	resp, err := eng.GenerateReply(context.Background(), "c1", "okay", "", "")
	if err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}

	if resp.ChatID != "c1" || resp.Model != chat.DefaultModel {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Reply != "okay" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if resp.EmotionHint == nil || resp.EmotionHint.Primary != "neutral" {
		t.Fatalf("expected neutral hint, got %+v", resp.EmotionHint)
	}

	st, err := eng.State("c1")
	if err != nil {
		t.Fatalf("State err: %v", err)
	}
	if len(st.Messages) != 2 {
		t.Fatalf("transcript should hold user+assistant, got %d", len(st.Messages))
	}
	if st.Messages[0].Role != "user" || st.Messages[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %+v", st.Messages)
	}
	if st.LastEmotionHint == nil || st.Meta == nil {
		t.Fatal("hint and meta must persist on the state")
	}
}

func TestGenerateReplyIncludesCurrentUserTurn(t *testing.T) {
	provider := &stubProvider{reply: "okay"}
	eng := newEngine(t, provider)

	if _, err := eng.GenerateReply(context.Background(), "c1", "first message", "", ""); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}

	if len(provider.turns) == 0 {
		t.Fatal("provider received no turns")
	}
	last := provider.turns[len(provider.turns)-1]
	if last.Role != "user" || last.Content != "first message" {
		t.Fatalf("the pending user message must be the final turn, got %+v", last)
	}
}

func TestGenerateReplyProviderFailureIsApologetic(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream down")}
	eng := newEngine(t, provider)

	resp, err := eng.GenerateReply(context.Background(), "c1", "okay", "", "")
	if err != nil {
		t.Fatalf("provider failures must not fail the turn: %v", err)
	}
	if !strings.Contains(resp.Reply, "Sorry, I couldn't produce a response right now.") {
		t.Fatalf("expected apologetic fallback, got %q", resp.Reply)
	}

	st, err := eng.State("c1")
	if err != nil {
		t.Fatalf("State err: %v", err)
	}
	if len(st.Messages) != 2 {
		t.Fatalf("the apologetic turn still persists, got %d messages", len(st.Messages))
	}
}

func TestGenerateReplySystemPromptCarriesSettings(t *testing.T) {
	provider := &stubProvider{reply: "okay"}
	eng := newEngine(t, provider)

	intro := "a rainy rooftop"
	tags := []string{"Tsundere"}
	if _, err := eng.SetSettings("c1", chat.SettingsRequest{Intro: &intro, Tags: tags}); err != nil {
		t.Fatalf("SetSettings err: %v", err)
	}

	if _, err := eng.GenerateReply(context.Background(), "c1", "okay", "", ""); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}

	if !strings.Contains(provider.system, "a rainy rooftop") {
		t.Fatal("intro missing from system prompt")
	}
	if !strings.Contains(provider.system, "sharp retorts") {
		t.Fatal("tag behavior missing from system prompt")
	}
	if !strings.Contains(provider.system, "Character model: Vanilla") {
		t.Fatalf("model name missing from system prompt:\n%s", provider.system)
	}
}

func TestGenerateReplyEmotionContinuity(t *testing.T) {
	provider := &stubProvider{reply: "okay"}
	eng := newEngine(t, provider)

	if _, err := eng.GenerateReply(context.Background(), "c1", "shut up you idiot", "", ""); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}
	if _, err := eng.GenerateReply(context.Background(), "c1", "okay", "", ""); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}

	if !strings.Contains(provider.system, "INTERNAL EMOTION HINT: primary=angry") {
		t.Fatalf("second turn should see last turn's hint:\n%s", provider.system)
	}
}

func TestGenerateReplyModelHintReachesProvider(t *testing.T) {
	provider := &stubProvider{reply: "okay"}
	eng := newEngine(t, provider)

	if _, err := eng.GenerateReply(context.Background(), "c1", "okay", "", "llama3"); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}
	if provider.opts.Model != "llama3" {
		t.Fatalf("model hint should pass through, got %q", provider.opts.Model)
	}

	if _, err := eng.GenerateReply(context.Background(), "c1", "okay", "", ""); err != nil {
		t.Fatalf("GenerateReply err: %v", err)
	}
	if provider.opts.Model != "" {
		t.Fatalf("without a hint the provider picks its own default, got %q", provider.opts.Model)
	}
}

func TestStreamReply(t *testing.T) {
	provider := &streamingStub{chunks: []string{"hel", "lo ", " there"}}
	eng := newEngine(t, provider)

	var got []string
	resp, err := eng.StreamReply(context.Background(), "c1", "okay", "", "", func(c string) {
		got = append(got, c)
	})
	if err != nil {
		t.Fatalf("StreamReply err: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %v", got)
	}
	// The final reply is the styled full text, not the chunk concatenation.
	if resp.Reply != "hello there" {
		t.Fatalf("unexpected final reply %q", resp.Reply)
	}
}

func TestStreamReplyNonStreamingProvider(t *testing.T) {
	provider := &stubProvider{reply: "all at once"}
	eng := newEngine(t, provider)

	var got []string
	resp, err := eng.StreamReply(context.Background(), "c1", "okay", "", "", func(c string) {
		got = append(got, c)
	})
	if err != nil {
		t.Fatalf("StreamReply err: %v", err)
	}
	if len(got) != 1 || got[0] != "all at once" {
		t.Fatalf("non-streaming providers deliver one chunk, got %v", got)
	}
	if resp.Reply != "all at once" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
}

func TestSetModel(t *testing.T) {
	eng := newEngine(t, &stubProvider{reply: "okay"})

	st, err := eng.SetModel("c1", "Matcha")
	if err != nil {
		t.Fatalf("SetModel err: %v", err)
	}
	if st.Model != "Matcha" {
		t.Fatalf("model not applied: %s", st.Model)
	}

	reloaded, err := eng.State("c1")
	if err != nil {
		t.Fatalf("State err: %v", err)
	}
	if reloaded.Model != "Matcha" {
		t.Fatalf("model switch must persist, got %s", reloaded.Model)
	}
}

func TestSetModelUnknown(t *testing.T) {
	eng := newEngine(t, &stubProvider{reply: "okay"})

	_, err := eng.SetModel("c1", "Espresso")
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestSetSettingsSparseMerge(t *testing.T) {
	eng := newEngine(t, &stubProvider{reply: "okay"})

	intro := "a quiet tavern"
	if _, err := eng.SetSettings("c1", chat.SettingsRequest{Intro: &intro, Tags: []string{"Flirty"}}); err != nil {
		t.Fatalf("SetSettings err: %v", err)
	}

	welcome := "Oh, it's you again."
	st, err := eng.SetSettings("c1", chat.SettingsRequest{Welcome: &welcome})
	if err != nil {
		t.Fatalf("SetSettings err: %v", err)
	}

	if st.Intro != "a quiet tavern" {
		t.Fatalf("nil fields must not clobber earlier values, intro=%q", st.Intro)
	}
	if st.Welcome != "Oh, it's you again." {
		t.Fatalf("welcome not applied: %q", st.Welcome)
	}
	if len(st.Tags) != 1 || st.Tags[0] != "Flirty" {
		t.Fatalf("tags lost on merge: %v", st.Tags)
	}
}

func TestStyleRewrite(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		model string
		want  string
	}{
		{"strawberry blush", "She looks up", "Strawberry", "She looks up. *she blushes softly.*"},
		{"strawberry keeps punctuation", "Really?", "Strawberry", "Really? *she blushes softly.*"},
		{"chocolate voice", "Come closer.", "Chocolate", "Come closer. *his voice low and steady.*"},
		{"vanilla short first line", "line one\nline two", "Vanilla Short", "line one"},
		{"whitespace collapse", "too    many  spaces", "Vanilla", "too many spaces"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := styleRewrite(tc.raw, tc.model); got != tc.want {
				t.Fatalf("styleRewrite(%q, %s) = %q, want %q", tc.raw, tc.model, got, tc.want)
			}
		})
	}
}

func TestHistoryTurnsWindow(t *testing.T) {
	var msgs []StateMessage
	for i := 0; i < historyWindow+10; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs = append(msgs, StateMessage{Role: role, Content: "turn"})
	}

	turns := historyTurns(msgs)
	if len(turns) != historyWindow {
		t.Fatalf("expected window of %d turns, got %d", historyWindow, len(turns))
	}
}
