package emotion

import (
	"testing"

	"github.com/emochi/emochi/internal/model/chat"
)

func TestBuildHintNeutralBaseline(t *testing.T) {
	hint := BuildHint(nil, "okay", "okay", nil, nil)

	if hint.Primary != "neutral" {
		t.Fatalf("expected neutral primary, got %q", hint.Primary)
	}
	if hint.Intensity != 0 {
		t.Fatalf("expected zero intensity, got %d", hint.Intensity)
	}
	if hint.Secondary == nil || len(hint.Secondary) != 0 {
		t.Fatalf("secondary must be an empty slice, got %v", hint.Secondary)
	}
	if hint.Meta == nil || hint.Meta.Trust != 20 {
		t.Fatalf("trust must default to 20 on a fresh chat, got %+v", hint.Meta)
	}
	if hint.Snippet != "" {
		t.Fatalf("neutral turns carry no snippet, got %q", hint.Snippet)
	}
	if hint.Contradiction {
		t.Fatal("no contradiction expected")
	}
}

func TestBuildHintAngerTriggers(t *testing.T) {
	hint := BuildHint(nil, "shut up you idiot", "...", nil, nil)

	if hint.Primary != "angry" {
		t.Fatalf("expected angry primary, got %q", hint.Primary)
	}
	// "shut up" weighs 2, "idiot" weighs 1: intensity 3*6, anger 3*10.
	if hint.Intensity != 18 {
		t.Fatalf("expected intensity 18, got %d", hint.Intensity)
	}
	if hint.Meta.Anger != 30 {
		t.Fatalf("expected anger 30, got %d", hint.Meta.Anger)
	}
}

func TestBuildHintIntensityDecay(t *testing.T) {
	prev := &chat.EmotionHint{Primary: "angry", Intensity: 100}
	hint := BuildHint(prev, "okay", "okay", nil, nil)

	if hint.Intensity != 85 {
		t.Fatalf("intensity should decay to 85, got %d", hint.Intensity)
	}
	if hint.Primary != "neutral" {
		t.Fatalf("primary does not persist across turns, got %q", hint.Primary)
	}
}

func TestBuildHintTagAdjustments(t *testing.T) {
	cases := []struct {
		name      string
		tags      []string
		intensity int
		primary   string
	}{
		{"cold dampens", []string{"Cold"}, 0, "neutral"},
		{"flirty boosts", []string{"Flirty"}, 6, "neutral"},
		{"taboo boosts", []string{"Taboo"}, 8, "neutral"},
		{"yandere defaults jealous", []string{"Yandere"}, 10, "jealous"},
		{"tsundere defaults conflicted", []string{"Tsundere"}, 0, "conflicted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hint := BuildHint(nil, "okay", "okay", tc.tags, nil)
			if hint.Intensity != tc.intensity {
				t.Fatalf("expected intensity %d, got %d", tc.intensity, hint.Intensity)
			}
			if hint.Primary != tc.primary {
				t.Fatalf("expected primary %q, got %q", tc.primary, hint.Primary)
			}
		})
	}
}

func TestBuildHintContradiction(t *testing.T) {
	// Heavy affection and flirty triggers push attraction past 20; the bot's
	// refusal then reads as push-pull.
	hint := BuildHint(nil, "i love you, i adore you, kiss me, i want you", "No, never.", nil, nil)

	if hint.Meta.Attraction != 32 {
		t.Fatalf("expected attraction 32, got %d", hint.Meta.Attraction)
	}
	if !hint.Contradiction {
		t.Fatal("refusal against high attraction must flag a contradiction")
	}
	if hint.Primary != "soft" {
		t.Fatalf("affection wins the tie against flirty, got %q", hint.Primary)
	}
	if hint.Snippet == "" {
		t.Fatal("soft primary should pick a reaction snippet")
	}
}

func TestBuildHintMetaAccumulation(t *testing.T) {
	meta := &chat.MetaStats{Attraction: 40, Trust: 60, Anger: 10}
	hint := BuildHint(nil, "i hate you", "...", nil, meta)

	// hate weighs 1: anger 1*10 + 10 carried over.
	if hint.Meta.Anger != 20 {
		t.Fatalf("expected anger 20, got %d", hint.Meta.Anger)
	}
	// Attraction halves when unfed: 0*8 + 40/2.
	if hint.Meta.Attraction != 20 {
		t.Fatalf("expected attraction 20, got %d", hint.Meta.Attraction)
	}
	if hint.Meta.Trust != 60 {
		t.Fatalf("trust should carry over, got %d", hint.Meta.Trust)
	}
}

func TestScoreTriggersWeighsLongKeywords(t *testing.T) {
	scores := scoreTriggers("I miss you so much")
	// "miss you" is 8 characters: weight 2.
	if scores["affection"] != 2 {
		t.Fatalf("expected affection score 2, got %d", scores["affection"])
	}
}

func TestDominantTieBreakIsDeterministic(t *testing.T) {
	scores := map[string]int{"flirty": 2, "affection": 2, "anger": 1}
	for i := 0; i < 50; i++ {
		if got := dominant(scores); got != "affection" {
			t.Fatalf("tie must resolve alphabetically, got %q", got)
		}
	}
}

func TestDominantAllZero(t *testing.T) {
	if got := dominant(map[string]int{"anger": 0}); got != "" {
		t.Fatalf("zero scores have no dominant bucket, got %q", got)
	}
}
