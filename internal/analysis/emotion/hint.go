// Package emotion infers the structured hint attached to assistant replies:
// a primary label, an intensity that decays across turns, slow-moving
// relationship scores, and an optional reaction snippet.
package emotion

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/emochi/emochi/internal/model/chat"
)

const (
	intensityDecay = 0.85
	minIntensity   = 0
	maxIntensity   = 100
)

var triggers = map[string][]string{
	"affection": {"love", "like you", "i care", "miss you", "cherish", "adore"},
	"anger":     {"shut up", "stupid", "idiot", "what the hell", "hate", "screw you"},
	"fear":      {"please stop", "don't", "no", "help", "scared"},
	"flirty":    {"come here", "kiss", "touch", "want", "seduce", "hot"},
	"tease":     {"make me", "try me", "dare you", "you wish"},
	"curiosity": {"why", "how", "what do you mean", "explain"},
	"jealousy":  {"who is that", "with who", "are you with"},
	"sad":       {"sad", "cry", "tears", "sorry", "alone"},
}

// primaryByTrigger maps the dominant trigger bucket to the hint label the
// client renders.
var primaryByTrigger = map[string]string{
	"affection": "soft",
	"flirty":    "aroused",
	"tease":     "conflicted",
	"anger":     "angry",
	"fear":      "nervous",
	"curiosity": "curious",
	"jealousy":  "jealous",
	"sad":       "sad",
}

var reactionSnippets = map[string][]string{
	"soft": {
		"*Her voice softens, a hush beneath the words.*",
		"*A small smile tugs at the corner of her mouth.*",
	},
	"angry": {
		"*Her jaw tightens; a flash of hurt passes across her face.*",
		"*She snaps—but the brightness in her eyes betrays something fragile.*",
	},
	"nervous": {
		"*Her fingers fidget at her sleeve; she looks away for a beat.*",
		"*A tiny tremor in her breath betrays the calm in her voice.*",
	},
	"conflicted": {
		"*Her words are sharp, but her eyes linger too long.*",
		"*She says no—and yet her posture betrays doubt.*",
	},
	"aroused": {
		"*Her breath stutters—quick and shallow.*",
		"*Heat pools low, barely concealed.*",
	},
}

var (
	refusalPattern   = regexp.MustCompile(`\b(no|don't|can't|not|never)\b`)
	dismissalPattern = regexp.MustCompile(`\b(leave|alone|stop)\b`)
)

// BuildHint derives the next emotion hint from both sides of the latest
// turn. prev carries last turn's hint for intensity decay; meta carries the
// chat's accumulated relationship scores (nil on a fresh chat).
func BuildHint(prev *chat.EmotionHint, userText, botText string, tags []string, meta *chat.MetaStats) *chat.EmotionHint {
	userScores := scoreTriggers(userText)
	botScores := scoreTriggers(botText)

	combined := make(map[string]int, len(triggers))
	total := 0
	for name := range triggers {
		combined[name] = userScores[name] + botScores[name]
		total += combined[name]
	}

	prevIntensity := 0
	if prev != nil {
		prevIntensity = prev.Intensity
	}
	intensity := clamp(float64(total*6) + float64(prevIntensity)*intensityDecay)

	active := make(map[string]bool, len(tags))
	for _, t := range tags {
		active[t] = true
	}
	if active["Taboo"] || active["Dark Romance"] {
		intensity = clamp(float64(intensity + 8))
	}
	if active["Flirty"] || active["Seductive"] {
		intensity = clamp(float64(intensity + 6))
	}
	if active["Cold"] {
		intensity = clamp(float64(intensity - 6))
	}

	primary := primaryByTrigger[dominant(combined)]
	if active["Yandere"] {
		if primary == "" {
			primary = "jealous"
		}
		intensity = clamp(float64(intensity + 10))
	}
	if active["Tsundere"] && primary == "" {
		primary = "conflicted"
	}

	prevAttraction, prevAnger, prevTrust := 0, 0, 20
	if meta != nil {
		prevAttraction = meta.Attraction
		prevAnger = meta.Anger
		prevTrust = meta.Trust
	}
	stats := &chat.MetaStats{
		Attraction: clamp(float64((combined["flirty"]+combined["affection"])*8 + prevAttraction/2)),
		Trust:      clamp(float64(prevTrust)),
		Anger:      clamp(float64(combined["anger"]*10 + prevAnger)),
	}

	snippet := ""
	if pool := reactionSnippets[primary]; len(pool) > 0 {
		snippet = pool[rand.Intn(len(pool))]
	}

	contradiction := false
	if botText != "" {
		lowered := strings.ToLower(botText)
		if refusalPattern.MatchString(lowered) && stats.Attraction > 20 {
			contradiction = true
		}
		if dismissalPattern.MatchString(lowered) && stats.Trust > 40 {
			contradiction = true
		}
	}

	if primary == "" {
		primary = "neutral"
	}

	return &chat.EmotionHint{
		Primary:       primary,
		Secondary:     []string{},
		Intensity:     intensity,
		Meta:          stats,
		Snippet:       snippet,
		Contradiction: contradiction,
	}
}

// scoreTriggers weights each bucket by its keyword hits; longer keywords
// score higher.
func scoreTriggers(text string) map[string]int {
	lowered := strings.ToLower(text)
	scores := make(map[string]int, len(triggers))
	for name, words := range triggers {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				weight := len(w) / 3
				if weight < 1 {
					weight = 1
				}
				scores[name] += weight
			}
		}
	}
	return scores
}

func dominant(scores map[string]int) string {
	best, bestScore := "", 0
	for name, s := range scores {
		if s > bestScore || (s == bestScore && s > 0 && name < best) {
			best, bestScore = name, s
		}
	}
	if bestScore == 0 {
		return ""
	}
	return best
}

func clamp(x float64) int {
	if x < minIntensity {
		return minIntensity
	}
	if x > maxIntensity {
		return maxIntensity
	}
	return int(x)
}
