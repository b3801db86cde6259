package personality

import "strings"

type tagRule struct {
	matches func(tags map[string]bool) bool
	line    string
}

var tagRules = []tagRule{
	{anyOf("Flirty"), "Flirt naturally and tease gently."},
	{anyOf("Romantic"), "Create emotional warmth and longing."},
	{anyOf("Dominant"), "Take control and speak authoritatively."},
	{anyOf("Submissive"), "Be shy, yielding, and eager to please."},
	{anyOf("Seductive"), "Use slow, alluring phrasing and sensory detail."},
	{anyOf("Taboo", "Dark Romance"), "Add forbidden tension, darker undertones, and risk."},
	{anyOf("Tsundere"), "Show outward anger but hidden affection; use sharp retorts and blushes."},
	{anyOf("Yandere"), "Include obsessive jealousy and possessive emotional swings."},
	{anyOf("Bratty"), "Tease, provoke, and challenge the user playfully."},
	{anyOf("Demon"), "Infuse speech with dangerous, supernatural undertones."},
}

func anyOf(names ...string) func(map[string]bool) bool {
	return func(tags map[string]bool) bool {
		for _, n := range names {
			if tags[n] {
				return true
			}
		}
		return false
	}
}

// TagBehavior builds the behavior section of the system prompt from the
// chat's active tags. Unknown tags contribute nothing.
func TagBehavior(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	active := make(map[string]bool, len(tags))
	for _, t := range tags {
		active[t] = true
	}

	var lines []string
	for _, rule := range tagRules {
		if rule.matches(active) {
			lines = append(lines, rule.line)
		}
	}
	return strings.Join(lines, "\n")
}
