package chat

// PersonalityModels lists the selectable character voices. The client sends
// them as free-form strings; only the backend validates against this set.
var PersonalityModels = []string{
	"Vanilla", "Vanilla Short", "Matcha", "Strawberry", "Chocolate", "Peach",
	"Mint", "Blueberry", "Blackberry", "Rainbow", "Unicorn", "Sage",
}

// BehaviorTags lists the selectable behavior traits.
var BehaviorTags = []string{
	"Flirty", "Romantic", "Dominant", "Submissive", "Seductive", "Taboo",
	"Dark Romance", "Tsundere", "Yandere", "Bratty", "Demon", "Cold",
}

// DefaultModel is the voice a fresh chat starts with.
const DefaultModel = "Vanilla"
