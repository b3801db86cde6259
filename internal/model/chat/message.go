package chat

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status tracks client-side delivery state. It never leaves the process:
// the wire protocol and the on-disk projection both omit it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Message is a single turn in a chat log. Fields other than Status are
// immutable after creation.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   int64        `json:"timestamp"`
	EmotionHint *EmotionHint `json:"emotionHint,omitempty"`
	Status      Status       `json:"-"`
}

// EmotionHint annotates an assistant reply with inferred emotional tone.
type EmotionHint struct {
	Primary       string     `json:"primary,omitempty"`
	Secondary     []string   `json:"secondary,omitempty"`
	Intensity     int        `json:"intensity"`
	Meta          *MetaStats `json:"meta,omitempty"`
	Snippet       string     `json:"snippet,omitempty"`
	Contradiction bool       `json:"contradiction"`
}

// MetaStats carries the slow-moving relationship scores behind a hint.
type MetaStats struct {
	Attraction int `json:"attraction"`
	Trust      int `json:"trust"`
	Anger      int `json:"anger"`
}
