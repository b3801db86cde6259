package chat

// Wire types shared by the HTTP client adapter and the backend handlers.
// Field names follow the REST contract, so snake_case throughout.

// MessageRequest is the body of POST /chat/{chatID}/message.
type MessageRequest struct {
	Text      string `json:"text"`
	Provider  string `json:"provider,omitempty"`
	ModelHint string `json:"model_hint,omitempty"`
}

// MessageResponse is the reply envelope for a generated turn.
type MessageResponse struct {
	ChatID      string       `json:"chat_id"`
	Model       string       `json:"model"`
	Reply       string       `json:"reply"`
	EmotionHint *EmotionHint `json:"emotion_hint,omitempty"`
}

// ModelRequest is the body of POST /chat/{chatID}/model.
type ModelRequest struct {
	Model string `json:"model"`
}

// SettingsRequest is the body of POST /chat/{chatID}/settings. Nil fields
// leave the corresponding server-side value untouched.
type SettingsRequest struct {
	Intro       *string  `json:"intro,omitempty"`
	Personality *string  `json:"personality,omitempty"`
	Welcome     *string  `json:"welcome,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Gender      *string  `json:"gender,omitempty"`
}
