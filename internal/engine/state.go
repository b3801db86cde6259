package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emochi/emochi/internal/model/chat"
)

// messageCap bounds the retained transcript per chat.
const messageCap = 400

// StateMessage is one persisted turn of the server-side transcript.
type StateMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// State is the full durable configuration and transcript of one chat.
type State struct {
	ChatID          string            `json:"chat_id"`
	Model           string            `json:"model"`
	Intro           string            `json:"intro"`
	Personality     string            `json:"personality"`
	Welcome         string            `json:"welcome"`
	Tags            []string          `json:"tags"`
	Gender          string            `json:"gender"`
	Messages        []StateMessage    `json:"messages"`
	Meta            *chat.MetaStats   `json:"meta,omitempty"`
	LastEmotionHint *chat.EmotionHint `json:"last_emotion_hint,omitempty"`
}

// Append adds a turn and enforces the transcript cap.
func (s *State) Append(m StateMessage) {
	s.Messages = append(s.Messages, m)
	if len(s.Messages) > messageCap {
		s.Messages = s.Messages[len(s.Messages)-messageCap:]
	}
}

// StateStore keeps one state file per chat under a base directory. Unlike
// the client-side history cache, server state is a source of truth, so
// failures propagate.
type StateStore struct {
	dir string
}

// NewStateStore roots the store at dir, creating it if needed.
func NewStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &StateStore{dir: dir}, nil
}

// Load returns the state for chatID, creating and persisting a default one
// on first contact.
func (s *StateStore) Load(chatID string) (*State, error) {
	path := s.stateFile(chatID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		st := defaultState(chatID)
		if err := s.Save(st); err != nil {
			return nil, err
		}
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state for chat %s: %w", chatID, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode state for chat %s: %w", chatID, err)
	}
	return &st, nil
}

// Save overwrites the state file atomically.
func (s *StateStore) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.chatDir(st.ChatID), 0o755); err != nil {
		return err
	}

	path := s.stateFile(st.ChatID)
	tmp, err := os.CreateTemp(filepath.Dir(path), "state.json.tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ChatDir exposes the per-chat directory for auxiliary assets.
func (s *StateStore) ChatDir(chatID string) (string, error) {
	dir := s.chatDir(chatID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *StateStore) chatDir(chatID string) string {
	return filepath.Join(s.dir, filepath.Base(chatID))
}

func (s *StateStore) stateFile(chatID string) string {
	return filepath.Join(s.chatDir(chatID), "state.json")
}

func defaultState(chatID string) *State {
	return &State{
		ChatID: chatID,
		Model:  chat.DefaultModel,
		Tags:   []string{},
		Gender: "neutral",
	}
}
