// Package store persists chat logs on disk, one JSON file per chat.
// Persistence is best-effort caching of history: write failures are logged
// through the diagnostic hook and never propagated to callers.
package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/emochi/emochi/internal/model/chat"
)

// record is the reduced on-disk projection of a message. Emotion hints and
// delivery status are intentionally not persisted.
type record struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Store writes and reads chat logs under a base directory.
type Store struct {
	dir      string
	diagnose func(op string, err error)
}

// Option customizes a Store.
type Option func(*Store)

// WithDiagnostics replaces the default log-based hook for swallowed
// persistence failures, so tests can assert on them.
func WithDiagnostics(fn func(op string, err error)) Option {
	return func(s *Store) { s.diagnose = fn }
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Store{
		dir: dir,
		diagnose: func(op string, err error) {
			log.Printf("[store] %s failed: %v", op, err)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save overwrites the stored log for chatID with the reduced projection of
// messages. Failures are reported to the diagnostic hook only.
func (s *Store) Save(chatID string, messages []chat.Message) {
	records := make([]record, 0, len(messages))
	for _, m := range messages {
		records = append(records, record{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.diagnose("save", err)
		return
	}

	// Write to a temp file then rename, so a crash mid-write cannot leave a
	// truncated record behind.
	path := s.chatFile(chatID)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		s.diagnose("save", err)
		return
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.diagnose("save", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		s.diagnose("save", err)
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		s.diagnose("save", err)
		return
	}
}

// Load returns the stored log for chatID. A missing file, unreadable file,
// or undecodable record all report absent: "no history yet" and "history
// lost" are deliberately indistinguishable to callers.
func (s *Store) Load(chatID string) ([]chat.Message, bool) {
	data, err := os.ReadFile(s.chatFile(chatID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.diagnose("load", err)
		}
		return nil, false
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		s.diagnose("load", err)
		return nil, false
	}

	messages := make([]chat.Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, chat.Message{
			ID:        r.ID,
			Role:      chat.Role(r.Role),
			Content:   r.Content,
			Timestamp: r.Timestamp,
			Status:    chat.StatusConfirmed,
		})
	}
	return messages, true
}

// chatFile maps a chat identifier to its file. Base strips any path
// separators a hostile identifier might carry.
func (s *Store) chatFile(chatID string) string {
	return filepath.Join(s.dir, filepath.Base(chatID)+".json")
}
