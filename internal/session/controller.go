// Package session owns the authoritative in-memory chat log for one chat
// and keeps the on-disk mirror consistent with it.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emochi/emochi/internal/client"
	"github.com/emochi/emochi/internal/model/chat"
)

// Store is the durable mirror of the chat log. Save is best-effort and must
// not fail the caller; Load reports absent for missing or unreadable history.
type Store interface {
	Save(chatID string, messages []chat.Message)
	Load(chatID string) ([]chat.Message, bool)
}

// Snapshot is the observable state handed to subscribers. Messages is a
// copy; mutating it does not affect the controller.
type Snapshot struct {
	Messages     []chat.Message
	IsLoading    bool
	LastError    string
	CurrentModel string
}

// Listener receives a snapshot after each completed state transition.
type Listener func(Snapshot)

// Controller orchestrates one chat session: optimistic append on send,
// remote reconciliation, persistence, and observer notification. All state
// transitions happen under a single mutex; the remote call itself runs
// outside it so the session stays responsive while a send is in flight.
type Controller struct {
	chatID string
	remote client.Remote
	store  Store

	mu           sync.Mutex
	messages     []chat.Message
	isLoading    bool
	lastError    string
	currentModel string
	lastStamp    int64
	listeners    []Listener
}

// New returns a controller for chatID. Call Initialize before use.
func New(chatID string, remote client.Remote, store Store) *Controller {
	return &Controller{
		chatID:       chatID,
		remote:       remote,
		store:        store,
		currentModel: chat.DefaultModel,
	}
}

// Subscribe registers a listener invoked synchronously after each state
// transition completes.
func (c *Controller) Subscribe(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Initialize loads persisted history for the chat. Absent or unreadable
// history both resolve to an empty log; the caller never sees an error.
func (c *Controller) Initialize(ctx context.Context) {
	messages, ok := c.store.Load(c.chatID)

	c.mu.Lock()
	if ok {
		c.messages = messages
		for _, m := range messages {
			if m.Timestamp > c.lastStamp {
				c.lastStamp = m.Timestamp
			}
		}
	} else {
		c.messages = nil
	}
	c.mu.Unlock()

	log.Printf("[session] initialized chat=%s messages=%d", c.chatID, len(messages))
	c.notify()
}

// SendMessage appends the user's text optimistically, calls the backend,
// and reconciles the reply (or failure) into the log. Empty input and a
// send already in flight are both silent no-ops. Nothing is ever thrown at
// the caller; failures surface through LastError.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	c.SendMessageWith(ctx, text, "", "")
}

// SendMessageWith is SendMessage with pass-through provider and model-hint
// overrides for the backend's LLM routing.
func (c *Controller) SendMessageWith(ctx context.Context, text, provider, modelHint string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	c.mu.Lock()
	if c.isLoading {
		// At most one outstanding send per session, so optimistic appends
		// can never be reconciled out of order.
		c.mu.Unlock()
		return
	}
	c.isLoading = true
	c.lastError = ""
	c.messages = append(c.messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   trimmed,
		Timestamp: c.nextStampLocked(),
		Status:    chat.StatusConfirmed,
	})
	c.mu.Unlock()

	// Optimistic render before the round-trip resolves.
	c.notify()

	resp, err := c.remote.SendMessage(ctx, c.chatID, chat.MessageRequest{
		Text:      trimmed,
		Provider:  provider,
		ModelHint: modelHint,
	})

	c.mu.Lock()
	if err != nil {
		// The user's own text stays visible; the failed turn simply
		// produces no assistant message.
		c.lastError = "Error: " + err.Error()
		log.Printf("[session] send failed chat=%s: %v", c.chatID, err)
	} else {
		c.messages = append(c.messages, chat.Message{
			ID:          uuid.NewString(),
			Role:        chat.RoleAssistant,
			Content:     resp.Reply,
			Timestamp:   c.nextStampLocked(),
			EmotionHint: resp.EmotionHint,
			Status:      chat.StatusConfirmed,
		})
		c.lastError = ""
	}
	c.isLoading = false
	messages := append([]chat.Message(nil), c.messages...)
	c.mu.Unlock()

	c.store.Save(c.chatID, messages)
	c.notify()
}

// SetModel forwards the model switch to the backend and mirrors it locally
// on success. Failure leaves the current model untouched.
func (c *Controller) SetModel(ctx context.Context, model string) bool {
	if err := c.remote.SetModel(ctx, c.chatID, model); err != nil {
		log.Printf("[session] set model failed chat=%s model=%s: %v", c.chatID, model, err)
		return false
	}

	c.mu.Lock()
	c.currentModel = model
	c.mu.Unlock()
	c.notify()
	return true
}

// SetSettings forwards a sparse character-settings update. Settings are not
// mirrored into session state, so success mutates nothing locally.
func (c *Controller) SetSettings(ctx context.Context, req chat.SettingsRequest) bool {
	if err := c.remote.SetSettings(ctx, c.chatID, req); err != nil {
		log.Printf("[session] set settings failed chat=%s: %v", c.chatID, err)
		return false
	}
	return true
}

// nextStampLocked returns a millisecond timestamp that is strictly
// increasing within the session, even when two appends land in the same
// millisecond.
func (c *Controller) nextStampLocked() int64 {
	stamp := time.Now().UnixMilli()
	if stamp <= c.lastStamp {
		stamp = c.lastStamp + 1
	}
	c.lastStamp = stamp
	return stamp
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:     append([]chat.Message(nil), c.messages...),
		IsLoading:    c.isLoading,
		LastError:    c.lastError,
		CurrentModel: c.currentModel,
	}
}

// notify hands the current snapshot to every listener. The snapshot is
// taken under the lock but listeners run outside it, so a listener may call
// back into the controller.
func (c *Controller) notify() {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
