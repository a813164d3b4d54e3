package pipeline

import (
	"sync"

	"mindcare-rag-be/pkg/rag/prompt"
)

type Exchange = prompt.Exchange

// Conversation is the per-session state the pipeline reads and appends to.
// Process holds its lock for the whole turn, so turns of one session never
// interleave.
type Conversation struct {
	mu           sync.Mutex
	history      []Exchange
	firstMessage bool
}

func NewConversation() *Conversation {
	return &Conversation{firstMessage: true}
}

// RestoreConversation rebuilds a conversation from stored state.
func RestoreConversation(history []Exchange, firstMessage bool) *Conversation {
	h := make([]Exchange, len(history))
	copy(h, history)
	return &Conversation{history: h, firstMessage: firstMessage}
}

// History returns a copy of every stored exchange, oldest first.
func (c *Conversation) History() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Exchange, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Conversation) IsFirstMessage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstMessage
}

// Reset drops the history and marks the next reply as the first again.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.firstMessage = true
}
