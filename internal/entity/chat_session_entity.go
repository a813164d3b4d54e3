package entity

import "time"

type ChatMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ChatExchange is one user message and the reply it got, as seen by the prompt.
type ChatExchange struct {
	User      string
	Assistant string
}

// ChatSession is everything a conversation needs to resume: the transcript
// shown to clients and the pipeline state.
type ChatSession struct {
	Id           string
	Messages     []ChatMessage
	History      []ChatExchange
	FirstMessage bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewChatSession(id string, now time.Time) *ChatSession {
	return &ChatSession{
		Id:           id,
		Messages:     []ChatMessage{},
		History:      []ChatExchange{},
		FirstMessage: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clear empties the transcript and resets the conversation state.
func (s *ChatSession) Clear(now time.Time) {
	s.Messages = []ChatMessage{}
	s.History = []ChatExchange{}
	s.FirstMessage = true
	s.UpdatedAt = now
}

// Clone returns a deep copy so stored sessions never share slices with callers.
func (s *ChatSession) Clone() *ChatSession {
	c := *s
	c.Messages = append([]ChatMessage{}, s.Messages...)
	c.History = append([]ChatExchange{}, s.History...)
	return &c
}
