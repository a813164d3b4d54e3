package dto

import "time"

type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	SessionId string `json:"session_id" validate:"omitempty,max=64"`
}

type SourceResponse struct {
	Source string `json:"source"`
	Title  string `json:"title"`
}

type ChatResponse struct {
	Response   string           `json:"response"`
	SessionId  string           `json:"session_id"`
	Intent     string           `json:"intent"`
	IsCrisis   bool             `json:"is_crisis"`
	Sources    []SourceResponse `json:"sources"`
	Disclaimer string           `json:"disclaimer,omitempty"`
}

type MessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionResponse struct {
	Id        string            `json:"id"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
}

type SessionSummaryResponse struct {
	Id           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type CollectionCountResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type HealthResponse struct {
	Message    string `json:"message"`
	Status     string `json:"status"`
	Disclaimer string `json:"disclaimer"`
}
