package models

// Editions are the two supported variants of the game domain. They select
// between system-instruction variants, nothing else.
const (
	EditionJava    = "java"
	EditionBedrock = "bedrock"
)

// ChatRequest is the body of POST /api/chat. Messages must be a non-empty
// ordered history ending with the newest user turn.
type ChatRequest struct {
	Messages []ChatMessage   `json:"messages" binding:"required,min=1,dive"`
	Summary  *SessionSummary `json:"summary,omitempty"`
	Edition  string          `json:"edition,omitempty" binding:"omitempty,oneof=java bedrock"`
}

// SummaryRequest is the body of POST /api/summary.
type SummaryRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,min=1,dive"`
}

// TitleRequest is the body of POST /api/generate-title.
type TitleRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,dive"`
}

// TitleResponse is the reply of POST /api/generate-title.
type TitleResponse struct {
	Title string `json:"title"`
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Name string `json:"name,omitempty"`
}

// ErrorResponse is the JSON error body used by non-streaming endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
