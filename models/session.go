package models

import "time"

// DefaultSessionName is the placeholder given to new sessions until a
// model-generated title replaces it.
const DefaultSessionName = "New Chat"

// ChatSession is a named, persisted conversation.
type ChatSession struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Messages    []ChatMessage   `json:"messages"`
	Summary     *SessionSummary `json:"summary,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// SessionInfo is the listing shape for a session: metadata without the
// transcript.
type SessionInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MessageCount int       `json:"messageCount"`
	LastUpdated  time.Time `json:"lastUpdated"`
}
