package models

import (
	"encoding/json"
	"strings"
)

// Roles for chat turns. The provider only distinguishes these two; system
// context travels as synthetic user/model turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// MessagePart is one text fragment of a chat turn. Turns normally carry
// exactly one part, but the wire shape allows several.
type MessagePart struct {
	Text string `json:"text,omitempty"`
}

// ChatMessage is a single turn in a conversation. Model turns may carry
// grounding citations and a crafting recipe attached after the text
// finished streaming. ID is assigned by whoever creates the turn and is
// stable for its lifetime; in-progress turns are updated by ID, never by
// list position.
type ChatMessage struct {
	ID                string          `json:"id,omitempty"`
	Role              string          `json:"role" binding:"required,oneof=user model"`
	Parts             []MessagePart   `json:"parts" binding:"required,min=1"`
	Timestamp         string          `json:"timestamp,omitempty"`
	GroundingMetadata json.RawMessage `json:"groundingMetadata,omitempty"`
	IsStreaming       bool            `json:"isStreaming,omitempty"`
	CraftingRecipe    *CraftingRecipe `json:"craftingRecipe,omitempty"`
}

// Text returns the concatenated text of all parts.
func (m ChatMessage) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// NewTextMessage builds a single-part message with the given role.
func NewTextMessage(role, text string) ChatMessage {
	return ChatMessage{
		Role:  role,
		Parts: []MessagePart{{Text: text}},
	}
}
