package models

import "encoding/json"

// StreamEventType tags the variants of the chat stream union.
type StreamEventType string

const (
	// EventText carries one text fragment to append, in generation order.
	EventText StreamEventType = "text"
	// EventMetadata carries grounding citations, at most once per turn,
	// after all text.
	EventMetadata StreamEventType = "metadata"
	// EventRecipe carries the crafting recipe side-payload, at most once,
	// after metadata.
	EventRecipe StreamEventType = "recipe"
	// EventError carries a human-readable failure message. It is always
	// the final event of its turn and suppresses EventDone.
	EventError StreamEventType = "error"
	// EventDone terminates a successful turn.
	EventDone StreamEventType = "done"
)

// StreamEvent is one framed record of the chat response stream.
// Exactly one of Content, Metadata or Recipe is set depending on Type;
// done events carry nothing.
type StreamEvent struct {
	Type     StreamEventType `json:"type"`
	Content  string          `json:"content,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Recipe   *CraftingRecipe `json:"recipe,omitempty"`
}

// StreamChunk is one increment from the upstream model stream before it
// is split into wire events: a text delta plus whatever grounding payload
// rode along with it.
type StreamChunk struct {
	Text      string
	Grounding json.RawMessage
}
