package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/detekoi/iron-golem/models"
)

// Reassembler consumes the event stream for one model turn and maintains
// the message list. Each turn gets a stable id at creation time and is
// updated by id, never by list position, so concurrent list changes
// cannot corrupt an in-flight turn.
type Reassembler struct {
	messages    []models.ChatMessage
	currentID   string
	accumulated string
}

// NewReassembler starts from an existing transcript (possibly empty).
func NewReassembler(messages []models.ChatMessage) *Reassembler {
	return &Reassembler{messages: messages}
}

// Messages returns the current transcript.
func (r *Reassembler) Messages() []models.ChatMessage {
	return r.messages
}

// AddUserMessage appends a finished user turn and returns its id.
func (r *Reassembler) AddUserMessage(text string) string {
	msg := models.NewTextMessage(models.RoleUser, text)
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	r.messages = append(r.messages, msg)
	return msg.ID
}

// BeginTurn appends the streaming placeholder for a new model turn and
// makes it the current target for Apply.
func (r *Reassembler) BeginTurn() string {
	msg := models.NewTextMessage(models.RoleModel, "")
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	msg.IsStreaming = true
	r.messages = append(r.messages, msg)
	r.currentID = msg.ID
	r.accumulated = ""
	return msg.ID
}

// Streaming reports whether a turn is still in flight.
func (r *Reassembler) Streaming() bool {
	msg := r.current()
	return msg != nil && msg.IsStreaming
}

// Apply folds one stream event into the current turn. Text fragments are
// accumulated and the turn's sole part replaced with the full value so
// far; metadata and recipe attach their payloads; done and error both
// finalize the turn, error keeping whatever partial text accumulated.
func (r *Reassembler) Apply(event models.StreamEvent) {
	msg := r.current()
	if msg == nil {
		return
	}

	switch event.Type {
	case models.EventText:
		r.accumulated += event.Content
		msg.Parts = []models.MessagePart{{Text: r.accumulated}}
	case models.EventMetadata:
		msg.GroundingMetadata = event.Metadata
	case models.EventRecipe:
		msg.CraftingRecipe = event.Recipe
	case models.EventDone:
		msg.IsStreaming = false
	case models.EventError:
		msg.IsStreaming = false
	}
}

func (r *Reassembler) current() *models.ChatMessage {
	if r.currentID == "" {
		return nil
	}
	for i := range r.messages {
		if r.messages[i].ID == r.currentID {
			return &r.messages[i]
		}
	}
	return nil
}
