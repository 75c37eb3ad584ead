package sessions

import (
	"context"
	"fmt"
	"testing"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

// stubModel feeds canned chunks and an optional terminal error into the
// turn, and resolves the recipe pipeline with a fixed payload.
type stubModel struct {
	chunks    []models.StreamChunk
	streamErr error
	recipe    *models.CraftingRecipe
}

func (m *stubModel) StreamChat(ctx context.Context, history []models.ChatMessage, summary *models.SessionSummary, edition string) (<-chan models.StreamChunk, <-chan error) {
	chunkChan := make(chan models.StreamChunk)
	errChan := make(chan error, 1)
	go func() {
		defer close(chunkChan)
		defer close(errChan)
		for _, c := range m.chunks {
			chunkChan <- c
		}
		if m.streamErr != nil {
			errChan <- m.streamErr
		}
	}()
	return chunkChan, errChan
}

func (m *stubModel) FetchRecipe(ctx context.Context, utterance, edition string) *models.CraftingRecipe {
	return m.recipe
}

// captureWriter records every event in order.
type captureWriter struct {
	events  []models.StreamEvent
	flushes int
}

func (w *captureWriter) WriteEvent(event models.StreamEvent) error {
	w.events = append(w.events, event)
	return nil
}

func (w *captureWriter) Flush() { w.flushes++ }

func (w *captureWriter) types() []models.StreamEventType {
	types := make([]models.StreamEventType, 0, len(w.events))
	for _, e := range w.events {
		types = append(types, e.Type)
	}
	return types
}

func testRequest() models.ChatRequest {
	return models.ChatRequest{
		Messages: []models.ChatMessage{
			models.NewTextMessage(models.RoleUser, "how do I craft an iron golem?"),
		},
		Edition: models.EditionJava,
	}
}

func runTurn(t *testing.T, model *stubModel) (*captureWriter, error) {
	t.Helper()
	writer := &captureWriter{}
	turn := &Turn{Model: model, Writer: writer, Log: logger.New("test")}
	err := turn.Run(context.Background(), testRequest())
	return writer, err
}

func TestTurn_HelloWorld(t *testing.T) {
	model := &stubModel{
		chunks: []models.StreamChunk{
			{Text: "Hello"},
			{Text: " world"},
		},
	}
	writer, err := runTurn(t, model)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	types := writer.types()
	if len(types) != 3 {
		t.Fatalf("Expected text, text, done; got %v", types)
	}
	if types[0] != models.EventText || types[1] != models.EventText || types[2] != models.EventDone {
		t.Errorf("Unexpected event sequence %v", types)
	}
	if writer.events[0].Content+writer.events[1].Content != "Hello world" {
		t.Errorf("Text fragments out of order or corrupted")
	}
}

func TestTurn_FullOrdering(t *testing.T) {
	model := &stubModel{
		chunks: []models.StreamChunk{
			{Text: "An iron golem needs"},
			{Text: " four iron blocks.", Grounding: []byte(`{"webSearchQueries":["iron golem build"]}`)},
		},
		recipe: &models.CraftingRecipe{
			Slots:        []string{"air", "iron_block", "air", "iron_block", "carved_pumpkin", "iron_block", "air", "iron_block", "air"},
			OutputItem:   "iron_golem",
			OutputAmount: 1,
		},
	}
	writer, err := runTurn(t, model)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	want := []models.StreamEventType{
		models.EventText, models.EventText,
		models.EventMetadata, models.EventRecipe, models.EventDone,
	}
	got := writer.types()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Event %d: expected %s, got %s (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestTurn_LastGroundingWins(t *testing.T) {
	model := &stubModel{
		chunks: []models.StreamChunk{
			{Text: "a", Grounding: []byte(`{"seq":1}`)},
			{Text: "b", Grounding: []byte(`{"seq":2}`)},
		},
	}
	writer, err := runTurn(t, model)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}

	var metadata *models.StreamEvent
	for i := range writer.events {
		if writer.events[i].Type == models.EventMetadata {
			if metadata != nil {
				t.Fatalf("Metadata emitted more than once")
			}
			metadata = &writer.events[i]
		}
	}
	if metadata == nil {
		t.Fatalf("No metadata event emitted")
	}
	if string(metadata.Metadata) != `{"seq":2}` {
		t.Errorf("Expected last-seen grounding, got %s", metadata.Metadata)
	}
}

func TestTurn_ErrorSuppressesDone(t *testing.T) {
	model := &stubModel{
		chunks:    []models.StreamChunk{{Text: "partial"}},
		streamErr: fmt.Errorf("upstream quota exceeded"),
	}
	writer, err := runTurn(t, model)
	if err == nil {
		t.Fatalf("Expected turn error")
	}

	types := writer.types()
	if types[len(types)-1] != models.EventError {
		t.Errorf("Error should be the final event, got %v", types)
	}
	for _, typ := range types {
		if typ == models.EventDone {
			t.Errorf("Done must be suppressed on error, got %v", types)
		}
	}
	if writer.events[0].Type != models.EventText || writer.events[0].Content != "partial" {
		t.Errorf("Partial text must be delivered before the error")
	}
}

func TestTurn_NoRecipeEventWhenPipelineDeclines(t *testing.T) {
	model := &stubModel{
		chunks: []models.StreamChunk{{Text: "Creepers explode."}},
		recipe: nil,
	}
	writer, err := runTurn(t, model)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	for _, typ := range writer.types() {
		if typ == models.EventRecipe {
			t.Errorf("Recipe event emitted for declined pipeline")
		}
	}
}

func TestTurn_EmptyRequest(t *testing.T) {
	writer := &captureWriter{}
	turn := &Turn{Model: &stubModel{}, Writer: writer, Log: logger.New("test")}
	if err := turn.Run(context.Background(), models.ChatRequest{}); err == nil {
		t.Fatalf("Expected error for empty request")
	}
	if len(writer.events) != 0 {
		t.Errorf("No events should be written for an empty request")
	}
}

func TestTurn_FlushesEveryEvent(t *testing.T) {
	model := &stubModel{chunks: []models.StreamChunk{{Text: "hi"}}}
	writer, err := runTurn(t, model)
	if err != nil {
		t.Fatalf("Turn failed: %v", err)
	}
	if writer.flushes < len(writer.events) {
		t.Errorf("Expected a flush per event, got %d flushes for %d events", writer.flushes, len(writer.events))
	}
}
