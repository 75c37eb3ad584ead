package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

// ChatModel is the model surface a turn needs: the primary reply stream
// and the best-effort recipe side-pipeline.
type ChatModel interface {
	StreamChat(ctx context.Context, history []models.ChatMessage, summary *models.SessionSummary, edition string) (<-chan models.StreamChunk, <-chan error)
	FetchRecipe(ctx context.Context, utterance, edition string) *models.CraftingRecipe
}

// EventWriter delivers stream events to a client. Flush pushes buffered
// data to the wire where the transport buffers.
type EventWriter interface {
	WriteEvent(event models.StreamEvent) error
	Flush()
}

// WebSocketWriter adapts a websocket connection to EventWriter. Writes
// are serialized; the time to first event is logged once per connection.
type WebSocketWriter struct {
	Conn      *websocket.Conn
	Log       *logger.Logger
	StartTime time.Time

	mu          sync.Mutex
	firstLogged bool
}

func (w *WebSocketWriter) WriteEvent(event models.StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.firstLogged && !w.StartTime.IsZero() {
		w.firstLogged = true
		w.Log.Info("First event written", logger.Fields{
			"durationMs": time.Since(w.StartTime).Milliseconds(),
		})
	}
	return w.Conn.WriteJSON(event)
}

// Flush is a no-op; websocket frames are not buffered on our side.
func (w *WebSocketWriter) Flush() {}
