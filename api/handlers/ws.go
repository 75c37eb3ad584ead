package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/sessions"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are vetted by the CORS layer; the upgrade itself
	// accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSChatHandler runs chat turns over a websocket connection. Each client
// message is one ChatRequest; the reply is the same StreamEvent sequence
// the SSE endpoint produces, as JSON frames. The connection stays open
// for multiple turns.
func WSChatHandler(model sessions.ChatModel, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("WebSocket upgrade failed", logger.Fields{"error": err.Error()})
			return
		}
		defer conn.Close()

		wsLog := log.With("ws")
		for {
			var req models.ChatRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn("WebSocket closed unexpectedly", logger.Fields{"error": err.Error()})
				}
				return
			}

			writer := &sessions.WebSocketWriter{
				Conn:      conn,
				Log:       wsLog,
				StartTime: time.Now(),
			}
			// The websocket analog of the SSE endpoint's pre-stream 400:
			// a malformed turn gets an in-band error frame, and the
			// connection stays open for the next message.
			if len(req.Messages) == 0 {
				if err := writer.WriteEvent(models.StreamEvent{
					Type:    models.EventError,
					Content: "request has no messages",
				}); err != nil {
					wsLog.Error("Failed to write error frame", logger.Fields{"error": err.Error()})
					return
				}
				continue
			}

			turn := &sessions.Turn{Model: model, Writer: writer, Log: wsLog}
			if err := turn.Run(c.Request.Context(), req); err != nil {
				wsLog.Error("WebSocket turn ended with error", logger.Fields{
					"error": err.Error(),
				})
			}
		}
	}
}
