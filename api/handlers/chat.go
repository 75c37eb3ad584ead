package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/sessions"
)

// Summarizer produces a session summary from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []models.ChatMessage) (*models.SessionSummary, error)
}

// Titler produces a short session title from a transcript.
type Titler interface {
	GenerateTitle(ctx context.Context, msgs []models.ChatMessage) (string, error)
}

// ChatHandler godoc
// @Summary      Stream a chat reply
// @Description  Streams the assistant's reply as text/event-stream records: text fragments, optional grounding metadata, optional crafting recipe, then done
// @Tags         chat
// @Accept       json
// @Param        request  body  models.ChatRequest  true  "Conversation history ending with the newest user turn"
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE stream of StreamEvent records"
// @Failure      400  {string}  string  "malformed request"
// @Failure      500  {string}  string  "setup failure before streaming"
// @Router       /api/chat [post]
func ChatHandler(model sessions.ChatModel, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request body: %s", err.Error())
			return
		}

		writer, err := sessions.NewSSEWriter(c.Writer)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		turn := &sessions.Turn{
			Model:  model,
			Writer: writer,
			Log:    log.With("chat"),
		}
		// Errors past this point went out in-band as error events; the
		// HTTP status is already committed.
		if err := turn.Run(c.Request.Context(), req); err != nil {
			log.Error("Chat turn ended with error", logger.Fields{
				"error": err.Error(),
			})
		}
	}
}
