package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

// SummaryHandler godoc
// @Summary      Summarize a session
// @Description  Extracts a structured session summary from a transcript. Model output that fails validation degrades to a minimal valid fallback, still HTTP 200
// @Tags         sessions
// @Accept       json
// @Param        request  body  models.SummaryRequest  true  "Transcript to summarize"
// @Produce      json
// @Success      200  {object}  models.SessionSummary
// @Failure      400  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/summary [post]
func SummaryHandler(summarizer Summarizer, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		summary, err := summarizer.Summarize(c.Request.Context(), req.Messages)
		if err != nil {
			log.Error("Summarization call failed", logger.Fields{
				"messages": len(req.Messages),
				"error":    err.Error(),
			})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// TitleHandler godoc
// @Summary      Generate a session title
// @Description  Produces a short title from the opening turns. Generation failure degrades to the placeholder title, still HTTP 200
// @Tags         sessions
// @Accept       json
// @Param        request  body  models.TitleRequest  true  "Transcript to title"
// @Produce      json
// @Success      200  {object}  models.TitleResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/generate-title [post]
func TitleHandler(titler Titler, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TitleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		title, err := titler.GenerateTitle(c.Request.Context(), req.Messages)
		if err != nil {
			log.Warn("Title generation failed, returning placeholder", logger.Fields{
				"error": err.Error(),
			})
			c.JSON(http.StatusOK, models.TitleResponse{Title: models.DefaultSessionName})
			return
		}
		c.JSON(http.StatusOK, models.TitleResponse{Title: title})
	}
}
