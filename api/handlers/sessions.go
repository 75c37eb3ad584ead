package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/stores"
)

// ListSessionsHandler godoc
// @Summary      List sessions
// @Description  Returns session metadata sorted by last activity, newest first
// @Tags         sessions
// @Produce      json
// @Success      200  {array}  models.SessionInfo
// @Router       /api/sessions [get]
func ListSessionsHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos, err := store.ListSessions()
		if err != nil {
			log.Error("Failed to list sessions", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, infos)
	}
}

// CreateSessionHandler godoc
// @Summary      Create a session
// @Tags         sessions
// @Accept       json
// @Param        request  body  models.CreateSessionRequest  false  "Optional display name"
// @Produce      json
// @Success      201  {object}  models.ChatSession
// @Router       /api/sessions [post]
func CreateSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
				return
			}
		}

		id := uuid.NewString()
		if err := store.CreateSession(id, req.Name); err != nil {
			log.Error("Failed to create session", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}

		session, err := store.GetSession(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// GetSessionHandler godoc
// @Summary      Get a session
// @Tags         sessions
// @Param        id  path  string  true  "Session id"
// @Produce      json
// @Success      200  {object}  models.ChatSession
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/sessions/{id} [get]
func GetSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.GetSession(c.Param("id"))
		if err != nil {
			if errors.Is(err, stores.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "session not found"})
				return
			}
			log.Error("Failed to load session", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// SaveSessionHandler godoc
// @Summary      Save a session
// @Description  Replaces the session wholesale: name, summary and transcript
// @Tags         sessions
// @Accept       json
// @Param        id       path  string              true  "Session id"
// @Param        session  body  models.ChatSession  true  "Full session state"
// @Success      204  {string}  string  "saved"
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/sessions/{id} [put]
func SaveSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session models.ChatSession
		if err := c.ShouldBindJSON(&session); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		session.ID = c.Param("id")

		if err := store.SaveSession(session); err != nil {
			log.Error("Failed to save session", logger.Fields{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SaveSummaryHandler godoc
// @Summary      Save a session summary
// @Description  Updates only the stored summary, leaving the transcript untouched
// @Tags         sessions
// @Accept       json
// @Param        id       path  string                 true  "Session id"
// @Param        summary  body  models.SessionSummary  true  "Summary document"
// @Success      204  {string}  string  "saved"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/sessions/{id}/summary [put]
func SaveSummaryHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var summary models.SessionSummary
		if err := c.ShouldBindJSON(&summary); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		id := c.Param("id")
		if err := store.SaveSummary(id, &summary); err != nil {
			if errors.Is(err, stores.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "session not found"})
				return
			}
			log.Error("Failed to save summary", logger.Fields{
				"sessionId": id,
				"error":     err.Error(),
			})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DeleteSessionHandler godoc
// @Summary      Delete a session
// @Tags         sessions
// @Param        id  path  string  true  "Session id"
// @Success      204  {string}  string  "deleted"
// @Router       /api/sessions/{id} [delete]
func DeleteSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.DeleteSession(c.Param("id")); err != nil {
			log.Error("Failed to delete session", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ActiveSessionHandler godoc
// @Summary      Get the active session pointer
// @Tags         sessions
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/sessions/active [get]
func ActiveSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := store.ActiveSession()
		if err != nil {
			log.Error("Failed to read active session", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

// SetActiveSessionHandler godoc
// @Summary      Set the active session pointer
// @Tags         sessions
// @Accept       json
// @Param        request  body  map[string]string  true  "Session id, or empty to clear"
// @Success      204  {string}  string  "set"
// @Router       /api/sessions/active [put]
func SetActiveSessionHandler(store stores.SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}

		var err error
		if req.ID == "" {
			err = store.ClearActiveSession()
		} else {
			err = store.SetActiveSession(req.ID)
		}
		if err != nil {
			log.Error("Failed to update active session", logger.Fields{"error": err.Error()})
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HealthHandler godoc
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func HealthHandler(store stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
