package stores

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/detekoi/iron-golem/models"
)

// ErrSessionNotFound is returned when a session id has no record.
var ErrSessionNotFound = errors.New("session not found")

// gormStore carries the driver-independent method set. SQLiteStore and
// PostgresStore embed it and contribute only connection handling.
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) migrate() error {
	if err := s.db.AutoMigrate(&Session{}, &Message{}, &Setting{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// CreateSession inserts a new session record with the placeholder name if
// none is given.
func (s *gormStore) CreateSession(sessionID, name string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if name == "" {
		name = models.DefaultSessionName
	}
	rec := Session{
		SessionID:    sessionID,
		Name:         name,
		LastActivity: time.Now(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}
	return nil
}

// GetSession loads a session and its full transcript in sequence order.
func (s *gormStore) GetSession(sessionID string) (*models.ChatSession, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var rec Session
	if err := s.db.Where("session_id = ?", sessionID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rows []Message
	if err := s.db.Where("session_id = ?", sessionID).Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	session := models.ChatSession{
		ID:          rec.SessionID,
		Name:        rec.Name,
		Messages:    make([]models.ChatMessage, 0, len(rows)),
		LastUpdated: rec.LastActivity,
	}

	if rec.SummaryJSON != "" {
		var summary models.SessionSummary
		if err := json.Unmarshal([]byte(rec.SummaryJSON), &summary); err == nil {
			session.Summary = &summary
		}
	}

	for _, row := range rows {
		msg, err := toChatMessage(row)
		if err != nil {
			// A single corrupt row should not lose the whole transcript.
			continue
		}
		session.Messages = append(session.Messages, msg)
	}

	return &session, nil
}

// ListSessions returns session metadata sorted by last activity, newest
// first.
func (s *gormStore) ListSessions() ([]models.SessionInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var recs []Session
	if err := s.db.Order("last_activity DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	infos := make([]models.SessionInfo, 0, len(recs))
	for _, rec := range recs {
		infos = append(infos, models.SessionInfo{
			ID:           rec.SessionID,
			Name:         rec.Name,
			MessageCount: rec.MessageCount,
			LastUpdated:  rec.LastActivity,
		})
	}
	return infos, nil
}

// SaveSession replaces a session wholesale: metadata, summary and the full
// transcript. Last write wins; there are no concurrent writers within one
// session by contract.
func (s *gormStore) SaveSession(session models.ChatSession) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	lastActivity := session.LastUpdated
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}

	summaryJSON := ""
	if session.Summary != nil {
		data, err := json.Marshal(session.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		summaryJSON = string(data)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec Session
		err := tx.Where("session_id = ?", session.ID).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = Session{SessionID: session.ID}
		case err != nil:
			return fmt.Errorf("failed to load session for save: %w", err)
		}

		rec.Name = session.Name
		rec.SummaryJSON = summaryJSON
		rec.MessageCount = len(session.Messages)
		rec.LastActivity = lastActivity
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save session record: %w", err)
		}

		if err := tx.Unscoped().Where("session_id = ?", session.ID).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("failed to clear old transcript: %w", err)
		}

		for i, msg := range session.Messages {
			row, err := toMessageRow(session.ID, i+1, msg)
			if err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save message %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// DeleteSession removes a session, its transcript, and the active pointer
// if it referenced the deleted session.
func (s *gormStore) DeleteSession(sessionID string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("session_id = ?", sessionID).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Unscoped().Where("session_id = ?", sessionID).Delete(&Session{}).Error; err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		var active Setting
		err := tx.Where("name = ?", activeSessionKey).First(&active).Error
		if err == nil && active.Value == sessionID {
			if err := tx.Unscoped().Delete(&active).Error; err != nil {
				return fmt.Errorf("failed to clear active session pointer: %w", err)
			}
		}
		return nil
	})
}

// SaveSummary attaches a summary to a session without touching the
// transcript.
func (s *gormStore) SaveSummary(sessionID string, summary *models.SessionSummary) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	summaryJSON := ""
	if summary != nil {
		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		summaryJSON = string(data)
	}

	result := s.db.Model(&Session{}).Where("session_id = ?", sessionID).
		Update("summary_json", summaryJSON)
	if result.Error != nil {
		return fmt.Errorf("failed to save summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SetActiveSession records sessionID as the active-session pointer.
func (s *gormStore) SetActiveSession(sessionID string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var rec Setting
	err := s.db.Where("name = ?", activeSessionKey).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = Setting{Name: activeSessionKey, Value: sessionID}
		if err := s.db.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to set active session: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read active session: %w", err)
	}

	rec.Value = sessionID
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to set active session: %w", err)
	}
	return nil
}

// ActiveSession returns the active-session pointer, or empty when unset.
func (s *gormStore) ActiveSession() (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database connection is nil")
	}

	var rec Setting
	err := s.db.Where("name = ?", activeSessionKey).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active session: %w", err)
	}
	return rec.Value, nil
}

// ClearActiveSession removes the active-session pointer.
func (s *gormStore) ClearActiveSession() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.db.Unscoped().Where("name = ?", activeSessionKey).Delete(&Setting{}).Error; err != nil {
		return fmt.Errorf("failed to clear active session: %w", err)
	}
	return nil
}

// PruneIdleSessions deletes sessions whose last activity is older than
// idleFor, returning the number removed.
func (s *gormStore) PruneIdleSessions(idleFor time.Duration) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	cutoff := time.Now().Add(-idleFor)

	var stale []Session
	if err := s.db.Where("last_activity < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("failed to find idle sessions: %w", err)
	}

	for _, rec := range stale {
		if err := s.DeleteSession(rec.SessionID); err != nil {
			return 0, err
		}
	}
	return int64(len(stale)), nil
}

// Close closes the underlying database connection.
func (s *gormStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive.
func (s *gormStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func toChatMessage(row Message) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        row.MessageID,
		Role:      row.Role,
		Timestamp: row.Timestamp,
	}

	if row.PartsJSON != "" && row.PartsJSON != "null" {
		if err := json.Unmarshal([]byte(row.PartsJSON), &msg.Parts); err != nil {
			return models.ChatMessage{}, fmt.Errorf("corrupt parts for message %d: %w", row.ID, err)
		}
	}
	if row.GroundingJSON != "" && row.GroundingJSON != "null" {
		msg.GroundingMetadata = json.RawMessage(row.GroundingJSON)
	}
	if row.RecipeJSON != "" && row.RecipeJSON != "null" {
		var recipe models.CraftingRecipe
		if err := json.Unmarshal([]byte(row.RecipeJSON), &recipe); err == nil {
			msg.CraftingRecipe = &recipe
		}
	}
	return msg, nil
}

func toMessageRow(sessionID string, sequence int, msg models.ChatMessage) (Message, error) {
	partsJSON, err := json.Marshal(msg.Parts)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal parts: %w", err)
	}

	row := Message{
		SessionID: sessionID,
		MessageID: msg.ID,
		Sequence:  sequence,
		Role:      msg.Role,
		PartsJSON: string(partsJSON),
		Timestamp: msg.Timestamp,
	}

	if len(msg.GroundingMetadata) > 0 {
		row.GroundingJSON = string(msg.GroundingMetadata)
	}
	if msg.CraftingRecipe != nil {
		recipeJSON, err := json.Marshal(msg.CraftingRecipe)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal recipe: %w", err)
		}
		row.RecipeJSON = string(recipeJSON)
	}
	return row, nil
}
