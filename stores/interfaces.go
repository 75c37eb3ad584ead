package stores

import (
	"time"

	"gorm.io/gorm"

	"github.com/detekoi/iron-golem/models"
)

// Session holds metadata for one persisted chat session. The transcript
// lives in Message rows keyed by SessionID.
type Session struct {
	gorm.Model
	SessionID    string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"type:text"`
	SummaryJSON  string    `gorm:"type:json"`
	MessageCount int       `gorm:"default:0"`
	LastActivity time.Time `gorm:"index"`
	Messages     []Message `gorm:"foreignKey:SessionID;references:SessionID"`
}

// Message is one persisted chat turn. Parts, grounding and recipe are
// stored as JSON columns so the store stays agnostic of their shape.
type Message struct {
	gorm.Model
	SessionID     string `gorm:"index;not null"`
	MessageID     string `gorm:"index"`
	Sequence      int    `gorm:"not null"`
	Role          string `gorm:"not null"`
	PartsJSON     string `gorm:"type:json"`
	GroundingJSON string `gorm:"type:json"`
	RecipeJSON    string `gorm:"type:json"`
	Timestamp     string
}

// Setting is a single key-value row. Currently only the active-session
// pointer lives here.
type Setting struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// activeSessionKey is the Setting row naming the currently active session.
const activeSessionKey = "active_session_id"

// SessionStore abstracts session persistence. Implementations share
// gorm-backed behavior and differ only in the driver.
type SessionStore interface {
	// Session operations
	CreateSession(sessionID, name string) error
	GetSession(sessionID string) (*models.ChatSession, error)
	ListSessions() ([]models.SessionInfo, error)
	SaveSession(session models.ChatSession) error
	DeleteSession(sessionID string) error
	SaveSummary(sessionID string, summary *models.SessionSummary) error

	// Active-session pointer
	SetActiveSession(sessionID string) error
	ActiveSession() (string, error)
	ClearActiveSession() error

	// Maintenance
	PruneIdleSessions(idleFor time.Duration) (int64, error)

	// Connection management
	Close() error
	Ping() error
}

// StoreConfig holds configuration for session stores.
type StoreConfig struct {
	Type       string `json:"type"`       // "sqlite", "postgres"
	Connection string `json:"connection"` // file path or DSN
}

// NewStoreConfig creates a new store configuration.
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
	}
}
