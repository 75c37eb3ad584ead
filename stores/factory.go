package stores

import "fmt"

// NewStore builds a SessionStore from configuration. Supported types are
// "sqlite" and "postgres".
func NewStore(cfg *StoreConfig) (SessionStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is nil")
	}
	switch cfg.Type {
	case "sqlite", "":
		return NewSQLiteStore(cfg.Connection)
	case "postgres":
		return NewPostgresStore(cfg.Connection)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
