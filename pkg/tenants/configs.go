package tenants

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ConfigKey is a well-known tenant configuration key
type ConfigKey string

const (
	// ConfigKeySessionNotFoundRedirectURL points users somewhere actionable
	// when their interaction session cannot be recovered.
	ConfigKeySessionNotFoundRedirectURL ConfigKey = "sessionNotFoundRedirectUrl"
)

// SessionNotFoundRedirect is the JSON shape stored under
// ConfigKeySessionNotFoundRedirectURL.
type SessionNotFoundRedirect struct {
	URL string `json:"url"`
}

// ConfigStore reads tenant configuration entries from PostgreSQL
type ConfigStore struct {
	db *sql.DB
}

// NewConfigStore creates a new tenant config store
func NewConfigStore(db *sql.DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// GetValue retrieves the raw JSON value for a config key. The second return
// is false when the key has no entry.
func (s *ConfigStore) GetValue(ctx context.Context, key ConfigKey) (json.RawMessage, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM tenant_configs WHERE key = $1`, string(key),
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query tenant config %s: %w", key, err)
	}

	return json.RawMessage(value), true, nil
}

// SessionNotFoundRedirectURL returns the configured redirect URL, if any.
// A missing entry, malformed JSON, or a non-absolute URL all read as absent.
func (s *ConfigStore) SessionNotFoundRedirectURL(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.GetValue(ctx, ConfigKeySessionNotFoundRedirectURL)
	if err != nil || !ok {
		return "", false, err
	}

	var parsed SessionNotFoundRedirect
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, nil
	}
	if parsed.URL == "" {
		return "", false, nil
	}
	if u, err := url.Parse(parsed.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return "", false, nil
	}

	return parsed.URL, true, nil
}
