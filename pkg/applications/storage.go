package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no application record exists for the given ID
var ErrNotFound = errors.New("application not found")

// Finder looks up application records by ID
type Finder interface {
	FindApplicationByID(ctx context.Context, id string) (*Application, error)
}

// Storage reads application records from PostgreSQL
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new application storage
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// FindApplicationByID retrieves an application record by ID
func (s *Storage) FindApplicationByID(ctx context.Context, id string) (*Application, error) {
	var (
		app            Application
		description    sql.NullString
		fallbackURI    sql.NullString
		customDataJSON []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, description, type, unknown_session_fallback_uri,
			custom_data, created_at
		FROM applications
		WHERE id = $1
	`, id).Scan(
		&app.ID, &app.TenantID, &app.Name, &description, &app.Type,
		&fallbackURI, &customDataJSON, &app.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query application %s: %w", id, err)
	}

	app.Description = description.String
	app.UnknownSessionFallbackURI = fallbackURI.String
	if len(customDataJSON) > 0 {
		app.CustomData = json.RawMessage(customDataJSON)
	}

	return &app, nil
}
