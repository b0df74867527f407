package samlapp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/observability"
)

// ErrConfigNotFound indicates no SAML configuration exists for the application
var ErrConfigNotFound = errors.New("saml application config not found")

// ErrSecretNotFound indicates no active signing secret exists for the application
var ErrSecretNotFound = errors.New("saml application secret not found")

// Storage persists SAML application configs and signing secrets
type Storage struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewStorage creates SAML application storage. metrics may be nil.
func NewStorage(db *sql.DB, metrics *observability.Metrics) *Storage {
	return &Storage{db: db, metrics: metrics}
}

// GetConfig loads the SAML configuration fragment for an application
func (s *Storage) GetConfig(ctx context.Context, applicationID string) (*Config, error) {
	start := time.Now()

	var (
		cfg            = Config{ApplicationID: applicationID}
		attributesJSON []byte
		acsJSON        []byte
		entityID       sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT attribute_mapping, entity_id, acs_url
		FROM saml_application_configs
		WHERE application_id = $1`,
		applicationID,
	).Scan(&attributesJSON, &entityID, &acsJSON)
	s.observe("get_saml_config", start, err)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saml config: %w", err)
	}

	cfg.EntityID = entityID.String
	if len(attributesJSON) > 0 {
		if err := json.Unmarshal(attributesJSON, &cfg.AttributeMapping); err != nil {
			return nil, fmt.Errorf("failed to decode attribute mapping: %w", err)
		}
	}
	if len(acsJSON) > 0 {
		var acs ACSURL
		if err := json.Unmarshal(acsJSON, &acs); err != nil {
			return nil, fmt.Errorf("failed to decode acs url: %w", err)
		}
		cfg.ACSURL = &acs
	}

	return &cfg, nil
}

// UpsertConfig writes the SAML configuration fragment. The ACS binding is
// validated before anything touches the database.
func (s *Storage) UpsertConfig(ctx context.Context, cfg *Config) error {
	if cfg.ACSURL != nil {
		if err := ValidateACSURL(*cfg.ACSURL); err != nil {
			return err
		}
	}

	attributesJSON, err := json.Marshal(cfg.AttributeMapping)
	if err != nil {
		return fmt.Errorf("failed to encode attribute mapping: %w", err)
	}
	var acsJSON []byte
	if cfg.ACSURL != nil {
		if acsJSON, err = json.Marshal(cfg.ACSURL); err != nil {
			return fmt.Errorf("failed to encode acs url: %w", err)
		}
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saml_application_configs (application_id, attribute_mapping, entity_id, acs_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id)
		DO UPDATE SET attribute_mapping = $2, entity_id = $3, acs_url = $4`,
		cfg.ApplicationID, attributesJSON, cfg.EntityID, acsJSON,
	)
	s.observe("upsert_saml_config", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert saml config: %w", err)
	}
	return nil
}

// ApplicationView loads the composite SAML application view
func (s *Storage) ApplicationView(ctx context.Context, finder applications.Finder, applicationID string) (*ApplicationView, error) {
	app, err := finder.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.GetConfig(ctx, applicationID)
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	return AssembleView(app, cfg)
}

// InsertSecret persists freshly generated key material as a new signing
// secret. When active is true any previously active secret for the
// application is deactivated in the same transaction.
func (s *Storage) InsertSecret(ctx context.Context, applicationID string, material *KeyMaterial, active bool) (*Secret, error) {
	secret := &Secret{
		ID:             uuid.NewString(),
		ApplicationID:  applicationID,
		PrivateKeyPEM:  material.PrivateKeyPEM,
		CertificatePEM: material.CertificatePEM,
		Active:         active,
		ExpiresAt:      material.NotAfter,
		CreatedAt:      time.Now(),
	}

	start := time.Now()
	err := s.insertSecretTx(ctx, secret)
	s.observe("insert_saml_secret", start, err)
	if err != nil {
		return nil, err
	}
	return secret, nil
}

func (s *Storage) insertSecretTx(ctx context.Context, secret *Secret) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if secret.Active {
		if _, err := tx.ExecContext(ctx, `
			UPDATE saml_application_secrets SET active = FALSE
			WHERE application_id = $1 AND active`,
			secret.ApplicationID,
		); err != nil {
			return fmt.Errorf("failed to deactivate previous secrets: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO saml_application_secrets (id, application_id, private_key, certificate, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		secret.ID, secret.ApplicationID, secret.PrivateKeyPEM, secret.CertificatePEM,
		secret.Active, secret.ExpiresAt, secret.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert saml secret: %w", err)
	}

	return tx.Commit()
}

// ActiveSecret loads the active signing secret for an application
func (s *Storage) ActiveSecret(ctx context.Context, applicationID string) (*Secret, error) {
	start := time.Now()

	secret := Secret{ApplicationID: applicationID, Active: true}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, private_key, certificate, expires_at, created_at
		FROM saml_application_secrets
		WHERE application_id = $1 AND active`,
		applicationID,
	).Scan(&secret.ID, &secret.PrivateKeyPEM, &secret.CertificatePEM, &secret.ExpiresAt, &secret.CreatedAt)
	s.observe("get_saml_secret", start, err)
	if err == sql.ErrNoRows {
		return nil, ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saml secret: %w", err)
	}

	return &secret, nil
}

// ListSecretsExpiringBefore returns active secrets whose certificates expire
// before cutoff. Private keys are not loaded.
func (s *Storage) ListSecretsExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Secret, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, certificate, expires_at, created_at
		FROM saml_application_secrets
		WHERE active AND expires_at < $1
		ORDER BY expires_at`,
		cutoff,
	)
	s.observe("list_expiring_saml_secrets", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring saml secrets: %w", err)
	}
	defer rows.Close()

	var secrets []*Secret
	for rows.Next() {
		secret := Secret{Active: true}
		if err := rows.Scan(&secret.ID, &secret.ApplicationID, &secret.CertificatePEM, &secret.ExpiresAt, &secret.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saml secret: %w", err)
		}
		secrets = append(secrets, &secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saml secrets: %w", err)
	}

	return secrets, nil
}

func (s *Storage) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStorageOperation(operation, start, err)
	}
}
