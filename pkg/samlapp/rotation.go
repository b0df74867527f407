package samlapp

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/gatehouse/pkg/observability"
)

var tracer = otel.Tracer("github.com/platinummonkey/gatehouse/pkg/samlapp")

const (
	// DefaultRotationWindow is how far ahead of certificate expiry a secret
	// gets rotated
	DefaultRotationWindow = 30 * 24 * time.Hour
)

// Rotator replaces signing secrets whose certificates approach expiry
type Rotator struct {
	store        *Storage
	logger       *observability.Logger
	metrics      *observability.Metrics
	window       time.Duration
	lifespanDays int
}

// NewRotator creates a secret rotator. metrics may be nil; a non-positive
// window or lifespan falls back to the defaults.
func NewRotator(store *Storage, logger *observability.Logger, metrics *observability.Metrics, window time.Duration, lifespanDays int) *Rotator {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if window <= 0 {
		window = DefaultRotationWindow
	}
	if lifespanDays <= 0 {
		lifespanDays = DefaultCertificateLifespanDays
	}
	return &Rotator{
		store:        store,
		logger:       logger,
		metrics:      metrics,
		window:       window,
		lifespanDays: lifespanDays,
	}
}

// Run rotates every active secret expiring inside the rotation window and
// returns how many were rotated. A key generation failure aborts the run;
// secrets already rotated stay rotated.
func (r *Rotator) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(r.window)
	expiring, err := r.store.ListSecretsExpiringBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring secrets: %w", err)
	}

	rotated := 0
	for _, secret := range expiring {
		if err := r.rotate(ctx, secret); err != nil {
			r.countRotation("error")
			return rotated, err
		}
		r.countRotation("success")
		rotated++
	}

	if rotated > 0 {
		r.logger.WithField("rotated", rotated).Info("rotated expiring SAML signing secrets")
	}
	return rotated, nil
}

func (r *Rotator) rotate(ctx context.Context, secret *Secret) error {
	ctx, span := tracer.Start(ctx, "samlapp.rotate_secret", trace.WithAttributes(
		attribute.String("application.id", secret.ApplicationID),
	))
	defer span.End()

	start := time.Now()
	material, err := GenerateKeyMaterial(r.lifespanDays)
	if r.metrics != nil {
		r.metrics.KeygenDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if r.metrics != nil {
			r.metrics.KeygenErrorsTotal.Inc()
		}
		return fmt.Errorf("failed to generate key material for %s: %w", secret.ApplicationID, err)
	}

	if _, err := r.store.InsertSecret(ctx, secret.ApplicationID, material, true); err != nil {
		return fmt.Errorf("failed to store rotated secret for %s: %w", secret.ApplicationID, err)
	}

	r.logger.WithFields(map[string]interface{}{
		"application_id": secret.ApplicationID,
		"expires_at":     material.NotAfter.Format(time.RFC3339),
	}).Info("rotated SAML signing secret")
	return nil
}

func (r *Rotator) countRotation(status string) {
	if r.metrics != nil {
		r.metrics.SecretRotationsTotal.WithLabelValues(status).Inc()
	}
}
