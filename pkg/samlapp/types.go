package samlapp

import "time"

// BindingType is a SAML message delivery binding
type BindingType string

const (
	BindingPost     BindingType = "HTTP-POST"
	BindingRedirect BindingType = "HTTP-Redirect"
)

// ACSURL is an assertion-consumer-service endpoint of a service provider
type ACSURL struct {
	URL     string      `json:"url"`
	Binding BindingType `json:"binding"`
}

// AttributeMapping maps identity attributes to SP-side assertion attributes
type AttributeMapping map[string]string

// Config is the SAML-specific configuration fragment of an application
type Config struct {
	ApplicationID    string           `json:"applicationId"`
	AttributeMapping AttributeMapping `json:"attributeMapping"`
	EntityID         string           `json:"entityId"`
	ACSURL           *ACSURL          `json:"acsUrl"`
}

// Secret is a persisted signing keypair/certificate for a SAML application.
// The private key never serializes to JSON.
type Secret struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"applicationId"`
	PrivateKeyPEM  string    `json:"-"`
	CertificatePEM string    `json:"certificate"`
	Active         bool      `json:"active"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
}
