package applications

import (
	"encoding/json"
	"time"
)

// Type represents the application type
type Type string

const (
	TypeTraditional      Type = "Traditional"
	TypeSPA              Type = "SPA"
	TypeNative           Type = "Native"
	TypeMachineToMachine Type = "MachineToMachine"
	TypeSAML             Type = "SAML"
)

// Application is an application record as persisted by the admin layer
type Application struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        Type   `json:"type"`

	// UnknownSessionFallbackURI is where the guard sends users when the
	// interaction session for this application cannot be recovered.
	UnknownSessionFallbackURI string `json:"unknownSessionFallbackUri,omitempty"`

	CustomData json.RawMessage `json:"customData,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
