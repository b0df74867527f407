package samlapp

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/httputil"
)

// ErrNotSAMLApplication is returned when a non-SAML application is used
// where a SAML application is required
var ErrNotSAMLApplication = errors.New("application is not a SAML application")

// ApplicationView is the composite SAML application: the base application
// record merged with its SAML configuration fragment. The configuration
// fields sit alongside the application fields, they do not nest.
type ApplicationView struct {
	applications.Application

	AttributeMapping AttributeMapping `json:"attributeMapping"`
	EntityID         string           `json:"entityId"`
	ACSURL           *ACSURL          `json:"acsUrl"`
}

// AssembleView merges app with its SAML configuration fragment. The
// application must be of the SAML type; cfg may be nil when no configuration
// has been stored yet.
func AssembleView(app *applications.Application, cfg *Config) (*ApplicationView, error) {
	if app.Type != applications.TypeSAML {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotSAMLApplication, app.ID, app.Type)
	}

	view := &ApplicationView{Application: *app}
	if cfg != nil {
		view.AttributeMapping = cfg.AttributeMapping
		view.EntityID = cfg.EntityID
		view.ACSURL = cfg.ACSURL
	}
	return view, nil
}

// ValidateACSURL rejects assertion-consumer endpoints whose binding the
// assertion pipeline cannot serve. Only the HTTP-POST binding is supported.
func ValidateACSURL(acs ACSURL) error {
	if acs.Binding != BindingPost {
		return httputil.Unprocessable(
			"application.saml.acs_url_binding_not_supported",
			fmt.Sprintf("binding %q is not supported, use %s", acs.Binding, BindingPost),
		)
	}
	return nil
}
