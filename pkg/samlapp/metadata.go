package samlapp

import (
	"encoding/xml"
	"fmt"

	saml2 "github.com/russellhaering/gosaml2"
	samltypes "github.com/russellhaering/gosaml2/types"
)

// ServiceProviderDescriptor is the subset of SP metadata the trust bootstrap
// cares about
type ServiceProviderDescriptor struct {
	EntityID string   `json:"entityId"`
	ACSURLs  []ACSURL `json:"acsUrls"`
}

// ParseServiceProviderMetadata extracts the entity ID and
// assertion-consumer-service endpoints from an SP metadata document.
// Endpoints with bindings outside the SAML HTTP-POST/HTTP-Redirect pair are
// ignored.
func ParseServiceProviderMetadata(raw []byte) (*ServiceProviderDescriptor, error) {
	var entity samltypes.EntityDescriptor
	if err := xml.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to parse SP metadata: %w", err)
	}
	if entity.EntityID == "" {
		return nil, fmt.Errorf("SP metadata has no entityID")
	}
	if entity.SPSSODescriptor == nil {
		return nil, fmt.Errorf("SP metadata has no SPSSODescriptor")
	}

	descriptor := &ServiceProviderDescriptor{EntityID: entity.EntityID}
	for _, acs := range entity.SPSSODescriptor.AssertionConsumerServices {
		binding, ok := bindingFromURN(acs.Binding)
		if !ok {
			continue
		}
		descriptor.ACSURLs = append(descriptor.ACSURLs, ACSURL{
			URL:     acs.Location,
			Binding: binding,
		})
	}
	if len(descriptor.ACSURLs) == 0 {
		return nil, fmt.Errorf("SP metadata has no usable AssertionConsumerService")
	}

	return descriptor, nil
}

// PostACSURL returns the first HTTP-POST endpoint, the only binding the
// assertion pipeline can serve.
func (d *ServiceProviderDescriptor) PostACSURL() (*ACSURL, bool) {
	for i := range d.ACSURLs {
		if d.ACSURLs[i].Binding == BindingPost {
			return &d.ACSURLs[i], true
		}
	}
	return nil, false
}

func bindingFromURN(urn string) (BindingType, bool) {
	switch urn {
	case saml2.BindingHttpPost:
		return BindingPost, true
	case saml2.BindingHttpRedirect:
		return BindingRedirect, true
	default:
		return "", false
	}
}
