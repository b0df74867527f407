// Package samlapp implements the SAML service-provider trust bootstrap.
//
// Acting as the assertion-signing authority for a downstream SP means the
// identity provider issues its own signing keypair and self-signed
// certificate per SAML application. This package generates that material,
// assembles the composite SAML application view from its persisted
// fragments, validates assertion-consumer configuration before it is
// accepted, and prepares the signing key store consumed by the assertion
// pipeline.
//
// Private key material passes through this package transiently: it is
// generated, handed to the persistence layer, and never logged or cached.
package samlapp
