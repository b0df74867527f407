package samlapp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

const (
	// DefaultCertificateLifespanDays is the signing certificate lifetime
	// applied when no explicit lifespan is requested
	DefaultCertificateLifespanDays = 365

	rsaKeyBits = 4096
	serialBits = 128
)

// Certificate identity is fixed for now; per-tenant naming would move these
// into tenant configuration.
var (
	certificateSubject = pkix.Name{CommonName: "example.com"}
	certificateIssuer  = pkix.Name{
		CommonName:   "gatehouse.io",
		Organization: []string{"Gatehouse"},
		Country:      []string{"US"},
	}
)

// KeyMaterial is a freshly generated signing keypair and certificate. It is
// handed to storage immediately after generation and must not be logged or
// retained anywhere else.
type KeyMaterial struct {
	PrivateKeyPEM  string
	CertificatePEM string
	NotAfter       time.Time
}

// GenerateKeyMaterial creates an RSA-4096 signing keypair and a self-signed
// certificate valid for lifespanDays from now. A non-positive lifespan falls
// back to DefaultCertificateLifespanDays.
func GenerateKeyMaterial(lifespanDays int) (*KeyMaterial, error) {
	if lifespanDays <= 0 {
		lifespanDays = DefaultCertificateLifespanDays
	}

	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA keypair: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), serialBits))
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate serial: %w", err)
	}

	notBefore := time.Now()
	notAfter := notBefore.AddDate(0, 0, lifespanDays)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               certificateSubject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	// The parent template only contributes the issuer name; the certificate
	// is still signed with its own key.
	parent := &x509.Certificate{
		SerialNumber: serial,
		Subject:      certificateIssuer,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	return &KeyMaterial{
		PrivateKeyPEM: string(pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})),
		CertificatePEM: string(pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: der,
		})),
		NotAfter: notAfter,
	}, nil
}
