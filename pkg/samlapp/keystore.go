package samlapp

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	dsig "github.com/russellhaering/goxmldsig"
)

// SigningKeyStore turns persisted key material into the key store consumed
// by the assertion signing pipeline. Both PKCS#1 and PKCS#8 private key
// encodings are accepted.
func SigningKeyStore(material *KeyMaterial) (dsig.X509KeyStore, error) {
	keyBlock, _ := pem.Decode([]byte(material.PrivateKeyPEM))
	if keyBlock == nil {
		return nil, fmt.Errorf("failed to decode private key PEM")
	}

	privateKey, err := parsePrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, err
	}

	certBlock, _ := pem.Decode([]byte(material.CertificatePEM))
	if certBlock == nil {
		return nil, fmt.Errorf("failed to decode certificate PEM")
	}
	if _, err := x509.ParseCertificate(certBlock.Bytes); err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &dsig.TLSCertKeyStore{
		PrivateKey:  privateKey,
		Certificate: [][]byte{certBlock.Bytes},
	}, nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, expected RSA", parsed)
	}
	return key, nil
}
