// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/smallstep/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in a PKCS7 or PKCS12 container.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS container")

	// ErrEncodePKCS7 indicates a failure to build a degenerate PKCS7 SignedData structure.
	ErrEncodePKCS7 = errors.New("x509certs: failed to encode PKCS7 data")
)

const (
	certBlockType  = "CERTIFICATE"
	pkcs7BlockType = "PKCS7"
)

// Certificate provides methods to decode and encode [X.509] certificates
// and the certificate packages they travel in.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: certBlockType,
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (c *Certificate) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != c.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// Decode decodes a single certificate from PEM or DER data.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	if c.IsPEM(data) {
		block, err := c.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		data = block.Bytes
	}

	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, ErrParseCertificate
	}

	return cert, nil
}

// DecodeMultiple decodes every certificate found in a package.
//
// Unlike [Certificate.DecodePackage], every certificate must parse; a single
// malformed entry fails the whole call.
func (c *Certificate) DecodeMultiple(data []byte, password string) ([]*x509.Certificate, error) {
	raws, err := c.DecodePackage(data, password)
	if err != nil {
		return nil, err
	}

	certs := make([]*x509.Certificate, 0, len(raws))
	for _, der := range raws {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, ErrParseCertificate
		}
		certs = append(certs, cert)
	}

	return certs, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	return c.EncodeRawPEM(cert.Raw)
}

// EncodeRawPEM wraps raw DER bytes in a CERTIFICATE PEM block.
func (c *Certificate) EncodeRawPEM(der []byte) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: der,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Certificate) EncodeDER(cert *x509.Certificate) []byte { return cert.Raw }

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Certificate) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}

// EncodeMultipleDER encodes multiple certificates to concatenated DER format.
func (c *Certificate) EncodeMultipleDER(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodeDER(cert)...)
	}

	return data
}

// EncodePKCS7 encodes certificates as a degenerate (certificates-only)
// PKCS#7 SignedData structure, the usual export format for a chain.
//
// Parameters:
//   - certs: Certificates to include, in order
//
// Returns:
//   - []byte: DER-encoded PKCS#7 structure
//   - error: ErrEncodePKCS7 if the structure cannot be built
func (c *Certificate) EncodePKCS7(certs []*x509.Certificate) ([]byte, error) {
	if len(certs) == 0 {
		return nil, ErrEncodePKCS7
	}

	out, err := pkcs7.DegenerateCertificate(c.EncodeMultipleDER(certs))
	if err != nil {
		return nil, ErrEncodePKCS7
	}

	return out, nil
}
