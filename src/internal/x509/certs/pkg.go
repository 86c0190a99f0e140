// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	cfpkcs7 "github.com/cloudflare/cfssl/crypto/pkcs7"
	"software.sslmate.com/src/go-pkcs12"
)

var (
	// ErrEmptyPackage indicates that the package holds no certificate at all.
	ErrEmptyPackage = errors.New("x509certs: certificate package is empty")

	// ErrDecodePackage indicates that the package is neither PEM, PKCS7, PKCS12
	// nor a sequence of DER certificates.
	ErrDecodePackage = errors.New("x509certs: failed to decode certificate package")

	// ErrPKCS12Password indicates that a PKCS12 package could not be opened with the given password.
	ErrPKCS12Password = errors.New("x509certs: incorrect PKCS12 password")
)

// DecodePackage splits a certificate package into the raw DER bytes of each
// certificate it carries, in the order the package lists them.
//
// Supported containers:
//   - PEM: CERTIFICATE and PKCS7 blocks (private key blocks are ignored)
//   - PKCS#7 SignedData (certificates-only or signed)
//   - PKCS#12, opened with password
//   - one or more concatenated DER certificates
//
// Certificates are not parsed. Every returned slice is an independent copy,
// so a malformed certificate body is reported by whoever decodes it later.
//
// Parameters:
//   - data: Raw package bytes
//   - password: PKCS#12 password (ignored for other containers)
//
// Returns:
//   - [][]byte: Raw DER certificates, never empty on success
//   - error: ErrEmptyPackage, ErrDecodePackage, ErrParsePKCS7, ErrPKCS12Password
func (c *Certificate) DecodePackage(data []byte, password string) ([][]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyPackage
	}

	var (
		raws [][]byte
		err  error
	)
	if c.IsPEM(data) {
		raws, err = c.decodePEMPackage(data)
	} else {
		raws, err = c.decodeBinaryPackage(data, password)
	}
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrEmptyPackage
	}

	return raws, nil
}

// decodePEMPackage collects certificate blocks, expanding embedded PKCS7 blocks.
func (c *Certificate) decodePEMPackage(data []byte) ([][]byte, error) {
	var raws [][]byte

	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch {
		case block.Type == c.certBlockType:
			raws = append(raws, bytes.Clone(block.Bytes))
		case block.Type == pkcs7BlockType:
			certs, err := decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			raws = append(raws, certs...)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			// Key material shipped next to the chain is not part of the package.
		default:
			return nil, ErrInvalidBlockType
		}
	}

	return raws, nil
}

// decodeBinaryPackage tries PKCS7, then PKCS12, then concatenated DER.
func (c *Certificate) decodeBinaryPackage(data []byte, password string) ([][]byte, error) {
	if raws, err := decodePKCS7(data); err == nil {
		return raws, nil
	}

	raws, err := decodePKCS12(data, password)
	if err == nil {
		return raws, nil
	}
	if errors.Is(err, ErrPKCS12Password) {
		return nil, err
	}

	return splitDER(data)
}

// decodePKCS7 parses a PKCS7 structure using Cloudflare's library.
func decodePKCS7(data []byte) ([][]byte, error) {
	p, err := cfpkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParsePKCS7
	}

	certs := p.Content.SignedData.Certificates
	if len(certs) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	raws := make([][]byte, 0, len(certs))
	for _, cert := range certs {
		raws = append(raws, bytes.Clone(cert.Raw))
	}
	return raws, nil
}

// decodePKCS12 returns the end-entity certificate followed by its CA
// certificates, or the trusted certificates of a key-less trust store.
func decodePKCS12(data []byte, password string) ([][]byte, error) {
	_, leaf, cas, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, ErrPKCS12Password
		}

		trusted, tsErr := pkcs12.DecodeTrustStore(data, password)
		if tsErr != nil {
			if errors.Is(tsErr, pkcs12.ErrIncorrectPassword) {
				return nil, ErrPKCS12Password
			}
			return nil, fmt.Errorf("%w: %w", ErrDecodePackage, err)
		}
		if len(trusted) == 0 {
			return nil, ErrNoCertificatesInPKCS
		}

		raws := make([][]byte, 0, len(trusted))
		for _, cert := range trusted {
			raws = append(raws, bytes.Clone(cert.Raw))
		}
		return raws, nil
	}

	raws := make([][]byte, 0, len(cas)+1)
	raws = append(raws, bytes.Clone(leaf.Raw))
	for _, cert := range cas {
		raws = append(raws, bytes.Clone(cert.Raw))
	}
	return raws, nil
}

// splitDER splits back-to-back DER SEQUENCEs without decoding them.
func splitDER(data []byte) ([][]byte, error) {
	var raws [][]byte

	for len(data) > 0 {
		var raw asn1.RawValue
		rest, err := asn1.Unmarshal(data, &raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodePackage, err)
		}
		if raw.Class != asn1.ClassUniversal || raw.Tag != asn1.TagSequence || !raw.IsCompound {
			return nil, ErrDecodePackage
		}

		raws = append(raws, bytes.Clone(raw.FullBytes))
		data = rest
	}

	return raws, nil
}
