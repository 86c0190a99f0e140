// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
)

// Key identifies a certificate in a store. It is derived from the issuer
// name and serial number, so two encodings of the same issued certificate
// share a key.
type Key string

// KeyOf derives the store key for an issuer name and serial number.
func KeyOf(rawIssuer []byte, serial *big.Int) Key {
	sum := sha256.Sum256(rawIssuer)
	return Key(serial.Text(16) + ":" + hex.EncodeToString(sum[:]))
}

// KeyFromDER derives the store key of a raw certificate.
func KeyFromDER(der []byte) (Key, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCertificate, err)
	}
	return KeyOf(cert.RawIssuer, cert.SerialNumber), nil
}

// TrustFlag is the trust a store grants a certificate for one usage class.
type TrustFlag uint8

const (
	// NotCA grants no CA trust.
	NotCA TrustFlag = iota
	// ValidCA trusts the certificate as an issuer.
	ValidCA
)

// Trust holds per-usage-class trust flags.
type Trust struct {
	SSL           TrustFlag `json:"ssl"`
	Email         TrustFlag `json:"email"`
	ObjectSigning TrustFlag `json:"objectSigning"`
}

// TrustAll is CA trust for every usage class.
var TrustAll = Trust{SSL: ValidCA, Email: ValidCA, ObjectSigning: ValidCA}

// TrustFor builds CA trust for each usage class set in usage.
func TrustFor(usage x509certs.UsageType) Trust {
	var t Trust
	if usage.Has(x509certs.SSLCA) {
		t.SSL = ValidCA
	}
	if usage.Has(x509certs.EmailCA) {
		t.Email = ValidCA
	}
	if usage.Has(x509certs.ObjectSigningCA) {
		t.ObjectSigning = ValidCA
	}
	return t
}

// String renders the flags as "ssl,email,object-signing" with C marking a trusted CA.
func (t Trust) String() string {
	flag := func(f TrustFlag) string {
		if f == ValidCA {
			return "C"
		}
		return ""
	}
	return strings.Join([]string{flag(t.SSL), flag(t.Email), flag(t.ObjectSigning)}, ",")
}

// Certificate is a decoded view of one DER certificate as held by a store.
//
// A Certificate is either temporary (known only to this process, released
// with [Store.DeleteTemporary]) or permanent (persisted with trust flags and
// owned by the store). Callers must treat it as read-only.
type Certificate struct {
	X509      *x509.Certificate
	Key       Key
	Nickname  string
	IsCA      bool
	Usage     x509certs.UsageType
	Trust     Trust
	UserCert  bool
	Permanent bool
}

// Decode parses raw DER into a Certificate that belongs to no store.
func Decode(der []byte) (*Certificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCertificate, err)
	}

	isCA, usage := x509certs.CAUsage(cert)
	return &Certificate{
		X509:  cert,
		Key:   KeyOf(cert.RawIssuer, cert.SerialNumber),
		IsCA:  isCA,
		Usage: usage,
	}, nil
}

// Raw returns the DER encoding.
func (c *Certificate) Raw() []byte { return c.X509.Raw }

// RawSubject returns the DER-encoded subject name.
func (c *Certificate) RawSubject() []byte { return c.X509.RawSubject }

// RawIssuer returns the DER-encoded issuer name.
func (c *Certificate) RawIssuer() []byte { return c.X509.RawIssuer }

// SerialNumber returns the serial number.
func (c *Certificate) SerialNumber() *big.Int { return c.X509.SerialNumber }

// Issues reports whether c issued other, comparing names byte for byte.
func (c *Certificate) Issues(other *Certificate) bool {
	return bytes.Equal(c.RawSubject(), other.RawIssuer())
}

// IsSelfSigned reports whether the certificate names itself as issuer.
func (c *Certificate) IsSelfSigned() bool { return c.Issues(c) }
