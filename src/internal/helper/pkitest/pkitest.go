// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pkitest builds throwaway certificate hierarchies for tests.
package pkitest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"
)

var serial atomic.Int64

// Netscape certificate type bits.
const (
	NSSSLClient       byte = 0x80
	NSSSLServer       byte = 0x40
	NSEmail           byte = 0x20
	NSObjectSigning   byte = 0x10
	NSSSLCA           byte = 0x04
	NSEmailCA         byte = 0x02
	NSObjectSigningCA byte = 0x01
)

// Options tunes a generated certificate.
type Options struct {
	// CA marks the certificate as a CA in its basic constraints.
	CA bool
	// NoBasicConstraints omits the basic constraints extension entirely.
	NoBasicConstraints bool
	// NSCertType adds a Netscape certificate type extension when non-zero.
	NSCertType byte
	// ExtKeyUsage sets extended key usages.
	ExtKeyUsage []x509.ExtKeyUsage
	// Organization is added to the subject.
	Organization string
}

// Cert is a generated certificate with its key.
type Cert struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
	DER  []byte
}

// SelfSigned creates a self-signed certificate.
func SelfSigned(t testing.TB, cn string, opts Options) *Cert {
	t.Helper()
	return create(t, nil, cn, opts)
}

// Issue creates a certificate for cn signed by parent.
func Issue(t testing.TB, parent *Cert, cn string, opts Options) *Cert {
	t.Helper()
	return create(t, parent, cn, opts)
}

// Chain returns a leaf-first chain of the given length: a leaf, length-2
// intermediates and a self-signed root. A length of 1 yields a lone root.
func Chain(t testing.TB, length int) []*Cert {
	t.Helper()
	if length < 1 {
		t.Fatalf("pkitest: chain length must be positive, got %d", length)
	}

	parent := SelfSigned(t, "Test Root CA", Options{CA: true})
	chain := []*Cert{parent}
	for i := 1; i < length-1; i++ {
		parent = Issue(t, parent, fmt.Sprintf("Test Intermediate CA %d", i), Options{CA: true})
		chain = append(chain, parent)
	}
	if length > 1 {
		chain = append(chain, Issue(t, parent, "leaf.example.com", Options{
			ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		}))
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// DERs returns the raw DER of each certificate, in order.
func DERs(certs ...*Cert) [][]byte {
	out := make([][]byte, 0, len(certs))
	for _, c := range certs {
		out = append(out, c.DER)
	}
	return out
}

func create(t testing.TB, parent *Cert, cn string, opts Options) *Cert {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("pkitest: generate key: %v", err)
	}

	subject := pkix.Name{CommonName: cn}
	if opts.Organization != "" {
		subject.Organization = []string{opts.Organization}
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1000 + serial.Add(1)),
		Subject:      subject,
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  opts.ExtKeyUsage,
	}
	if !opts.NoBasicConstraints {
		tmpl.BasicConstraintsValid = true
		tmpl.IsCA = opts.CA
	}
	if opts.CA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign
	}
	if opts.NSCertType != 0 {
		value, err := asn1.Marshal(asn1.BitString{Bytes: []byte{opts.NSCertType}, BitLength: 8})
		if err != nil {
			t.Fatalf("pkitest: marshal netscape cert type: %v", err)
		}
		tmpl.ExtraExtensions = append(tmpl.ExtraExtensions, pkix.Extension{
			Id:    asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1},
			Value: value,
		})
	}

	signerCert, signerKey := tmpl, key
	if parent != nil {
		signerCert, signerKey = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signerKey)
	if err != nil {
		t.Fatalf("pkitest: create certificate %q: %v", cn, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("pkitest: parse certificate %q: %v", cn, err)
	}

	return &Cert{Cert: cert, Key: key, DER: der}
}
