// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/asn1"
	"strings"
)

// UsageType is a bitmask of the usage classes a CA certificate may issue for.
//
// The bit values match the CA bits of the Netscape certificate type extension,
// so the extension's first octet can be masked directly.
type UsageType uint8

const (
	// ObjectSigningCA allows the CA to issue object (code) signing certificates.
	ObjectSigningCA UsageType = 0x01
	// EmailCA allows the CA to issue S/MIME certificates.
	EmailCA UsageType = 0x02
	// SSLCA allows the CA to issue TLS client and server certificates.
	SSLCA UsageType = 0x04

	// AllCA is every usage class.
	AllCA = SSLCA | EmailCA | ObjectSigningCA
)

// oidNetscapeCertType is the legacy Netscape certificate type extension.
var oidNetscapeCertType = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}

// Has reports whether every bit of want is set.
func (u UsageType) Has(want UsageType) bool { return u&want == want }

// String returns a comma separated list of usage classes, or "none".
func (u UsageType) String() string {
	var parts []string
	if u.Has(SSLCA) {
		parts = append(parts, "ssl")
	}
	if u.Has(EmailCA) {
		parts = append(parts, "email")
	}
	if u.Has(ObjectSigningCA) {
		parts = append(parts, "object-signing")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// CAUsage reports whether cert presents a CA extension and, if so, the usage
// classes it is a CA for.
//
// A certificate is a CA when its basic constraints say so or when its Netscape
// certificate type carries at least one CA bit. The usage mask comes from the
// Netscape certificate type when it has CA bits; otherwise a basic-constraints
// CA is classified by its extended key usages, and a CA without extended key
// usages is a CA for every class.
//
// Parameters:
//   - cert: Certificate to classify
//
// Returns:
//   - bool: true if the certificate presents a CA extension
//   - UsageType: CA usage classes (zero when not a CA)
func CAUsage(cert *x509.Certificate) (bool, UsageType) {
	nsType, hasNSType := netscapeCertType(cert)
	nsCA := nsType & AllCA

	basicCA := cert.BasicConstraintsValid && cert.IsCA
	if !basicCA && nsCA == 0 {
		return false, 0
	}

	if hasNSType && nsCA != 0 {
		return true, nsCA
	}

	return true, usageFromExtKeyUsage(cert)
}

// usageFromExtKeyUsage maps extended key usages of a CA onto usage classes.
func usageFromExtKeyUsage(cert *x509.Certificate) UsageType {
	if len(cert.ExtKeyUsage) == 0 && len(cert.UnknownExtKeyUsage) == 0 {
		return AllCA
	}

	var usage UsageType
	for _, eku := range cert.ExtKeyUsage {
		switch eku {
		case x509.ExtKeyUsageAny:
			return AllCA
		case x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth:
			usage |= SSLCA
		case x509.ExtKeyUsageEmailProtection:
			usage |= EmailCA
		case x509.ExtKeyUsageCodeSigning:
			usage |= ObjectSigningCA
		}
	}
	return usage
}

// netscapeCertType returns the first octet of the Netscape certificate type
// extension, if present and well formed.
func netscapeCertType(cert *x509.Certificate) (UsageType, bool) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidNetscapeCertType) {
			continue
		}

		var bits asn1.BitString
		if rest, err := asn1.Unmarshal(ext.Value, &bits); err != nil || len(rest) != 0 {
			return 0, false
		}
		if len(bits.Bytes) == 0 {
			return 0, true
		}
		return UsageType(bits.Bytes[0]), true
	}
	return 0, false
}
