// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
)

// BundleFinder resolves names within a decoded certificate bundle, so the
// chain walker can run over untrusted input without touching a store.
type BundleFinder struct {
	certs []*certdb.Certificate
}

// NewBundleFinder decodes every certificate of bundle.
//
// Parameters:
//   - bundle: Raw DER certificates
//
// Returns:
//   - *BundleFinder: Finder over the bundle, in bundle order
//   - error: certdb.ErrInvalidCertificate if a certificate does not decode
func NewBundleFinder(bundle [][]byte) (*BundleFinder, error) {
	certs := make([]*certdb.Certificate, 0, len(bundle))
	for i, der := range bundle {
		c, err := certdb.Decode(der)
		if err != nil {
			return nil, fmt.Errorf("bundle certificate %d: %w", i, err)
		}
		certs = append(certs, c)
	}
	return &BundleFinder{certs: certs}, nil
}

// Certificates returns the decoded bundle.
func (f *BundleFinder) Certificates() []*certdb.Certificate { return f.certs }

// Len returns the bundle size.
func (f *BundleFinder) Len() int { return len(f.certs) }

// FindByName returns the first bundle certificate whose subject equals subject.
func (f *BundleFinder) FindByName(subject []byte) (*certdb.Certificate, error) {
	for _, c := range f.certs {
		if bytes.Equal(c.RawSubject(), subject) {
			return c, nil
		}
	}
	return nil, certdb.ErrCertNotFound
}

// Finders tries each finder in order and returns the first match.
type Finders []NameFinder

// FindByName implements [NameFinder].
func (fs Finders) FindByName(subject []byte) (*certdb.Certificate, error) {
	for _, f := range fs {
		c, err := f.FindByName(subject)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, certdb.ErrCertNotFound) {
			return nil, err
		}
	}
	return nil, certdb.ErrCertNotFound
}
