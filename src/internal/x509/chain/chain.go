// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"errors"
	"fmt"
	"sync"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
)

// ErrNilLeaf indicates that a chain was requested for a nil certificate.
var ErrNilLeaf = errors.New("x509chain: leaf certificate is nil")

// NameFinder resolves a certificate by its subject name.
//
// [certdb.Store] satisfies it, as do [BundleFinder] and [Finders].
// Implementations report a missing certificate with [certdb.ErrCertNotFound].
type NameFinder interface {
	FindByName(subject []byte) (*certdb.Certificate, error)
}

// Chain is an issuance chain ordered leaf first, ascending toward the root.
//
// The last element is either a self-signed root or the last ancestor that
// could be resolved.
type Chain struct {
	mu    sync.RWMutex
	Certs []*certdb.Certificate
	*x509certs.Certificate
}

// New creates a Chain holding only leaf.
func New(leaf *certdb.Certificate) *Chain {
	return &Chain{
		Certs:       []*certdb.Certificate{leaf},
		Certificate: x509certs.New(),
	}
}

// Build walks the issuers of leaf through finder until it reaches a
// self-signed certificate or an issuer that cannot be found.
//
// The walk has no cycle guard and is meant for trusted stores, where every
// stored chain is acyclic. Use [BuildBounded] over untrusted input.
//
// Parameters:
//   - leaf: Certificate to start from
//   - finder: Issuer lookup
//
// Returns:
//   - *Chain: Chain starting with leaf, never empty
//   - error: ErrNilLeaf, or a lookup error other than certdb.ErrCertNotFound
func Build(leaf *certdb.Certificate, finder NameFinder) (*Chain, error) {
	return build(leaf, finder, 0)
}

// BuildBounded is [Build] with the chain capped at limit certificates, which
// guarantees termination when names in the input loop back on themselves.
// Walking an untrusted bundle, limit is the bundle size.
//
// Parameters:
//   - leaf: Certificate to start from
//   - finder: Issuer lookup
//   - limit: Maximum chain length (values below 1 are treated as 1)
//
// Returns:
//   - *Chain: Chain starting with leaf, never empty
//   - error: ErrNilLeaf, or a lookup error other than certdb.ErrCertNotFound
func BuildBounded(leaf *certdb.Certificate, finder NameFinder, limit int) (*Chain, error) {
	return build(leaf, finder, max(limit, 1))
}

func build(leaf *certdb.Certificate, finder NameFinder, limit int) (*Chain, error) {
	if leaf == nil {
		return nil, ErrNilLeaf
	}

	ch := New(leaf)
	current := leaf
	for !current.IsSelfSigned() {
		if limit > 0 && len(ch.Certs) >= limit {
			break
		}

		issuer, err := finder.FindByName(current.RawIssuer())
		if errors.Is(err, certdb.ErrCertNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("x509chain: resolve issuer of %q: %w", current.X509.Subject.String(), err)
		}

		ch.Certs = append(ch.Certs, issuer)
		current = issuer
	}

	return ch, nil
}

// Leaf returns the first certificate of the chain.
func (ch *Chain) Leaf() *certdb.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.Certs[0]
}

// Len returns the number of certificates in the chain.
func (ch *Chain) Len() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.Certs)
}

// IsRootNode reports whether cert is a root, that is, self-signed by name.
func (ch *Chain) IsRootNode(cert *certdb.Certificate) bool {
	return cert.IsSelfSigned()
}

// IsComplete reports whether the chain ends in a root.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) IsComplete() bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.IsRootNode(ch.Certs[len(ch.Certs)-1])
}

// FilterIntermediates returns every certificate between the leaf and the
// root. An incomplete chain has no root, so its last certificate counts as
// an intermediate.
//
// Returns:
//   - []*certdb.Certificate: Intermediate certificates, or nil if none
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) FilterIntermediates() []*certdb.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	end := len(ch.Certs)
	if ch.IsRootNode(ch.Certs[end-1]) {
		end--
	}
	if end <= 1 {
		return nil
	}
	return ch.Certs[1:end]
}

// X509Certs returns the parsed certificates of the chain in order.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) X509Certs() []*x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	out := make([]*x509.Certificate, len(ch.Certs))
	for i, c := range ch.Certs {
		out[i] = c.X509
	}
	return out
}

// ExportPEM encodes the chain as concatenated PEM blocks.
func (ch *Chain) ExportPEM() []byte {
	return ch.EncodeMultiplePEM(ch.X509Certs())
}

// ExportDER encodes the chain as concatenated DER certificates.
func (ch *Chain) ExportDER() []byte {
	return ch.EncodeMultipleDER(ch.X509Certs())
}

// ExportPKCS7 encodes the chain as a certificates-only PKCS#7 structure.
func (ch *Chain) ExportPKCS7() ([]byte, error) {
	return ch.EncodePKCS7(ch.X509Certs())
}
