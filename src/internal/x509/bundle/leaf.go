// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package bundle

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/metrics"
)

// LocateLeaf returns the index of the leaf certificate of bundle.
//
// When preferUserCert is set, the first certificate whose private key is
// held locally is the leaf. Otherwise, or when no key matches, the leaf is
// found structurally: starting at index 0, the walk repeatedly moves to the
// first unvisited certificate issued by the current one and stops at a
// certificate that issued nothing left in the bundle.
//
// Every temporary certificate created during the search is released before
// LocateLeaf returns.
//
// Parameters:
//   - bundle: Raw DER certificates in package order
//   - preferUserCert: Try the key match before the structural search
//
// Returns:
//   - int: Index of the leaf in bundle
//   - error: ErrLeafNotFound for an empty bundle or an undecodable
//     certificate, otherwise the store error
func (im *Importer) LocateLeaf(bundle [][]byte, preferUserCert bool) (int, error) {
	index, _, err := im.locateLeaf(bundle, preferUserCert)
	return index, err
}

func (im *Importer) locateLeaf(bundle [][]byte, preferUserCert bool) (int, string, error) {
	switch len(bundle) {
	case 0:
		return -1, "", fmt.Errorf("%w: empty bundle", ErrLeafNotFound)
	case 1:
		return 0, metrics.StrategySingle, nil
	}

	if preferUserCert {
		index, err := im.keyMatch(bundle)
		if err != nil {
			return -1, "", leafError(err)
		}
		if index >= 0 {
			return index, metrics.StrategyKeyMatch, nil
		}
	}

	index, err := im.bottomOf(bundle)
	if err != nil {
		return -1, "", leafError(err)
	}
	return index, metrics.StrategyStructural, nil
}

// leafError reports an undecodable certificate as ErrLeafNotFound. Store
// failures are returned as they are.
func leafError(err error) error {
	if errors.Is(err, certdb.ErrInvalidCertificate) {
		return fmt.Errorf("%w: %w", ErrLeafNotFound, err)
	}
	return err
}

// keyMatch returns the index of the first certificate with a local key, or -1.
func (im *Importer) keyMatch(bundle [][]byte) (int, error) {
	for i, der := range bundle {
		found, err := im.hasLocalKey(der)
		if err != nil {
			return -1, fmt.Errorf("certificate %d: %w", i, err)
		}
		if found {
			return i, nil
		}
	}
	return -1, nil
}

func (im *Importer) hasLocalKey(der []byte) (bool, error) {
	cert, err := im.store.NewTemporary(der)
	if err != nil {
		return false, err
	}
	defer im.store.DeleteTemporary(cert)

	return im.keys.HasLocalKey(cert.X509), nil
}

// bottomOf walks issued certificates from index 0 down to the bottom of the hierarchy.
func (im *Importer) bottomOf(bundle [][]byte) (int, error) {
	visited := make([]bool, len(bundle))
	visited[0] = true

	current := 0
	for {
		next, err := im.firstIssuedBy(bundle, visited, current)
		if err != nil {
			return -1, err
		}
		if next < 0 {
			return current, nil
		}
		visited[next] = true
		current = next
	}
}

// firstIssuedBy returns the first unvisited index issued by bundle[current], or -1.
func (im *Importer) firstIssuedBy(bundle [][]byte, visited []bool, current int) (int, error) {
	issuer, err := im.store.NewTemporary(bundle[current])
	if err != nil {
		return -1, fmt.Errorf("certificate %d: %w", current, err)
	}
	defer im.store.DeleteTemporary(issuer)

	for i, der := range bundle {
		if visited[i] {
			continue
		}

		candidate, err := im.store.NewTemporary(der)
		if err != nil {
			return -1, fmt.Errorf("certificate %d: %w", i, err)
		}
		issued := issuer.Issues(candidate)
		im.store.DeleteTemporary(candidate)

		if issued {
			return i, nil
		}
	}
	return -1, nil
}
