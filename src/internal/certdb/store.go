// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import "math/big"

// Store is a certificate and trust database.
//
// Lookups see both permanent certificates and the temporary certificates
// created through NewTemporary that have not been released yet. Permanent
// certificates win when both exist.
//
// Implementations must be safe for concurrent use; callers do no locking of
// their own.
type Store interface {
	// NewTemporary decodes der into a temporary certificate. If the same
	// certificate is already permanent, the permanent one is returned and
	// DeleteTemporary on it is a no-op.
	NewTemporary(der []byte) (*Certificate, error)

	// DeleteTemporary releases a certificate obtained from NewTemporary.
	DeleteTemporary(cert *Certificate)

	// FindByName returns a certificate whose subject equals subject byte for byte.
	FindByName(subject []byte) (*Certificate, error)

	// FindByIssuerAndSerial returns the certificate with the given issuer name and serial number.
	FindByIssuerAndSerial(issuer []byte, serial *big.Int) (*Certificate, error)

	// FindByKey returns the certificate stored under key.
	FindByKey(key Key) (*Certificate, error)

	// FindByNickname returns the permanent certificate carrying nickname.
	FindByNickname(nickname string) (*Certificate, error)

	// NicknameConflict reports whether nickname already belongs to a
	// certificate with a different subject. An empty nickname never conflicts.
	NicknameConflict(nickname string, subject []byte) (bool, error)

	// PersistAsPermanent stores cert permanently with the given nickname and trust.
	PersistAsPermanent(cert *Certificate, nickname string, trust Trust) error

	// ImportBoundToKey stores cert permanently as a user certificate whose
	// private key is held locally.
	ImportBoundToKey(cert *Certificate, nickname string) error

	// SetTrust replaces the trust flags of a permanent certificate.
	SetTrust(cert *Certificate, trust Trust) error

	// List returns every permanent certificate.
	List() ([]*Certificate, error)

	// Close releases the store.
	Close() error
}
