// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package keystore answers whether a private key matching a certificate is
// held locally. A certificate with a local key is a user certificate and is
// imported bound to that key.
package keystore

import (
	"crypto"
	"crypto/x509"
	"errors"
	"sync"
)

var (
	// ErrInvalidKey indicates that a PEM block could not be parsed as a private key.
	ErrInvalidKey = errors.New("keystore: invalid private key")

	// ErrKeyPassword indicates that an encrypted private key could not be opened.
	ErrKeyPassword = errors.New("keystore: incorrect private key password")

	// ErrUnsupportedKey indicates a private key without a comparable public key.
	ErrUnsupportedKey = errors.New("keystore: unsupported private key type")
)

// KeyStore reports whether the private key for a certificate is held locally.
type KeyStore interface {
	HasLocalKey(cert *x509.Certificate) bool
}

// comparablePublicKey is implemented by every public key type in the standard library.
type comparablePublicKey interface {
	Equal(crypto.PublicKey) bool
}

// Memory is a [KeyStore] over a set of public keys held in memory.
//
// The zero value is an empty store ready for use.
type Memory struct {
	mu   sync.RWMutex
	keys []comparablePublicKey
}

// NewMemory creates an empty in-memory key store.
func NewMemory() *Memory { return &Memory{} }

// Add registers the public half of a private key.
//
// Parameters:
//   - key: Private key (must implement crypto.Signer or crypto.Decrypter)
//
// Returns:
//   - error: ErrUnsupportedKey if no public key can be derived
func (m *Memory) Add(key crypto.PrivateKey) error {
	pub, err := publicKeyOf(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.keys = append(m.keys, pub)
	m.mu.Unlock()
	return nil
}

// Len returns the number of keys held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// HasLocalKey implements [KeyStore].
func (m *Memory) HasLocalKey(cert *x509.Certificate) bool {
	if cert == nil || cert.PublicKey == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range m.keys {
		if k.Equal(cert.PublicKey) {
			return true
		}
	}
	return false
}

func publicKeyOf(key crypto.PrivateKey) (comparablePublicKey, error) {
	var pub crypto.PublicKey
	switch k := key.(type) {
	case crypto.Signer:
		pub = k.Public()
	case crypto.Decrypter:
		pub = k.Public()
	default:
		return nil, ErrUnsupportedKey
	}

	cmp, ok := pub.(comparablePublicKey)
	if !ok {
		return nil, ErrUnsupportedKey
	}
	return cmp, nil
}

// None is a [KeyStore] that holds no keys.
type None struct{}

// HasLocalKey always reports false.
func (None) HasLocalKey(*x509.Certificate) bool { return false }
