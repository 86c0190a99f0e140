// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import (
	"bytes"
	"errors"
	"math/big"
	"sync"
)

// MemoryStore is a [Store] that keeps everything in process memory.
//
// Permanent certificates are returned in insertion order, which makes
// name lookups deterministic when several certificates share a subject.
type MemoryStore struct {
	mu     sync.RWMutex
	perms  []*Certificate
	byKey  map[Key]*Certificate
	temps  temporaries
	closed bool

	// FailPersist, when set, is consulted before every permanent write and
	// its error returned as is. Intended for tests.
	FailPersist func(cert *Certificate) error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[Key]*Certificate)}
}

// TemporaryCount returns the number of temporary certificates still held.
func (s *MemoryStore) TemporaryCount() int { return s.temps.len() }

// NewTemporary implements [Store].
func (s *MemoryStore) NewTemporary(der []byte) (*Certificate, error) {
	cert, err := Decode(der)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if perm, ok := s.byKey[cert.Key]; ok {
		return perm, nil
	}
	return s.temps.acquire(cert), nil
}

// DeleteTemporary implements [Store].
func (s *MemoryStore) DeleteTemporary(cert *Certificate) {
	if cert == nil || cert.Permanent {
		return
	}
	s.temps.release(cert.Key)
}

// FindByName implements [Store].
func (s *MemoryStore) FindByName(subject []byte) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	for _, c := range s.perms {
		if bytes.Equal(c.RawSubject(), subject) {
			return c, nil
		}
	}
	if c := s.temps.byName(subject); c != nil {
		return c, nil
	}
	return nil, ErrCertNotFound
}

// FindByIssuerAndSerial implements [Store].
func (s *MemoryStore) FindByIssuerAndSerial(issuer []byte, serial *big.Int) (*Certificate, error) {
	return s.FindByKey(KeyOf(issuer, serial))
}

// FindByKey implements [Store].
func (s *MemoryStore) FindByKey(key Key) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if c, ok := s.byKey[key]; ok {
		return c, nil
	}
	if c := s.temps.byKey(key); c != nil {
		return c, nil
	}
	return nil, ErrCertNotFound
}

// FindByNickname implements [Store].
func (s *MemoryStore) FindByNickname(nickname string) (*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	for _, c := range s.perms {
		if c.Nickname == nickname {
			return c, nil
		}
	}
	return nil, ErrCertNotFound
}

// NicknameConflict implements [Store].
func (s *MemoryStore) NicknameConflict(nickname string, subject []byte) (bool, error) {
	if nickname == "" {
		return false, nil
	}

	c, err := s.FindByNickname(nickname)
	switch {
	case errors.Is(err, ErrCertNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return !bytes.Equal(c.RawSubject(), subject), nil
}

// PersistAsPermanent implements [Store].
func (s *MemoryStore) PersistAsPermanent(cert *Certificate, nickname string, trust Trust) error {
	return s.persist(cert, nickname, trust, false)
}

// ImportBoundToKey implements [Store].
func (s *MemoryStore) ImportBoundToKey(cert *Certificate, nickname string) error {
	return s.persist(cert, nickname, Trust{}, true)
}

func (s *MemoryStore) persist(cert *Certificate, nickname string, trust Trust, userCert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.byKey[cert.Key]; ok {
		return ErrCertAlreadyExists
	}
	if s.FailPersist != nil {
		if err := s.FailPersist(cert); err != nil {
			return err
		}
	}

	cert.Nickname = nickname
	cert.Trust = trust
	cert.UserCert = userCert
	cert.Permanent = true

	s.temps.promote(cert.Key)
	s.perms = append(s.perms, cert)
	s.byKey[cert.Key] = cert
	return nil
}

// SetTrust implements [Store].
func (s *MemoryStore) SetTrust(cert *Certificate, trust Trust) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	perm, ok := s.byKey[cert.Key]
	if !ok {
		return ErrCertNotFound
	}
	perm.Trust = trust
	cert.Trust = trust
	return nil
}

// List implements [Store].
func (s *MemoryStore) List() ([]*Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]*Certificate, len(s.perms))
	copy(out, s.perms)
	return out, nil
}

// Close implements [Store].
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
