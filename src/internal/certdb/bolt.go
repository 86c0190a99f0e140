// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketCertificates = []byte("certificates")
	bucketSubjects     = []byte("subjects")
	bucketNicknames    = []byte("nicknames")
)

// record is the persisted form of a permanent certificate.
type record struct {
	DER      []byte    `json:"der"`
	Nickname string    `json:"nickname,omitempty"`
	Trust    Trust     `json:"trust"`
	UserCert bool      `json:"userCert,omitempty"`
	Added    time.Time `json:"added"`
}

// BoltStore is a [Store] persisted in a bbolt database file.
//
// Permanent certificates live in the database; temporary certificates live
// in process memory only and vanish with the process.
type BoltStore struct {
	db     *bbolt.DB
	temps  temporaries
	closed atomic.Bool
}

// NewBoltStore opens (or creates) the database at dbPath.
//
// Parameters:
//   - dbPath: Path of the database file
//
// Returns:
//   - *BoltStore: Opened store
//   - error: Error if the file cannot be opened or initialized
func NewBoltStore(dbPath string) (*BoltStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open certificate database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCertificates, bucketSubjects, bucketNicknames} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// TemporaryCount returns the number of temporary certificates still held.
func (s *BoltStore) TemporaryCount() int { return s.temps.len() }

func subjectPrefix(subject []byte) []byte {
	sum := sha256.Sum256(subject)
	return []byte(hex.EncodeToString(sum[:]) + "/")
}

func (s *BoltStore) view(fn func(tx *bbolt.Tx) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

// load decodes the record stored under key, or returns nil if there is none.
func load(tx *bbolt.Tx, key []byte) (*Certificate, error) {
	data := tx.Bucket(bucketCertificates).Get(key)
	if data == nil {
		return nil, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal certificate %s: %w", key, err)
	}

	cert, err := Decode(rec.DER)
	if err != nil {
		return nil, err
	}
	cert.Nickname = rec.Nickname
	cert.Trust = rec.Trust
	cert.UserCert = rec.UserCert
	cert.Permanent = true
	return cert, nil
}

// NewTemporary implements [Store].
func (s *BoltStore) NewTemporary(der []byte) (*Certificate, error) {
	cert, err := Decode(der)
	if err != nil {
		return nil, err
	}

	var perm *Certificate
	err = s.view(func(tx *bbolt.Tx) error {
		var err error
		perm, err = load(tx, []byte(cert.Key))
		return err
	})
	if err != nil {
		return nil, err
	}
	if perm != nil {
		return perm, nil
	}
	return s.temps.acquire(cert), nil
}

// DeleteTemporary implements [Store].
func (s *BoltStore) DeleteTemporary(cert *Certificate) {
	if cert == nil || cert.Permanent {
		return
	}
	s.temps.release(cert.Key)
}

// FindByName implements [Store].
func (s *BoltStore) FindByName(subject []byte) (*Certificate, error) {
	var found *Certificate
	err := s.view(func(tx *bbolt.Tx) error {
		prefix := subjectPrefix(subject)
		c := tx.Bucket(bucketSubjects).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			cert, err := load(tx, k[len(prefix):])
			if err != nil {
				return err
			}
			if cert != nil && bytes.Equal(cert.RawSubject(), subject) {
				found = cert
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}
	if c := s.temps.byName(subject); c != nil {
		return c, nil
	}
	return nil, ErrCertNotFound
}

// FindByIssuerAndSerial implements [Store].
func (s *BoltStore) FindByIssuerAndSerial(issuer []byte, serial *big.Int) (*Certificate, error) {
	return s.FindByKey(KeyOf(issuer, serial))
}

// FindByKey implements [Store].
func (s *BoltStore) FindByKey(key Key) (*Certificate, error) {
	var found *Certificate
	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		found, err = load(tx, []byte(key))
		return err
	})
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}
	if c := s.temps.byKey(key); c != nil {
		return c, nil
	}
	return nil, ErrCertNotFound
}

// FindByNickname implements [Store].
func (s *BoltStore) FindByNickname(nickname string) (*Certificate, error) {
	var found *Certificate
	err := s.view(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucketNicknames).Get([]byte(nickname))
		if key == nil {
			return nil
		}
		var err error
		found, err = load(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrCertNotFound
	}
	return found, nil
}

// NicknameConflict implements [Store].
func (s *BoltStore) NicknameConflict(nickname string, subject []byte) (bool, error) {
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
func (s *BoltStore) PersistAsPermanent(cert *Certificate, nickname string, trust Trust) error {
	return s.persist(cert, nickname, trust, false)
}

// ImportBoundToKey implements [Store].
func (s *BoltStore) ImportBoundToKey(cert *Certificate, nickname string) error {
	return s.persist(cert, nickname, Trust{}, true)
}

func (s *BoltStore) persist(cert *Certificate, nickname string, trust Trust, userCert bool) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	data, err := json.Marshal(record{
		DER:      cert.Raw(),
		Nickname: nickname,
		Trust:    trust,
		UserCert: userCert,
		Added:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal certificate: %w", err)
	}

	key := []byte(cert.Key)
	err = s.db.Update(func(tx *bbolt.Tx) error {
		certs := tx.Bucket(bucketCertificates)
		if certs.Get(key) != nil {
			return ErrCertAlreadyExists
		}
		if err := certs.Put(key, data); err != nil {
			return err
		}

		index := append(subjectPrefix(cert.RawSubject()), key...)
		if err := tx.Bucket(bucketSubjects).Put(index, key); err != nil {
			return err
		}

		// The first certificate given a nickname keeps it.
		nicknames := tx.Bucket(bucketNicknames)
		if nickname == "" || nicknames.Get([]byte(nickname)) != nil {
			return nil
		}
		return nicknames.Put([]byte(nickname), key)
	})
	if err != nil {
		return err
	}

	cert.Nickname = nickname
	cert.Trust = trust
	cert.UserCert = userCert
	cert.Permanent = true
	s.temps.promote(cert.Key)
	return nil
}

// SetTrust implements [Store].
func (s *BoltStore) SetTrust(cert *Certificate, trust Trust) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}

	key := []byte(cert.Key)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		certs := tx.Bucket(bucketCertificates)
		data := certs.Get(key)
		if data == nil {
			return ErrCertNotFound
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal certificate %s: %w", key, err)
		}
		rec.Trust = trust

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal certificate: %w", err)
		}
		return certs.Put(key, data)
	})
	if err != nil {
		return err
	}

	cert.Trust = trust
	return nil
}

// List implements [Store].
func (s *BoltStore) List() ([]*Certificate, error) {
	var out []*Certificate
	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCertificates).ForEach(func(k, _ []byte) error {
			cert, err := load(tx, k)
			if err != nil {
				return err
			}
			out = append(out, cert)
			return nil
		})
	})
	return out, err
}

// Close implements [Store].
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
