// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import (
	"bytes"
	"sync"
)

// temporaries is the in-process working set of temporary certificates,
// reference counted per key in creation order.
type temporaries struct {
	mu      sync.Mutex
	entries []*tempEntry
}

type tempEntry struct {
	cert *Certificate
	refs int
}

// acquire registers cert, or returns the already registered certificate with the same key.
func (t *temporaries) acquire(cert *Certificate) *Certificate {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.cert.Key == cert.Key {
			e.refs++
			return e.cert
		}
	}
	t.entries = append(t.entries, &tempEntry{cert: cert, refs: 1})
	return cert
}

// release drops one reference to key.
func (t *temporaries) release(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.cert.Key != key {
			continue
		}
		e.refs--
		if e.refs <= 0 {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
		}
		return
	}
}

// promote removes key from the working set once it became permanent.
func (t *temporaries) promote(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e.cert.Key == key {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

func (t *temporaries) byKey(key Key) *Certificate {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.cert.Key == key {
			return e.cert
		}
	}
	return nil
}

func (t *temporaries) byName(subject []byte) *Certificate {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if bytes.Equal(e.cert.RawSubject(), subject) {
			return e.cert
		}
	}
	return nil
}

func (t *temporaries) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
