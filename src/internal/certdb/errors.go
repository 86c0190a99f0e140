// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb

import "errors"

var (
	// ErrCertNotFound is returned when no certificate matches a lookup.
	ErrCertNotFound = errors.New("certdb: certificate not found")

	// ErrCertAlreadyExists is returned when persisting a certificate whose key is already permanent.
	ErrCertAlreadyExists = errors.New("certdb: certificate already exists")

	// ErrInvalidCertificate is returned when raw bytes do not decode as an X.509 certificate.
	ErrInvalidCertificate = errors.New("certdb: invalid certificate")

	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("certdb: store is closed")
)
