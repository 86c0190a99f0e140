// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package bundle

import "errors"

var (
	// ErrPackageDecoding indicates an empty or malformed certificate package.
	// Nothing has been written to the store.
	ErrPackageDecoding = errors.New("bundle: failed to decode certificate package")

	// ErrLeafNotFound indicates that no leaf could be located in the bundle,
	// usually because a certificate failed to decode during the search.
	ErrLeafNotFound = errors.New("bundle: failed to locate leaf certificate in chain")

	// ErrCertificateConflict indicates that the user certificate is already in the store.
	ErrCertificateConflict = errors.New("bundle: user certificate already present")

	// ErrNicknameConflict indicates that the requested nickname belongs to a
	// certificate with a different subject.
	ErrNicknameConflict = errors.New("bundle: nickname already in use")

	// ErrInvalidRole indicates a leaf with neither a local private key nor a
	// CA extension, which can be imported neither as a user certificate nor as a CA.
	ErrInvalidRole = errors.New("bundle: leaf certificate has no matching key and is not a CA")

	// ErrUserCertImport indicates that the user certificate could not be stored.
	ErrUserCertImport = errors.New("bundle: failed to import user certificate")

	// ErrCAImport indicates a failure while importing CA certificates.
	// Certificates stored before the failure stay in the store.
	ErrCAImport = errors.New("bundle: failed to import CA certificate chain")

	// ErrLeafLookup indicates that the leaf could not be found after import.
	ErrLeafLookup = errors.New("bundle: imported leaf certificate not found")

	// ErrCertToPerm indicates that a single certificate could not be made permanent.
	ErrCertToPerm = errors.New("bundle: unable to insert certificate into permanent store")
)
