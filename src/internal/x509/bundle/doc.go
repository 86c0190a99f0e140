// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package bundle imports certificate packages into a certificate store.
//
// A package is an unordered bag of certificates. The importer finds its
// leaf, either the certificate whose private key is held locally or the one
// at the bottom of the issuance hierarchy, stores a keyed leaf as a user
// certificate and stores every other certificate as a CA with trust flags
// derived from its CA extensions.
//
// Issuance is decided by byte-exact comparison of issuer and subject names.
// Nothing is verified cryptographically.
package bundle
