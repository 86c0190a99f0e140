// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain walks the issuance chain of an [X.509] certificate by
// subject name. It provides capabilities to:
//   - Build a leaf-first chain from a certificate store or an untrusted bundle.
//   - Bound the walk for input whose names may loop.
//   - Render a chain as an ASCII tree, a markdown table or JSON.
//   - Export a chain as PEM, DER or a certificates-only PKCS#7 structure.
//
// Issuance is decided by byte-exact comparison of the issuer name with the
// candidate subject name. Signatures are not verified.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
