// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs provides specialized encoding and decoding operations for [X.509] certificates.
// It splits certificate packages ([PEM], [PKCS7], [PKCS12] or concatenated DER) into raw
// certificates without parsing them, encodes chains for export (including degenerate PKCS7),
// and classifies CA certificates into usage classes from their basic constraints,
// Netscape certificate type and extended key usage extensions.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PKCS12]: https://grokipedia.com/page/PKCS_12
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
