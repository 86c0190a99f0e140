// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 certificate bundle importer.
// It implements a Cobra-based CLI with three commands: import stores a certificate package,
// chain builds and renders the issuance chain of a stored or packaged leaf in tree, table,
// JSON, PEM, DER or PKCS#7 form, and list shows the store with its trust flags.
// Every command loads the configuration, opens the certificate database and the local key
// directory, and reports progress through the logger package.
package cli
