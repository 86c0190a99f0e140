// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package keystore

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/youmark/pkcs8"
)

// keyExtensions lists the file extensions scanned by [LoadDir].
var keyExtensions = []string{".pem", ".key"}

// ParsePrivateKeysPEM parses every private key block in data. Blocks of any
// other type are ignored.
//
// Supported block types:
//   - RSA PRIVATE KEY (PKCS#1)
//   - EC PRIVATE KEY (SEC 1)
//   - PRIVATE KEY (PKCS#8)
//   - ENCRYPTED PRIVATE KEY (PKCS#8, opened with password)
//
// Parameters:
//   - data: PEM data
//   - password: Password for encrypted PKCS#8 blocks
//
// Returns:
//   - []crypto.PrivateKey: Parsed keys, in file order
//   - error: ErrInvalidKey or ErrKeyPassword
func ParsePrivateKeysPEM(data []byte, password string) ([]crypto.PrivateKey, error) {
	var keys []crypto.PrivateKey

	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		var (
			key crypto.PrivateKey
			err error
		)
		switch block.Type {
		case "RSA PRIVATE KEY":
			key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		case "EC PRIVATE KEY":
			key, err = x509.ParseECPrivateKey(block.Bytes)
		case "PRIVATE KEY":
			key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes)
		case "ENCRYPTED PRIVATE KEY":
			if password == "" {
				return nil, ErrKeyPassword
			}
			key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(password))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrKeyPassword, err)
			}
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// LoadDir builds a [Memory] key store from every *.pem and *.key file in
// dir. Files holding no private key are skipped; a key that fails to parse
// fails the load.
//
// Parameters:
//   - dir: Directory to scan (not recursive)
//   - password: Password for encrypted keys
//
// Returns:
//   - *Memory: Key store with the public half of every key found
//   - error: Error reading the directory or parsing a key
func LoadDir(dir, password string) (*Memory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	store := NewMemory()
	for _, entry := range entries {
		if entry.IsDir() || !hasKeyExtension(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		keys, err := ParsePrivateKeysPEM(data, password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, key := range keys {
			if err := store.Add(key); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	return store, nil
}

func hasKeyExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range keyExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
