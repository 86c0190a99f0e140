// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/pkitest"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
)

func TestDecodePackage(t *testing.T) {
	decoder := x509certs.New()
	chain := pkitest.Chain(t, 3)
	leaf, inter, root := chain[0], chain[1], chain[2]

	keyDER, err := x509.MarshalPKCS8PrivateKey(leaf.Key)
	require.NoError(t, err)

	var pemWithKey []byte
	pemWithKey = append(pemWithKey, decoder.EncodeRawPEM(inter.DER)...)
	pemWithKey = append(pemWithKey, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})...)
	pemWithKey = append(pemWithKey, decoder.EncodeRawPEM(leaf.DER)...)

	p7, err := decoder.EncodePKCS7([]*x509.Certificate{root.Cert, leaf.Cert, inter.Cert})
	require.NoError(t, err)

	pemP7 := pem.EncodeToMemory(&pem.Block{Type: "PKCS7", Bytes: p7})

	pfx, err := pkcs12.Modern.Encode(leaf.Key, leaf.Cert, []*x509.Certificate{inter.Cert, root.Cert}, "changeit")
	require.NoError(t, err)

	trustStore, err := pkcs12.Modern.EncodeTrustStore([]*x509.Certificate{root.Cert, inter.Cert}, "changeit")
	require.NoError(t, err)

	var concatenated []byte
	for _, c := range []*pkitest.Cert{inter, root, leaf} {
		concatenated = append(concatenated, c.DER...)
	}

	tests := []struct {
		name     string
		input    []byte
		password string
		expected [][]byte
	}{
		{
			name:     "PEM Bundle With Private Key",
			input:    pemWithKey,
			expected: pkitest.DERs(inter, leaf),
		},
		{
			name:     "PKCS7 DER",
			input:    p7,
			expected: pkitest.DERs(root, leaf, inter),
		},
		{
			name:     "PKCS7 PEM",
			input:    pemP7,
			expected: pkitest.DERs(root, leaf, inter),
		},
		{
			name:     "PKCS12 With Key",
			input:    pfx,
			password: "changeit",
			expected: pkitest.DERs(leaf, inter, root),
		},
		{
			name:     "PKCS12 Trust Store",
			input:    trustStore,
			password: "changeit",
			expected: pkitest.DERs(root, inter),
		},
		{
			name:     "Concatenated DER",
			input:    concatenated,
			expected: pkitest.DERs(inter, root, leaf),
		},
		{
			name:     "Single DER",
			input:    leaf.DER,
			expected: pkitest.DERs(leaf),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := decoder.DecodePackage(tt.input, tt.password)
			require.NoError(t, err, "DecodePackage() error")
			assert.Equal(t, tt.expected, raws)
		})
	}
}

func TestDecodePackage_Errors(t *testing.T) {
	decoder := x509certs.New()
	leaf := pkitest.SelfSigned(t, "p12", pkitest.Options{})

	pfx, err := pkcs12.Modern.Encode(leaf.Key, leaf.Cert, nil, "right")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		password string
		expected error
	}{
		{name: "Empty", input: nil, expected: x509certs.ErrEmptyPackage},
		{name: "Whitespace", input: []byte(" \n\t"), expected: x509certs.ErrEmptyPackage},
		{name: "Unknown PEM Block", input: []byte(invalidPEM), expected: x509certs.ErrInvalidBlockType},
		{name: "Garbage", input: []byte("definitely not a package"), expected: x509certs.ErrDecodePackage},
		{name: "Non-Sequence DER", input: []byte{0x02, 0x01, 0x05}, expected: x509certs.ErrDecodePackage},
		{name: "Wrong PKCS12 Password", input: pfx, password: "wrong", expected: x509certs.ErrPKCS12Password},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.DecodePackage(tt.input, tt.password)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestDecodePackage_KeepsMalformedBodies(t *testing.T) {
	// A structurally valid SEQUENCE that is not a certificate must survive
	// splitting so the importer can report it at its position in the chain.
	bogus := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	leaf := pkitest.SelfSigned(t, "ok", pkitest.Options{CA: true})

	raws, err := x509certs.New().DecodePackage(append(append([]byte{}, leaf.DER...), bogus...), "")
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, bogus, raws[1])

	_, err = x509certs.New().DecodeMultiple(append(append([]byte{}, leaf.DER...), bogus...), "")
	assert.ErrorIs(t, err, x509certs.ErrParseCertificate)
}
