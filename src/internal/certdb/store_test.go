// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/pkitest"
)

type storeFactory struct {
	name string
	open func(t *testing.T) certdb.Store
	temp func(s certdb.Store) int
}

func factories() []storeFactory {
	return []storeFactory{
		{
			name: "Memory",
			open: func(t *testing.T) certdb.Store { return certdb.NewMemoryStore() },
			temp: func(s certdb.Store) int { return s.(*certdb.MemoryStore).TemporaryCount() },
		},
		{
			name: "Bolt",
			open: func(t *testing.T) certdb.Store {
				s, err := certdb.NewBoltStore(filepath.Join(t.TempDir(), "certs.db"))
				require.NoError(t, err, "NewBoltStore() error")
				return s
			},
			temp: func(s certdb.Store) int { return s.(*certdb.BoltStore).TemporaryCount() },
		},
	}
}

func TestStore(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T, s certdb.Store, temps func() int)
	}{
		{
			name: "Temporary Lifecycle",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				root := pkitest.SelfSigned(t, "Root", pkitest.Options{CA: true})

				a, err := s.NewTemporary(root.DER)
				require.NoError(t, err)
				b, err := s.NewTemporary(root.DER)
				require.NoError(t, err)
				assert.Same(t, a, b, "same certificate should share one temporary")
				assert.False(t, a.Permanent)
				assert.Equal(t, 1, temps())

				found, err := s.FindByKey(a.Key)
				require.NoError(t, err)
				assert.Same(t, a, found, "temporary certificates are visible to lookups")

				s.DeleteTemporary(a)
				assert.Equal(t, 1, temps(), "one reference still held")
				s.DeleteTemporary(b)
				assert.Equal(t, 0, temps())

				_, err = s.FindByKey(a.Key)
				assert.ErrorIs(t, err, certdb.ErrCertNotFound)
			},
		},
		{
			name: "Invalid Temporary",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				_, err := s.NewTemporary([]byte{0x30, 0x00})
				assert.ErrorIs(t, err, certdb.ErrInvalidCertificate)
				assert.Equal(t, 0, temps())
			},
		},
		{
			name: "Persist Promotes Temporary",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				root := pkitest.SelfSigned(t, "Root", pkitest.Options{CA: true})

				tmp, err := s.NewTemporary(root.DER)
				require.NoError(t, err)
				require.NoError(t, s.PersistAsPermanent(tmp, "Root", certdb.TrustAll))
				assert.True(t, tmp.Permanent)
				assert.Equal(t, 0, temps())

				s.DeleteTemporary(tmp)

				again, err := s.NewTemporary(root.DER)
				require.NoError(t, err)
				assert.True(t, again.Permanent, "permanent copy wins over a new temporary")
				assert.Equal(t, 0, temps())

				err = s.PersistAsPermanent(again, "Root", certdb.TrustAll)
				assert.ErrorIs(t, err, certdb.ErrCertAlreadyExists)
			},
		},
		{
			name: "Lookups",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				chain := pkitest.Chain(t, 3)
				leaf, inter, root := chain[0], chain[1], chain[2]

				for _, c := range []*pkitest.Cert{root, inter} {
					cert, err := certdb.Decode(c.DER)
					require.NoError(t, err)
					nick, err := certdb.MakeNickname(s, cert)
					require.NoError(t, err)
					require.NoError(t, s.PersistAsPermanent(cert, nick, certdb.TrustFor(cert.Usage)))
				}
				userCert, err := certdb.Decode(leaf.DER)
				require.NoError(t, err)
				require.NoError(t, s.ImportBoundToKey(userCert, "my server"))

				byName, err := s.FindByName(leaf.Cert.RawIssuer)
				require.NoError(t, err)
				assert.Equal(t, inter.DER, byName.Raw())
				assert.Equal(t, certdb.TrustAll, byName.Trust)

				byIssuer, err := s.FindByIssuerAndSerial(leaf.Cert.RawIssuer, leaf.Cert.SerialNumber)
				require.NoError(t, err)
				assert.Equal(t, leaf.DER, byIssuer.Raw())
				assert.True(t, byIssuer.UserCert)
				assert.Equal(t, certdb.Trust{}, byIssuer.Trust)

				byNick, err := s.FindByNickname("Test Root CA")
				require.NoError(t, err)
				assert.Equal(t, root.DER, byNick.Raw())

				_, err = s.FindByName([]byte("nope"))
				assert.ErrorIs(t, err, certdb.ErrCertNotFound)

				list, err := s.List()
				require.NoError(t, err)
				assert.Len(t, list, 3)
			},
		},
		{
			name: "Nickname Conflicts",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				first := pkitest.SelfSigned(t, "Shared CA", pkitest.Options{CA: true})
				second := pkitest.SelfSigned(t, "Shared CA", pkitest.Options{CA: true, Organization: "Other"})

				cert, err := certdb.Decode(first.DER)
				require.NoError(t, err)
				require.NoError(t, s.PersistAsPermanent(cert, "Shared CA", certdb.TrustAll))

				conflict, err := s.NicknameConflict("Shared CA", first.Cert.RawSubject)
				require.NoError(t, err)
				assert.False(t, conflict, "same subject never conflicts")

				conflict, err = s.NicknameConflict("Shared CA", second.Cert.RawSubject)
				require.NoError(t, err)
				assert.True(t, conflict)

				conflict, err = s.NicknameConflict("", second.Cert.RawSubject)
				require.NoError(t, err)
				assert.False(t, conflict, "empty nickname never conflicts")

				other, err := certdb.Decode(second.DER)
				require.NoError(t, err)
				nick, err := certdb.MakeNickname(s, other)
				require.NoError(t, err)
				assert.Equal(t, "Shared CA #2", nick)
			},
		},
		{
			name: "Shared Nickname Keeps First",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				first := pkitest.SelfSigned(t, "Twin CA", pkitest.Options{CA: true})
				second := pkitest.SelfSigned(t, "Twin CA", pkitest.Options{CA: true})

				for _, c := range []*pkitest.Cert{first, second} {
					cert, err := certdb.Decode(c.DER)
					require.NoError(t, err)
					require.NoError(t, s.PersistAsPermanent(cert, "Twin CA", certdb.TrustAll))
				}

				found, err := s.FindByNickname("Twin CA")
				require.NoError(t, err)
				assert.Equal(t, first.Cert.SerialNumber, found.SerialNumber(), "nickname resolves to the first certificate stored")
			},
		},
		{
			name: "Set Trust",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				root := pkitest.SelfSigned(t, "Root", pkitest.Options{CA: true})
				cert, err := certdb.Decode(root.DER)
				require.NoError(t, err)

				assert.ErrorIs(t, s.SetTrust(cert, certdb.TrustAll), certdb.ErrCertNotFound, "only permanent certificates carry trust")

				require.NoError(t, s.ImportBoundToKey(cert, "Root"))
				want := certdb.Trust{SSL: certdb.ValidCA}
				require.NoError(t, s.SetTrust(cert, want))
				assert.Equal(t, want, cert.Trust)

				stored, err := s.FindByNickname("Root")
				require.NoError(t, err)
				assert.Equal(t, want, stored.Trust)
				assert.True(t, stored.UserCert)
			},
		},
		{
			name: "Closed Store",
			testFunc: func(t *testing.T, s certdb.Store, temps func() int) {
				root := pkitest.SelfSigned(t, "Root", pkitest.Options{CA: true})
				require.NoError(t, s.Close())

				_, err := s.FindByName(root.Cert.RawSubject)
				assert.ErrorIs(t, err, certdb.ErrStoreClosed)

				_, err = s.NewTemporary(root.DER)
				assert.ErrorIs(t, err, certdb.ErrStoreClosed)

				cert, err := certdb.Decode(root.DER)
				require.NoError(t, err)
				assert.ErrorIs(t, s.PersistAsPermanent(cert, "", certdb.TrustAll), certdb.ErrStoreClosed)
				assert.ErrorIs(t, s.SetTrust(cert, certdb.TrustAll), certdb.ErrStoreClosed)
			},
		},
	}

	for _, f := range factories() {
		for _, tt := range tests {
			t.Run(f.name+"/"+tt.name, func(t *testing.T) {
				s := f.open(t)
				t.Cleanup(func() { s.Close() })
				tt.testFunc(t, s, func() int { return f.temp(s) })
			})
		}
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certs.db")
	root := pkitest.SelfSigned(t, "Durable Root", pkitest.Options{CA: true, NSCertType: pkitest.NSSSLCA})

	s, err := certdb.NewBoltStore(path)
	require.NoError(t, err)

	cert, err := certdb.Decode(root.DER)
	require.NoError(t, err)
	require.NoError(t, s.PersistAsPermanent(cert, "Durable Root", certdb.TrustFor(cert.Usage)))
	require.NoError(t, s.Close())

	s, err = certdb.NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.FindByName(root.Cert.RawSubject)
	require.NoError(t, err)
	assert.Equal(t, "Durable Root", got.Nickname)
	assert.Equal(t, certdb.Trust{SSL: certdb.ValidCA}, got.Trust)
	assert.True(t, got.Permanent)
	assert.True(t, got.IsCA)
}

func TestTrust_String(t *testing.T) {
	assert.Equal(t, "C,C,C", certdb.TrustAll.String())
	assert.Equal(t, ",C,", certdb.Trust{Email: certdb.ValidCA}.String())
	assert.Equal(t, ",,", certdb.Trust{}.String())
}

func TestKeyFromDER(t *testing.T) {
	root := pkitest.SelfSigned(t, "Key", pkitest.Options{CA: true})

	key, err := certdb.KeyFromDER(root.DER)
	require.NoError(t, err)
	assert.Equal(t, certdb.KeyOf(root.Cert.RawIssuer, root.Cert.SerialNumber), key)

	_, err = certdb.KeyFromDER([]byte("junk"))
	assert.ErrorIs(t, err, certdb.ErrInvalidCertificate)
}
