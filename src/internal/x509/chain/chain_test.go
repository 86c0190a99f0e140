// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"bytes"
	"encoding/json"
	"encoding/pem"
	"errors"
	"strings"
	"testing"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/pkitest"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/chain"
)

func decode(t *testing.T, c *pkitest.Cert) *certdb.Certificate {
	t.Helper()
	cert, err := certdb.Decode(c.DER)
	if err != nil {
		t.Fatalf("certdb.Decode() error = %v", err)
	}
	return cert
}

func trustedStore(t *testing.T, certs ...*pkitest.Cert) *certdb.MemoryStore {
	t.Helper()
	store := certdb.NewMemoryStore()
	for _, c := range certs {
		cert := decode(t, c)
		if err := store.PersistAsPermanent(cert, cert.X509.Subject.CommonName, certdb.TrustFor(cert.Usage)); err != nil {
			t.Fatalf("PersistAsPermanent() error = %v", err)
		}
	}
	return store
}

type failingFinder struct{}

func (failingFinder) FindByName([]byte) (*certdb.Certificate, error) {
	return nil, certdb.ErrStoreClosed
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Self-Signed Yields Leaf Only",
			testFunc: func(t *testing.T) {
				root := pkitest.SelfSigned(t, "Lone Root", pkitest.Options{CA: true})
				leaf := decode(t, root)

				ch, err := x509chain.Build(leaf, trustedStore(t, root))
				if err != nil {
					t.Fatalf("Build() error = %v", err)
				}
				if ch.Len() != 1 || ch.Leaf() != leaf {
					t.Fatalf("expected [leaf], got %d certificates", ch.Len())
				}
				if !ch.IsComplete() {
					t.Error("expected a self-signed chain to be complete")
				}
			},
		},
		{
			name: "Chain Is Linked Leaf First",
			testFunc: func(t *testing.T) {
				for k := 2; k <= 5; k++ {
					certs := pkitest.Chain(t, k)
					store := trustedStore(t, certs[1:]...)

					ch, err := x509chain.Build(decode(t, certs[0]), store)
					if err != nil {
						t.Fatalf("Build() error = %v", err)
					}
					if ch.Len() != k {
						t.Fatalf("k=%d: expected %d certificates, got %d", k, k, ch.Len())
					}
					for i := 0; i+1 < ch.Len(); i++ {
						if !ch.Certs[i+1].Issues(ch.Certs[i]) {
							t.Errorf("k=%d: certificate %d is not issued by certificate %d", k, i, i+1)
						}
					}
					if !ch.IsRootNode(ch.Certs[k-1]) {
						t.Errorf("k=%d: expected last certificate to be the root", k)
					}
					if got := len(ch.FilterIntermediates()); got != k-2 {
						t.Errorf("k=%d: expected %d intermediates, got %d", k, k-2, got)
					}
				}
			},
		},
		{
			name: "Broken Chain Stops At Last Ancestor",
			testFunc: func(t *testing.T) {
				certs := pkitest.Chain(t, 4)
				// The root is missing from the store.
				store := trustedStore(t, certs[1], certs[2])

				ch, err := x509chain.Build(decode(t, certs[0]), store)
				if err != nil {
					t.Fatalf("Build() error = %v", err)
				}
				if ch.Len() != 3 {
					t.Fatalf("expected 3 certificates, got %d", ch.Len())
				}
				if ch.IsComplete() {
					t.Error("expected chain without root to be incomplete")
				}
				if got := len(ch.FilterIntermediates()); got != 2 {
					t.Errorf("expected 2 intermediates, got %d", got)
				}
			},
		},
		{
			name: "Lookup Failure",
			testFunc: func(t *testing.T) {
				certs := pkitest.Chain(t, 2)
				_, err := x509chain.Build(decode(t, certs[0]), failingFinder{})
				if !errors.Is(err, certdb.ErrStoreClosed) {
					t.Fatalf("expected ErrStoreClosed, got %v", err)
				}
			},
		},
		{
			name: "Nil Leaf",
			testFunc: func(t *testing.T) {
				if _, err := x509chain.Build(nil, failingFinder{}); !errors.Is(err, x509chain.ErrNilLeaf) {
					t.Fatalf("expected ErrNilLeaf, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestBuildBounded_Cycle(t *testing.T) {
	seed := pkitest.SelfSigned(t, "Y", pkitest.Options{CA: true})
	a := pkitest.Issue(t, seed, "X", pkitest.Options{CA: true})
	b := pkitest.Issue(t, a, "Y", pkitest.Options{CA: true})

	finder, err := x509chain.NewBundleFinder(pkitest.DERs(a, b))
	if err != nil {
		t.Fatalf("NewBundleFinder() error = %v", err)
	}

	ch, err := x509chain.BuildBounded(finder.Certificates()[0], finder, finder.Len())
	if err != nil {
		t.Fatalf("BuildBounded() error = %v", err)
	}
	if ch.Len() != 2 {
		t.Fatalf("expected the walk to stop at 2 certificates, got %d", ch.Len())
	}

	ch, err = x509chain.BuildBounded(finder.Certificates()[0], finder, 0)
	if err != nil {
		t.Fatalf("BuildBounded() error = %v", err)
	}
	if ch.Len() != 1 {
		t.Fatalf("expected a bound below 1 to keep the leaf only, got %d", ch.Len())
	}
}

func TestFinders(t *testing.T) {
	certs := pkitest.Chain(t, 3)
	bundle, err := x509chain.NewBundleFinder(pkitest.DERs(certs[0], certs[1]))
	if err != nil {
		t.Fatalf("NewBundleFinder() error = %v", err)
	}
	store := trustedStore(t, certs[2])

	ch, err := x509chain.BuildBounded(bundle.Certificates()[0], x509chain.Finders{bundle, store}, 3)
	if err != nil {
		t.Fatalf("BuildBounded() error = %v", err)
	}
	if ch.Len() != 3 || !ch.IsComplete() {
		t.Fatalf("expected bundle chain completed from the store, got %d certificates", ch.Len())
	}
	if ch.Certs[1].Permanent || !ch.Certs[2].Permanent {
		t.Error("expected intermediate from the bundle and root from the store")
	}

	_, err = x509chain.Finders{bundle, failingFinder{}}.FindByName([]byte("missing"))
	if !errors.Is(err, certdb.ErrStoreClosed) {
		t.Errorf("expected lookup error to surface, got %v", err)
	}

	if _, err := x509chain.NewBundleFinder([][]byte{[]byte("junk")}); !errors.Is(err, certdb.ErrInvalidCertificate) {
		t.Errorf("expected ErrInvalidCertificate, got %v", err)
	}
}

func TestChainExportAndRender(t *testing.T) {
	certs := pkitest.Chain(t, 3)
	store := trustedStore(t, certs[1:]...)

	ch, err := x509chain.Build(decode(t, certs[0]), store)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	t.Run("PEM", func(t *testing.T) {
		data := ch.ExportPEM()
		var n int
		for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
			if !bytes.Equal(block.Bytes, certs[n].DER) {
				t.Errorf("PEM block %d does not match chain order", n)
			}
			n++
		}
		if n != 3 {
			t.Errorf("expected 3 PEM blocks, got %d", n)
		}
	})

	t.Run("DER", func(t *testing.T) {
		want := bytes.Join(pkitest.DERs(certs...), nil)
		if !bytes.Equal(ch.ExportDER(), want) {
			t.Error("DER export is not the concatenated chain")
		}
	})

	t.Run("PKCS7", func(t *testing.T) {
		data, err := ch.ExportPKCS7()
		if err != nil {
			t.Fatalf("ExportPKCS7() error = %v", err)
		}
		raws, err := x509certs.New().DecodePackage(data, "")
		if err != nil {
			t.Fatalf("DecodePackage() error = %v", err)
		}
		if len(raws) != 3 {
			t.Errorf("expected 3 certificates in PKCS7, got %d", len(raws))
		}
	})

	t.Run("Tree", func(t *testing.T) {
		tree := ch.RenderASCIITree()
		for _, want := range []string{"[?] leaf.example.com", "Test Intermediate CA 1 (Intermediate CA Certificate)", "└── [✓] Test Root CA (Root CA Certificate)"} {
			if !strings.Contains(tree, want) {
				t.Errorf("tree missing %q:\n%s", want, tree)
			}
		}
	})

	t.Run("Tree Shows Common Name Behind Nickname", func(t *testing.T) {
		leaf := decode(t, certs[0])
		leaf.Nickname = "My Server"
		named, err := x509chain.Build(leaf, store)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		tree := named.RenderASCIITree()
		if want := "[?] My Server / leaf.example.com (End-Entity (Leaf) Certificate)"; !strings.Contains(tree, want) {
			t.Errorf("tree missing %q:\n%s", want, tree)
		}
		if strings.Contains(tree, "Test Root CA / Test Root CA") {
			t.Errorf("common name repeated when equal to the nickname:\n%s", tree)
		}
	})

	t.Run("Table", func(t *testing.T) {
		table := ch.RenderTable()
		for _, want := range []string{"leaf.example.com", "untrusted", "C,C,C"} {
			if !strings.Contains(table, want) {
				t.Errorf("table missing %q:\n%s", want, table)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := ch.ToVisualizationJSON()
		if err != nil {
			t.Fatalf("ToVisualizationJSON() error = %v", err)
		}
		var got struct {
			ChainLength   int  `json:"chainLength"`
			Complete      bool `json:"complete"`
			Relationships []struct {
				Type string `json:"type"`
			} `json:"relationships"`
		}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if got.ChainLength != 3 || !got.Complete || len(got.Relationships) != 2 {
			t.Errorf("unexpected visualization data: %+v", got)
		}
	})
}

func TestTrustStatus(t *testing.T) {
	root := pkitest.SelfSigned(t, "Status Root CA", pkitest.Options{CA: true})

	tests := []struct {
		name   string
		modify func(c *certdb.Certificate)
		want   string
	}{
		{name: "Temporary", modify: func(c *certdb.Certificate) {}, want: "untrusted"},
		{name: "Permanent Without Trust", modify: func(c *certdb.Certificate) { c.Permanent = true }, want: "none"},
		{
			name: "Trusted CA",
			modify: func(c *certdb.Certificate) {
				c.Permanent = true
				c.Trust = certdb.Trust{SSL: certdb.ValidCA}
			},
			want: "C,,",
		},
		{
			name: "User Certificate",
			modify: func(c *certdb.Certificate) {
				c.Permanent = true
				c.UserCert = true
			},
			want: "user",
		},
		{
			name: "Trusted User Certificate",
			modify: func(c *certdb.Certificate) {
				c.Permanent = true
				c.UserCert = true
				c.Trust = certdb.Trust{SSL: certdb.ValidCA}
			},
			want: "user C,,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := decode(t, root)
			tt.modify(cert)
			if got := x509chain.TrustStatus(cert); got != tt.want {
				t.Errorf("TrustStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
