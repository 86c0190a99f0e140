// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/chain"
)

// Output formats of the chain command.
const (
	formatTree  = "tree"
	formatTable = "table"
	formatJSON  = "json"
	formatPEM   = "pem"
	formatDER   = "der"
	formatPKCS7 = "pkcs7"
)

var (
	// ErrChainSource indicates that exactly one of --nickname and --file must be given.
	ErrChainSource = errors.New("cli: exactly one of --nickname or --file is required")

	// ErrUnknownFormat indicates an unsupported --format value.
	ErrUnknownFormat = errors.New("cli: unknown output format")
)

type chainFlags struct {
	nickname         string
	file             string
	password         string
	format           string
	output           string
	intermediateOnly bool
}

func (a *app) newChainCommand() *cobra.Command {
	var f chainFlags

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Build and display the chain of a stored or packaged certificate",
		Long: `Chain walks from a leaf up through its issuers, matching names byte for
byte, and renders the result. The leaf is either a stored certificate
(--nickname) or the leaf of a certificate package (--file), whose other
certificates are searched before the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChain(f)
		},
	}

	cmd.Flags().StringVarP(&f.nickname, "nickname", "n", "", "nickname of a stored leaf certificate")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "certificate package holding the leaf (\"-\" for stdin)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "PKCS#12 password for --file")
	cmd.Flags().StringVar(&f.format, "format", formatTree, "output format: tree, table, json, pem, der or pkcs7")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output to OUTPUT_FILE (default: stdout)")
	cmd.Flags().BoolVarP(&f.intermediateOnly, "intermediate-only", "i", false, "export intermediate certificates only (pem and der)")
	return cmd
}

func (a *app) runChain(f chainFlags) error {
	if (f.nickname == "") == (f.file == "") {
		return ErrChainSource
	}

	size, err := a.storeSize()
	if err != nil {
		return err
	}

	var (
		leaf   *certdb.Certificate
		finder x509chain.NameFinder = a.store
		limit                       = size + 1
	)
	if f.nickname != "" {
		if leaf, err = a.store.FindByNickname(f.nickname); err != nil {
			return fmt.Errorf("finding %q: %w", f.nickname, err)
		}
	} else {
		bf, index, err := a.packageLeaf(f.file, f.password)
		if err != nil {
			return err
		}
		leaf = bf.Certificates()[index]
		if stored, err := a.store.FindByKey(leaf.Key); err == nil {
			leaf = stored
		}
		finder = x509chain.Finders{a.store, bf}
		limit = size + bf.Len()
	}

	OperationPerformed = true
	chain, err := x509chain.BuildBounded(leaf, finder, limit)
	if err != nil {
		return fmt.Errorf("building chain: %w", err)
	}
	if !chain.IsComplete() {
		a.log.Printf("Chain of %s does not end at a self-signed certificate", leaf.X509.Subject.CommonName)
	}

	data, err := renderChain(chain, f)
	if err != nil {
		return err
	}
	if err := a.writeOutput(f.output, data); err != nil {
		return err
	}
	OperationPerformedSuccessfully = true
	return nil
}

// packageLeaf decodes a package file and locates its leaf.
func (a *app) packageLeaf(path, password string) (*x509chain.BundleFinder, int, error) {
	data, err := gc.ReadFile(path)
	if err != nil {
		return nil, -1, fmt.Errorf("reading input file: %w", err)
	}

	bundle, err := x509certs.New().DecodePackage(data, password)
	if err != nil {
		return nil, -1, fmt.Errorf("decoding package: %w", err)
	}
	bf, err := x509chain.NewBundleFinder(bundle)
	if err != nil {
		return nil, -1, fmt.Errorf("decoding package: %w", err)
	}

	index, err := a.importer.LocateLeaf(bundle, true)
	if err != nil {
		return nil, -1, err
	}
	return bf, index, nil
}

func (a *app) storeSize() (int, error) {
	certs, err := a.store.List()
	if err != nil {
		return 0, err
	}
	return len(certs), nil
}

func renderChain(chain *x509chain.Chain, f chainFlags) ([]byte, error) {
	switch f.format {
	case formatTree:
		return []byte(chain.RenderASCIITree()), nil
	case formatTable:
		return []byte(chain.RenderTable()), nil
	case formatJSON:
		return chain.ToVisualizationJSON()
	case formatPEM:
		if f.intermediateOnly {
			return chain.EncodeMultiplePEM(x509Of(chain.FilterIntermediates())), nil
		}
		return chain.ExportPEM(), nil
	case formatDER:
		if f.intermediateOnly {
			return chain.EncodeMultipleDER(x509Of(chain.FilterIntermediates())), nil
		}
		return chain.ExportDER(), nil
	case formatPKCS7:
		return chain.ExportPKCS7()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f.format)
	}
}

func x509Of(certs []*certdb.Certificate) []*x509.Certificate {
	out := make([]*x509.Certificate, len(certs))
	for i, c := range certs {
		out[i] = c.X509
	}
	return out
}
