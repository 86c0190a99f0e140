// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	x509chain "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/chain"
)

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the certificates of the store with their trust flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			certs, err := a.store.List()
			if err != nil {
				return err
			}
			return a.writeOutput("", []byte(renderStore(certs)))
		},
	}
}

func renderStore(certs []*certdb.Certificate) string {
	if len(certs) == 0 {
		return "No certificates stored\n"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"🏷️ Nickname", "📛 Subject", "🏢 Issuer", "🔢 Serial", "👤 Kind", "🛡️ Trust"})

	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		kind := "CA"
		switch {
		case c.UserCert:
			kind = "User"
		case !c.IsCA:
			kind = "Other"
		}
		rows = append(rows, []string{
			c.Nickname,
			c.X509.Subject.String(),
			c.X509.Issuer.String(),
			fmt.Sprintf("%X", c.SerialNumber()),
			kind,
			x509chain.TrustStatus(c),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}
