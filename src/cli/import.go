// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/bundle"
)

type importFlags struct {
	nickname string
	noUser   bool
	leafCA   bool
	password string
	json     bool
}

func (a *app) newImportCommand() *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a certificate package (PEM, DER, PKCS#7 or PKCS#12)",
		Long: `Import locates the leaf of the package, stores it as a user certificate
when its private key is held locally, and stores every other certificate
as a CA trusted for the usages its extensions allow.

FILE may be "-" to read the package from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ErrInputFileRequired
			}
			return a.runImport(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.nickname, "nickname", "n", "", "nickname for the user certificate (default: derived from the subject)")
	cmd.Flags().BoolVar(&f.noUser, "no-user", false, "never store the leaf as a user certificate")
	cmd.Flags().BoolVar(&f.leafCA, "leaf-ca", false, "also trust a user certificate that is a CA")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "PKCS#12 password")
	cmd.Flags().BoolVarP(&f.json, "json", "j", false, "print the import report as JSON")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, path string, f importFlags) error {
	data, err := gc.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	opts := bundle.ImportOptions{
		Nickname:         f.nickname,
		DisallowUserCert: a.cfg.Import.DisallowUserCert,
		TreatLeafAsCA:    a.cfg.Import.TreatLeafAsCA,
		Password:         f.password,
	}
	if cmd.Flags().Changed("no-user") {
		opts.DisallowUserCert = f.noUser
	}
	if cmd.Flags().Changed("leaf-ca") {
		opts.TreatLeafAsCA = f.leafCA
	}

	OperationPerformed = true
	rep, err := a.importer.ImportPackageReport(data, opts)
	if err != nil {
		return err
	}
	OperationPerformedSuccessfully = true

	if f.json {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		return a.writeOutput("", append(out, '\n'))
	}

	a.log.Printf("Imported %s as %q", rep.Leaf.X509.Subject.CommonName, rep.Leaf.Nickname)
	return a.writeOutput("", []byte(renderReport(rep)))
}

// renderReport renders per-certificate outcomes as a markdown table.
func renderReport(rep *bundle.ImportReport) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Subject", "Nickname", "Outcome", "Trust"})

	rows := make([][]string, 0, len(rep.Certificates))
	for _, c := range rep.Certificates {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index),
			c.Subject,
			c.Nickname,
			string(c.Outcome),
			c.Trust.String(),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}
