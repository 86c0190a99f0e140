// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package bundle

import (
	"github.com/google/uuid"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/metrics"
)

// Outcome is what an import did with one certificate of a package.
type Outcome string

const (
	OutcomeUser           Outcome = metrics.OutcomeUser
	OutcomeCA             Outcome = metrics.OutcomeCA
	OutcomeSkippedPresent Outcome = metrics.OutcomeSkippedPresent
	OutcomeSkippedUsage   Outcome = metrics.OutcomeSkippedUsage
)

// CertResult records the outcome for one certificate.
type CertResult struct {
	Index    int          `json:"index"`
	Subject  string       `json:"subject"`
	Nickname string       `json:"nickname,omitempty"`
	Outcome  Outcome      `json:"outcome"`
	Trust    certdb.Trust `json:"trust"`
}

// ImportReport describes one package import.
type ImportReport struct {
	// ID correlates the log lines of one import.
	ID uuid.UUID `json:"id"`
	// PackageSize is the number of certificates in the package.
	PackageSize int `json:"packageSize"`
	// LeafIndex is the position of the leaf in the package, -1 until located.
	LeafIndex int `json:"leafIndex"`
	// Strategy names how the leaf was located.
	Strategy string `json:"strategy,omitempty"`
	// Leaf is the stored leaf, set once the import succeeds.
	Leaf *certdb.Certificate `json:"-"`
	// Certificates lists per-certificate outcomes in processing order.
	Certificates []CertResult `json:"certificates"`
}

func (r *ImportReport) record(res CertResult) {
	r.Certificates = append(r.Certificates, res)
}

// Count returns how many certificates ended with outcome.
func (r *ImportReport) Count(outcome Outcome) int {
	var n int
	for _, c := range r.Certificates {
		if c.Outcome == outcome {
			n++
		}
	}
	return n
}

func resultOf(cert *certdb.Certificate, outcome Outcome) CertResult {
	return CertResult{
		Subject:  subjectOf(cert),
		Nickname: cert.Nickname,
		Outcome:  outcome,
		Trust:    cert.Trust,
	}
}

func subjectOf(cert *certdb.Certificate) string {
	return cert.X509.Subject.String()
}
