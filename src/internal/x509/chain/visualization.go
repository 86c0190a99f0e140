// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
)

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// Each line shows the trust status, the nickname and common name, and the
// role of one certificate, leaf first.
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == len(ch.Certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if !cert.Permanent {
			statusIcon = "?"
		}

		certInfo := fmt.Sprintf("[%s] %s", statusIcon, treeLabel(cert))
		if role := ch.getCertificateRole(i); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// It displays certificate details including role, subject, issuer, expiry,
// key size and trust flags using tablewriter.
//
// Returns:
//   - string: Markdown table representation of the certificate chain
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"🔢 #", "🏷️ Role", "📛 Subject", "🏢 Issuer", "📅 Valid Until", "🔐 Key Size", "🛡️ Trust"}
	table.Header(headers)

	var rows [][]string
	for i, cert := range ch.Certs {
		_, keySize := keyInfo(cert)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.getCertificateRole(i),
			displayName(cert),
			cert.X509.Issuer.CommonName,
			cert.X509.NotAfter.Format("2006-01-02"),
			keySize,
			TrustStatus(cert),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToVisualizationJSON converts the certificate chain to structured JSON for external tools.
//
// Returns:
//   - []byte: JSON representation of the certificate chain
//   - error: Error if JSON marshaling fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) ToVisualizationJSON() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	type CertificateVizData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Nickname           string    `json:"nickname,omitempty"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
		CAUsage            string    `json:"caUsage"`
		Trust              string    `json:"trust"`
	}

	type RelationshipData struct {
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
		Type      string `json:"type"`
	}

	type VisualizationData struct {
		Timestamp     string               `json:"timestamp"`
		ChainLength   int                  `json:"chainLength"`
		Complete      bool                 `json:"complete"`
		Certificates  []CertificateVizData `json:"certificates"`
		Relationships []RelationshipData   `json:"relationships"`
	}

	data := VisualizationData{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ChainLength:   len(ch.Certs),
		Complete:      len(ch.Certs) > 0 && ch.IsRootNode(ch.Certs[len(ch.Certs)-1]),
		Certificates:  make([]CertificateVizData, len(ch.Certs)),
		Relationships: make([]RelationshipData, 0, max(len(ch.Certs)-1, 0)),
	}

	for i, cert := range ch.Certs {
		bits, _ := keyInfo(cert)
		data.Certificates[i] = CertificateVizData{
			Index:              i,
			Role:               ch.getCertificateRole(i),
			Nickname:           cert.Nickname,
			Subject:            cert.X509.Subject.String(),
			Issuer:             cert.X509.Issuer.String(),
			SerialNumber:       cert.SerialNumber().String(),
			SignatureAlgorithm: cert.X509.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: cert.X509.PublicKeyAlgorithm.String(),
			KeySize:            bits,
			NotBefore:          cert.X509.NotBefore,
			NotAfter:           cert.X509.NotAfter,
			IsCA:               cert.IsCA,
			CAUsage:            cert.Usage.String(),
			Trust:              TrustStatus(cert),
		}
	}

	// Each certificate is issued by the next one.
	for i := 0; i < len(ch.Certs)-1; i++ {
		data.Relationships = append(data.Relationships, RelationshipData{
			FromIndex: i,
			ToIndex:   i + 1,
			Type:      "issued_by",
		})
	}

	return json.MarshalIndent(data, "", "  ")
}

// TrustStatus describes how a store holds cert: "user" for a certificate
// bound to a local key, the trust flags of a permanent CA, or "untrusted"
// for a certificate the store does not hold. A trusted user certificate
// shows both.
func TrustStatus(cert *certdb.Certificate) string {
	switch {
	case !cert.Permanent:
		return "untrusted"
	case cert.UserCert && cert.Trust == (certdb.Trust{}):
		return "user"
	case cert.UserCert:
		return "user " + cert.Trust.String()
	case cert.Trust == (certdb.Trust{}):
		return "none"
	default:
		return cert.Trust.String()
	}
}

// treeLabel is the display name, followed by the common name when a
// nickname hides it.
func treeLabel(cert *certdb.Certificate) string {
	name := displayName(cert)
	if cn := cert.X509.Subject.CommonName; cn != "" && cn != name {
		return name + " / " + cn
	}
	return name
}

// displayName prefers the nickname, then the common name, then the full subject.
func displayName(cert *certdb.Certificate) string {
	switch {
	case cert.Nickname != "":
		return cert.Nickname
	case cert.X509.Subject.CommonName != "":
		return cert.X509.Subject.CommonName
	default:
		return cert.X509.Subject.String()
	}
}

func keyInfo(cert *certdb.Certificate) (int, string) {
	switch pub := cert.X509.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.Size() * 8, fmt.Sprintf("%d-bit RSA", pub.Size()*8)
	case *ecdsa.PublicKey:
		bits := pub.Curve.Params().BitSize
		return bits, fmt.Sprintf("%d-bit ECDSA", bits)
	case ed25519.PublicKey:
		return 256, "Ed25519"
	default:
		return 0, "unknown"
	}
}

// getCertificateRole determines the role of a certificate in the chain.
//
// Parameters:
//   - index: Zero-based position of the certificate in the chain
//
// Returns:
//   - string: Role description
func (ch *Chain) getCertificateRole(index int) string {
	total := len(ch.Certs)
	cert := ch.Certs[index]
	switch {
	case total == 1 && ch.IsRootNode(cert):
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Leaf) Certificate"
	case index == total-1 && ch.IsRootNode(cert):
		return "Root CA Certificate"
	case index == total-1:
		return "Intermediate CA Certificate (issuer not found)"
	default:
		return "Intermediate CA Certificate"
	}
}
