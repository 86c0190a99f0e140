// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package bundle

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
)

// CertUsage is the purpose CA certificates are imported for.
type CertUsage int

const (
	// UsageSSLCA imports only CAs allowed to issue TLS certificates and
	// trusts them for SSL alone.
	UsageSSLCA CertUsage = iota + 1
	// UsageUserCertImport imports the CAs that came with a user certificate
	// and trusts each for every usage class it is a CA for.
	UsageUserCertImport
)

// String returns the usage name.
func (u CertUsage) String() string {
	switch u {
	case UsageSSLCA:
		return "ssl-ca"
	case UsageUserCertImport:
		return "user-cert-import"
	default:
		return fmt.Sprintf("CertUsage(%d)", int(u))
	}
}

// ImportCAChain stores every certificate of certs as a trusted CA.
//
// Certificates already in the store (temporary or permanent) are skipped,
// as are CAs lacking the SSL CA bit under [UsageSSLCA]. A certificate
// without any CA extension is trusted for every usage class.
//
// Parameters:
//   - certs: Raw DER certificates, processed in order
//   - usage: Purpose of the import
//
// Returns:
//   - error: ErrCAImport on the first decode or store failure; certificates
//     stored before it are kept
func (im *Importer) ImportCAChain(certs [][]byte, usage CertUsage) error {
	rep := im.newReport()
	im.logf(rep, "importing %d CA certificate(s) for %s", len(certs), usage)
	return im.importCAs(rep, certs, 0, usage)
}

// importCAs runs the CA import over one contiguous slice of a bundle whose
// first element sits at offset in the original package.
func (im *Importer) importCAs(rep *ImportReport, certs [][]byte, offset int, usage CertUsage) error {
	for i, der := range certs {
		res, err := im.importCA(rep, der, usage)
		if err != nil {
			return fmt.Errorf("%w: certificate %d: %w", ErrCAImport, offset+i, err)
		}

		res.Index = offset + i
		rep.record(res)
		im.metrics.RecordCertificate(string(res.Outcome))
	}
	return nil
}

func (im *Importer) importCA(rep *ImportReport, der []byte, usage CertUsage) (CertResult, error) {
	key, err := certdb.KeyFromDER(der)
	if err != nil {
		return CertResult{}, err
	}

	existing, err := im.store.FindByKey(key)
	switch {
	case err == nil:
		im.logf(rep, "skipping %q: already present", subjectOf(existing))
		return resultOf(existing, OutcomeSkippedPresent), nil
	case !errors.Is(err, certdb.ErrCertNotFound):
		return CertResult{}, err
	}

	cert, err := im.store.NewTemporary(der)
	if err != nil {
		return CertResult{}, err
	}
	defer im.store.DeleteTemporary(cert)

	var trust certdb.Trust
	switch {
	case !cert.IsCA:
		im.logf(rep, "warning: %q has no CA extension, trusting it for every usage", subjectOf(cert))
		trust = certdb.TrustAll
	case usage == UsageSSLCA:
		if !cert.Usage.Has(x509certs.SSLCA) {
			im.logf(rep, "skipping %q: not an SSL CA (%s)", subjectOf(cert), cert.Usage)
			return resultOf(cert, OutcomeSkippedUsage), nil
		}
		trust = certdb.Trust{SSL: certdb.ValidCA}
	default:
		trust = certdb.TrustFor(cert.Usage)
	}

	nickname, err := certdb.MakeNickname(im.store, cert)
	if err != nil {
		return CertResult{}, err
	}
	if err := im.store.PersistAsPermanent(cert, nickname, trust); err != nil {
		return CertResult{}, err
	}

	im.logf(rep, "imported CA %q as %q with trust %s", subjectOf(cert), nickname, trust)
	return resultOf(cert, OutcomeCA), nil
}
