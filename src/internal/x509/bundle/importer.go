// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package bundle

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/certdb"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/keystore"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/metrics"
	x509certs "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/logger"
)

// PackageDecoder splits a certificate package into raw DER certificates.
type PackageDecoder interface {
	DecodePackage(data []byte, password string) ([][]byte, error)
}

// ImportOptions tunes [Importer.ImportPackage].
type ImportOptions struct {
	// Nickname is given to the user certificate. Empty derives one from the subject.
	Nickname string
	// DisallowUserCert treats the leaf as a CA even when its key is held locally.
	DisallowUserCert bool
	// TreatLeafAsCA also trusts a user certificate that is a CA for every
	// usage class it is a CA for. A user certificate without a CA extension
	// keeps no trust.
	TreatLeafAsCA bool
	// Password opens PKCS#12 packages.
	Password string
}

// Importer imports certificate packages into a certificate store.
//
// An Importer holds no state between calls beyond its collaborators, so one
// instance serves any number of imports. The store does its own locking.
type Importer struct {
	store   certdb.Store
	keys    keystore.KeyStore
	decoder PackageDecoder
	log     logger.Logger
	metrics *metrics.Recorder
}

// Option configures an [Importer].
type Option func(*Importer)

// WithDecoder replaces the default package decoder.
func WithDecoder(d PackageDecoder) Option {
	return func(im *Importer) { im.decoder = d }
}

// WithLogger sets the logger. The default logger is silent.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) { im.log = l }
}

// WithMetrics records import metrics into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(im *Importer) { im.metrics = r }
}

// New creates an Importer over store. A nil keys holds no keys, so every
// leaf is treated as a potential CA.
func New(store certdb.Store, keys keystore.KeyStore, opts ...Option) *Importer {
	if keys == nil {
		keys = keystore.None{}
	}

	im := &Importer{
		store:   store,
		keys:    keys,
		decoder: x509certs.New(),
		log:     logger.NewJSONLogger(nil, true),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Store returns the store the importer writes to.
func (im *Importer) Store() certdb.Store { return im.store }

// ImportPackage imports a certificate package and returns the stored leaf.
//
// The leaf is located first. A leaf with a local private key is stored as a
// user certificate; every other certificate of the package is then stored as
// a CA, the certificates before and after the leaf in separate passes.
// Certificates already in the store are left untouched.
//
// A failed import may be partially applied: CA certificates stored before
// the failure are not removed.
//
// Parameters:
//   - data: Package bytes (PEM, PKCS#7, PKCS#12 or concatenated DER)
//   - opts: Import options
//
// Returns:
//   - *certdb.Certificate: Stored leaf certificate
//   - error: ErrPackageDecoding, ErrLeafNotFound, ErrCertificateConflict,
//     ErrNicknameConflict, ErrInvalidRole, ErrUserCertImport, ErrCAImport,
//     ErrLeafLookup, or the store error when locating the leaf fails
func (im *Importer) ImportPackage(data []byte, opts ImportOptions) (*certdb.Certificate, error) {
	rep, err := im.ImportPackageReport(data, opts)
	if err != nil {
		return nil, err
	}
	return rep.Leaf, nil
}

// ImportPackageReport is [Importer.ImportPackage] returning the full report.
// The report is returned even on failure and describes what was applied.
func (im *Importer) ImportPackageReport(data []byte, opts ImportOptions) (rep *ImportReport, err error) {
	rep = im.newReport()
	start := time.Now()
	defer func() {
		im.metrics.RecordImport(err, time.Since(start))
		if err != nil {
			im.logf(rep, "import failed: %v", err)
		}
	}()

	bundle, err := im.decoder.DecodePackage(data, opts.Password)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrPackageDecoding, err)
	}
	if len(bundle) == 0 {
		return rep, ErrPackageDecoding
	}
	rep.PackageSize = len(bundle)

	leaf, strategy, err := im.locateLeaf(bundle, !opts.DisallowUserCert)
	if err != nil {
		return rep, err
	}
	rep.LeafIndex, rep.Strategy = leaf, strategy
	im.metrics.RecordLeafSelection(strategy)
	im.logf(rep, "leaf is certificate %d of %d (%s)", leaf, len(bundle), strategy)

	id, err := im.importLeaf(rep, bundle[leaf], opts)
	if err != nil {
		return rep, err
	}

	if err := im.importCAs(rep, bundle[:leaf], 0, UsageUserCertImport); err != nil {
		return rep, err
	}
	switch {
	case !id.userCert:
		if err := im.importCAs(rep, bundle[leaf:leaf+1], leaf, UsageUserCertImport); err != nil {
			return rep, err
		}
	case opts.TreatLeafAsCA:
		if err := im.trustUserCert(rep, id); err != nil {
			return rep, err
		}
	}
	if err := im.importCAs(rep, bundle[leaf+1:], leaf+1, UsageUserCertImport); err != nil {
		return rep, err
	}

	stored, err := im.store.FindByIssuerAndSerial(id.issuer, id.serial)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrLeafLookup, err)
	}
	rep.Leaf = stored
	im.logf(rep, "import finished, leaf stored as %q", stored.Nickname)
	return rep, nil
}

// leafIdentity is what the import needs of the leaf once its temporary
// certificate is released.
type leafIdentity struct {
	issuer   []byte
	serial   *big.Int
	userCert bool
}

// importLeaf checks the leaf for conflicts and stores it when its key is
// held locally. The temporary leaf is released before returning, so the CA
// pass does not mistake it for an already stored certificate.
func (im *Importer) importLeaf(rep *ImportReport, der []byte, opts ImportOptions) (leafIdentity, error) {
	key, err := certdb.KeyFromDER(der)
	if err != nil {
		return leafIdentity{}, fmt.Errorf("%w: %w", ErrPackageDecoding, err)
	}

	certExists := true
	if _, err := im.store.FindByKey(key); errors.Is(err, certdb.ErrCertNotFound) {
		certExists = false
	} else if err != nil {
		return leafIdentity{}, fmt.Errorf("%w: %w", ErrUserCertImport, err)
	}

	cert, err := im.store.NewTemporary(der)
	if errors.Is(err, certdb.ErrInvalidCertificate) {
		return leafIdentity{}, fmt.Errorf("%w: %w", ErrPackageDecoding, err)
	} else if err != nil {
		return leafIdentity{}, fmt.Errorf("%w: %w", ErrUserCertImport, err)
	}
	defer im.store.DeleteTemporary(cert)

	id := leafIdentity{issuer: cert.RawIssuer(), serial: cert.SerialNumber()}

	if opts.DisallowUserCert || !im.keys.HasLocalKey(cert.X509) {
		if !opts.DisallowUserCert && !cert.IsCA {
			return id, fmt.Errorf("%w: %q", ErrInvalidRole, subjectOf(cert))
		}
		return id, nil
	}

	if certExists {
		return id, fmt.Errorf("%w: %q", ErrCertificateConflict, subjectOf(cert))
	}

	nickname := opts.Nickname
	if nickname == "" {
		if nickname, err = certdb.MakeNickname(im.store, cert); err != nil {
			return id, fmt.Errorf("%w: %w", ErrUserCertImport, err)
		}
	}
	conflict, err := im.store.NicknameConflict(nickname, cert.RawSubject())
	if err != nil {
		return id, fmt.Errorf("%w: %w", ErrUserCertImport, err)
	}
	if conflict {
		return id, fmt.Errorf("%w: %q", ErrNicknameConflict, nickname)
	}

	if err := im.store.ImportBoundToKey(cert, nickname); err != nil {
		return id, fmt.Errorf("%w: %w", ErrUserCertImport, err)
	}

	res := resultOf(cert, OutcomeUser)
	res.Index = rep.LeafIndex
	rep.record(res)
	im.metrics.RecordCertificate(string(OutcomeUser))
	im.logf(rep, "imported user certificate %q as %q", subjectOf(cert), nickname)

	id.userCert = true
	return id, nil
}

// trustUserCert gives the stored user certificate the trust a CA of the
// package would get.
func (im *Importer) trustUserCert(rep *ImportReport, id leafIdentity) error {
	cert, err := im.store.FindByIssuerAndSerial(id.issuer, id.serial)
	if err != nil {
		return fmt.Errorf("%w: certificate %d: %w", ErrCAImport, rep.LeafIndex, err)
	}

	res := resultOf(cert, OutcomeSkippedUsage)
	if cert.IsCA {
		trust := certdb.TrustFor(cert.Usage)
		if err := im.store.SetTrust(cert, trust); err != nil {
			return fmt.Errorf("%w: certificate %d: %w", ErrCAImport, rep.LeafIndex, err)
		}
		res.Outcome = OutcomeCA
		im.logf(rep, "trusting user certificate %q with %s", subjectOf(cert), trust)
	} else {
		im.logf(rep, "not trusting user certificate %q: not a CA", subjectOf(cert))
	}

	res.Index = rep.LeafIndex
	rep.record(res)
	im.metrics.RecordCertificate(string(res.Outcome))
	return nil
}

// ImportCertToPerm stores a single certificate permanently with no trust.
//
// Parameters:
//   - der: Raw DER certificate
//   - nickname: Nickname to store it under; empty derives one from the subject
//
// Returns:
//   - *certdb.Certificate: Stored certificate
//   - error: ErrCertToPerm wrapping the cause
func (im *Importer) ImportCertToPerm(der []byte, nickname string) (*certdb.Certificate, error) {
	cert, err := im.store.NewTemporary(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCertToPerm, err)
	}
	defer im.store.DeleteTemporary(cert)

	if nickname == "" {
		if nickname, err = certdb.MakeNickname(im.store, cert); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCertToPerm, err)
		}
	}
	if err := im.store.PersistAsPermanent(cert, nickname, certdb.Trust{}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCertToPerm, err)
	}
	return cert, nil
}

func (im *Importer) logf(rep *ImportReport, format string, v ...any) {
	im.log.Printf("[%s] "+format, append([]any{rep.ID}, v...)...)
}

func (im *Importer) newReport() *ImportReport {
	return &ImportReport{ID: uuid.New(), LeafIndex: -1}
}
