// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the importer configuration from JSON or YAML files.
//
// Example YAML configuration:
//
//	store:
//	  path: /var/lib/x509-importer/certdb.bolt
//	keys:
//	  dir: /etc/x509-importer/keys
//	log:
//	  format: json
//	import:
//	  disallowUserCert: false
//	  treatLeafAsCA: false
//	metrics:
//	  enabled: true
//	  textfile: /var/lib/node_exporter/x509_bundle_importer.prom
//
// The key password is best supplied through the
// X509_BUNDLE_IMPORTER_KEY_PASSWORD environment variable.
package config
