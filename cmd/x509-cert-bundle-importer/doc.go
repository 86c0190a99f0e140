// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-cert-bundle-importer is a command-line tool for importing X.509
// certificate packages into a certificate store with trust flags.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-cert-bundle-importer/cmd/x509-cert-bundle-importer@latest
//
// # Usage
//
//	x509-cert-bundle-importer [--config FILE] [--db FILE] [--keys DIR] COMMAND
//
// # Commands
//
//	import FILE   Import a PEM, DER, PKCS#7 or PKCS#12 package
//	chain         Build the chain of a stored (--nickname) or packaged (--file) leaf
//	list          List stored certificates with their trust flags
//
// # Global Flags
//
//	    --config        Configuration file (JSON or YAML)
//	    --db            Certificate database file
//	    --keys          Directory of local private keys
//	    --key-password  Password of encrypted private keys
//	    --log-format    cli or json
//
// # Examples
//
// Import a server package whose key lives in ./keys:
//
//	x509-cert-bundle-importer import server.p12 --password secret --keys ./keys
//
// Import CA certificates only:
//
//	x509-cert-bundle-importer import ca-bundle.pem --no-user
//
// Display the stored chain as an ASCII tree:
//
//	x509-cert-bundle-importer chain --nickname "My Server" --format tree
//
// Export it as PKCS#7:
//
//	x509-cert-bundle-importer chain --nickname "My Server" --format pkcs7 -o chain.p7b
package main
