// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//
// # Usage Examples
//
//	import "github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/helper/posix"
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName(),
//	    Short: "Import X.509 certificate bundles",
//	}
//
// Cross-Platform Behavior:
//
//   - Linux/macOS: "/usr/bin/x509-cert-bundle-importer" → "x509-cert-bundle-importer"
//   - Windows: "C:\bin\x509-cert-bundle-importer.exe" → "x509-cert-bundle-importer"
//   - Fallback: Empty args → [FallbackName]
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
