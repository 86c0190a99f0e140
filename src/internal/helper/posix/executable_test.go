// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"runtime"
	"testing"
)

func TestGetExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./x509-cert-bundle-importer"}, expected: "x509-cert-bundle-importer"},
		{name: "Just filename", args: []string{"importer"}, expected: "importer"},
		{name: "Empty args", args: []string{}, expected: FallbackName},
		{name: "Empty first arg", args: []string{""}, expected: FallbackName},
		// Windows separators are split even on Unix.
		{name: "Foreign windows path", args: []string{"C:\\tools\\pki\\importer.exe"}, expected: "importer"},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests, struct {
			name     string
			args     []string
			expected string
		}{name: "Windows path without .exe", args: []string{"C:\\Program Files\\importer"}, expected: "importer"})
	} else {
		tests = append(tests, struct {
			name     string
			args     []string
			expected string
		}{name: "Unix absolute path", args: []string{"/usr/local/bin/x509-cert-bundle-importer"}, expected: "x509-cert-bundle-importer"})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = origArgs }()

			if result := GetExecutableName(); result != tt.expected {
				t.Errorf("GetExecutableName() = %q, want %q", result, tt.expected)
			}
		})
	}
}
