// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certdb defines the certificate and trust database used by the
// bundle importer and provides two implementations: [MemoryStore] for
// tests and short-lived processes, and [BoltStore], persisted with [bbolt].
//
// A store holds permanent certificates, each with a nickname and per-usage
// trust flags, plus a working set of temporary certificates decoded for
// inspection. Temporary certificates are visible to lookups until they are
// released, so callers must release every temporary certificate they create.
//
// [bbolt]: https://github.com/etcd-io/bbolt
package certdb
