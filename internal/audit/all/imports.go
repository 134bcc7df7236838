// Package all wires all built-in audit backends into the audit factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories with the audit package.
//
// In other words, importing this package makes the following audit kinds
// available at runtime:
//
//   - "sqlite"   (remap/internal/audit/sqlite)
//   - "postgres" (remap/internal/audit/postgres)
//
// Typical usage (in cmd/remap or a similar wiring layer):
//
//	import _ "remap/internal/audit/all" // enable all built-in backends
//
// If you want a binary that supports only one backend, import that backend's
// package directly instead of this one.
package all

import (
	_ "remap/internal/audit/postgres"
	_ "remap/internal/audit/sqlite"
)
