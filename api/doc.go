// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package api defines the pure contracts of hioload-net: the Selectable
// readiness/dispatch abstraction consumed by pollers, the IOExecutor
// registration contract, endpoint and protocol value types, completion
// result types, and the shared error taxonomy.
//
// The package contains no implementations and no syscalls; every other
// package in the module depends on it and it depends on nothing.
package api
