// Package service provides the server-side component implementations.
//
// This package contains:
//
//   - CalculatorBean: stateless arithmetic over int64
//   - CounterBean: a per-session counter whose state can be passivated
//
// Beans receive already-validated method names and arguments from the
// container. A stateless bean may be shared by concurrent calls; a stateful
// bean is only ever called by its own session, one call at a time.
package service
