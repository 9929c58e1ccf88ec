// Package domain defines the core domain types shared by the remotebean
// client and server.
//
// This package contains:
//
//   - Errors: the error taxonomy with stable codes
//   - Session: session identifiers and lifecycle states
//   - Value: the result of a remote invocation
//
// Nothing here performs IO.
package domain
