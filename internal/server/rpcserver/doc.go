// Package rpcserver exposes a container over Connect.
//
// It serves the naming and invocation procedures defined in api/remote/v1
// together with /healthz and /metrics on one HTTP listener. Every
// procedure runs behind the recovery, logging and rate limit interceptors.
package rpcserver
