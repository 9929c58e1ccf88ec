// Package config defines the remotebean-client configuration.
//
// The client reads ~/.remotebean/client.yaml when present, then
// REMOTEBEAN_ environment variables, then command-line flags.
package config
