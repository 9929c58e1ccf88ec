// Package output renders remotebean-client results.
//
//   - formatter.go: Format, ParseFormat and the Formatter factory
//   - text.go: human-readable trace and field tables
//   - encode.go: machine-readable JSON and YAML
package output
