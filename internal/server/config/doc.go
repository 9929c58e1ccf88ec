// Package config defines the remotebean-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - load.go: loading through internal/infra/confloader and mapping to
//     component configuration
package config
