// Package command defines the remotebean-client commands using
// urfave/cli/v2:
//
//   - root.go: the application, global flags and configuration setup
//   - run.go: the demo scenarios, also the default action
//   - lookup.go: resolving an arbitrary lookup key
//   - version.go: build information
package command
