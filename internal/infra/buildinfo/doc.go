// Package buildinfo exposes version information for the remotebean
// binaries. Release builds inject values with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/remotebean-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Development builds fall back to the VCS data recorded by the Go
// toolchain.
package buildinfo
