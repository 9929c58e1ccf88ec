// Package benchmark provides performance benchmarks for remotebean.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Container benchmarks measure dispatch without a network; Remote
// benchmarks go through the client and an in-process HTTP server.
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
