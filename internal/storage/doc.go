// Package storage provides the passivation store for stateful sessions.
//
// When a stateful session has been idle for a while the container writes
// its bean state here and drops the in-memory instance. The next call on
// the session takes the state back out and activates a fresh instance.
//
// The store is backed by Badger. Entries carry a TTL equal to the session
// idle timeout, so state of a session that never comes back expires on its
// own. Badger can run fully in memory, which the tests and the default
// configuration use.
package storage
