// Package scenario runs the demonstration scenarios against a remotebean
// server and reconciles every remote result with a locally computed value.
//
// The stateless scenario adds and subtracts through a Calculator. The
// stateful scenario increments a Counter session N times then decrements
// it N times, reading the count after every step. Any mismatch stops the
// run with ErrReconciliation.
package scenario
