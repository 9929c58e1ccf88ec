// Command remotebean-client looks up the demo Calculator and Counter
// components on a remotebean server and checks their results.
//
// Without arguments it runs the stateless scenario followed by the
// stateful one and exits non-zero if any step fails.
package main
