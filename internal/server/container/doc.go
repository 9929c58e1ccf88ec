// Package container is the remoting provider behind remotebean-server.
//
// It holds three things:
//
//   - Directory: deployed components, resolved from naming descriptors
//   - pool: round-robin instances of each stateless component
//   - SessionStore: one bean instance per stateful session, with idle
//     expiry, passivation and a per-session call sequence guard
//
// Container ties them together behind the operations the RPC layer
// exposes: Lookup, Invoke, CreateSession and RemoveSession.
package container
