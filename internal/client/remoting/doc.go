// Package remoting is the client side of remotebean.
//
// A Client resolves naming descriptors against a remotebean server and
// returns handles for calling the resolved component:
//
//   - Handle, for stateless components. Calls are independent; any
//     server instance may serve any call. Safe for concurrent use.
//   - Session, for stateful components. Bound at creation to one
//     server-side instance; calls are numbered and applied in order.
//
// Lookups are retried on transport failure with capped exponential
// backoff. Invocations are never retried.
package remoting
