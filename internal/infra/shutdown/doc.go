// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM, context cancellation, or an explicit
// Trigger, then runs registered hooks in reverse registration order under
// a shared deadline:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("rpc server", srv.Shutdown)
//	if err := h.Wait(ctx); err != nil { ... }
package shutdown
