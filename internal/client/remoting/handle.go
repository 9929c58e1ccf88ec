package remoting

import (
	"context"
	"strconv"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
)

// Result is the value returned by a remote call.
type Result struct {
	Value int64
	// Void is set for methods that return nothing.
	Void bool
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if r.Void {
		return "void"
	}
	return strconv.FormatInt(r.Value, 10)
}

// Handle calls a stateless component. It is safe for concurrent use.
type Handle struct {
	client  *Client
	binding Binding
}

// Binding returns what the handle was resolved to.
func (h *Handle) Binding() Binding {
	return h.binding
}

// Call invokes method with args. A failed call is reported as
// ErrInvocation and is not retried.
func (h *Handle) Call(ctx context.Context, method string, args ...int64) (Result, error) {
	res, err := h.client.invokeOnce(ctx, &remotev1.InvokeRequest{
		Key:    h.binding.Key.String(),
		Method: method,
		Args:   args,
	})
	if err != nil {
		return Result{}, asInvocationError(err)
	}
	return res, nil
}
