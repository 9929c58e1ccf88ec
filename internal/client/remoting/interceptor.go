package remoting

import (
	"context"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

// requestIDInterceptor sends the context's request ID, or a fresh one, with
// every call so client and server logs can be joined.
type requestIDInterceptor struct{}

func newRequestIDInterceptor() connect.Interceptor {
	return requestIDInterceptor{}
}

func (requestIDInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		id := logger.RequestIDFromContext(ctx)
		if id == "" {
			id = domain.GenerateRequestID()
		}
		req.Header().Set(remotev1.RequestIDHeader, id)
		return next(ctx, req)
	}
}

func (requestIDInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (requestIDInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
