package rpcserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

// LoggingInterceptor logs all RPC requests and responses, and tags the
// request context with a request ID.
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor.
func NewLoggingInterceptor(l *slog.Logger) *LoggingInterceptor {
	if l == nil {
		l = slog.Default()
	}
	return &LoggingInterceptor{logger: l}
}

// WrapUnary implements connect.Interceptor.
func (i *LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()

		requestID := req.Header().Get(remotev1.RequestIDHeader)
		if requestID == "" {
			requestID = domain.GenerateRequestID()
		}
		ctx = logger.WithRequestID(logger.WithLogger(ctx, i.logger), requestID)
		log := logger.L(ctx)

		log.Debug("rpc request",
			"method", req.Spec().Procedure,
			"peer", req.Peer().Addr)

		resp, err := next(ctx, req)

		duration := time.Since(start)
		if err != nil {
			level := slog.LevelWarn
			if connect.CodeOf(err) == connect.CodeInternal {
				level = slog.LevelError
			}
			log.Log(ctx, level, "rpc error",
				"method", req.Spec().Procedure,
				"duration_ms", duration.Milliseconds(),
				"error", err)
			return resp, err
		}

		log.Debug("rpc response",
			"method", req.Spec().Procedure,
			"duration_ms", duration.Milliseconds())
		resp.Header().Set(remotev1.RequestIDHeader, requestID)
		return resp, nil
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next // No-op for server-side
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next // All procedures are unary
}

// RecoveryInterceptor recovers from panics.
type RecoveryInterceptor struct {
	logger *slog.Logger
}

// NewRecoveryInterceptor creates a new recovery interceptor.
func NewRecoveryInterceptor(l *slog.Logger) *RecoveryInterceptor {
	if l == nil {
		l = slog.Default()
	}
	return &RecoveryInterceptor{logger: l}
}

// WrapUnary implements connect.Interceptor.
func (i *RecoveryInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (resp connect.AnyResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				i.logger.Error("rpc panic recovered",
					"method", req.Spec().Procedure,
					"panic", r)

				err = toConnectError(domain.ErrInternal.WithDetails(fmt.Sprintf("panic recovered: %v", r)))
			}
		}()

		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *RecoveryInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next // No-op for server-side
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *RecoveryInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// RateLimitInterceptor rejects calls above a fixed rate with
// ErrRateLimited. It applies to the whole server, not per peer.
type RateLimitInterceptor struct {
	limiter *rate.Limiter
}

// NewRateLimitInterceptor allows perSecond calls per second with bursts of
// burst. A burst below one is raised to one.
func NewRateLimitInterceptor(perSecond float64, burst int) *RateLimitInterceptor {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitInterceptor{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// WrapUnary implements connect.Interceptor.
func (i *RateLimitInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if !i.limiter.Allow() {
			return nil, toConnectError(domain.ErrRateLimited.WithDetailsf("%s", req.Spec().Procedure))
		}
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *RateLimitInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *RateLimitInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// DefaultInterceptors returns the interceptor chain for the RPC server.
// A non-positive perSecond disables rate limiting.
func DefaultInterceptors(l *slog.Logger, perSecond float64, burst int) []connect.Interceptor {
	interceptors := []connect.Interceptor{
		NewRecoveryInterceptor(l),
		NewLoggingInterceptor(l),
	}
	if perSecond > 0 {
		interceptors = append(interceptors, NewRateLimitInterceptor(perSecond, burst))
	}
	return interceptors
}
