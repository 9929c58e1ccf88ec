package remoting

import (
	"errors"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// fromConnectError rebuilds the domain error the server sent. Errors with
// no domain code never reached the server's handlers and are reported as
// transport, which is ErrResolutionTransport for lookups and ErrInvocation
// for calls.
func fromConnectError(err error, transport *domain.DomainError) error {
	if err == nil {
		return nil
	}

	var ce *connect.Error
	if errors.As(err, &ce) {
		if code := ce.Meta().Get(remotev1.ErrorCodeHeader); code != "" {
			sentinel := domain.LookupError(code)
			if sentinel == nil {
				sentinel = domain.NewDomainError(code, "remote error")
			}
			return sentinel.WithDetails(ce.Message())
		}
	}

	return transport.WithCause(err).WithDetails(err.Error())
}

// asInvocationError folds server-side rejections of a call into
// ErrInvocation, keeping the original as the cause. ErrSessionExpired is
// returned as is.
func asInvocationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrInvocation) {
		return err
	}
	return domain.ErrInvocation.WithCause(err).WithDetails(err.Error())
}

// isTransportFailure reports whether err means the server never answered.
func isTransportFailure(err error) bool {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce.Meta().Get(remotev1.ErrorCodeHeader) == ""
	}
	return false
}
