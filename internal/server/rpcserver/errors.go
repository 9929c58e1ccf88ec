package rpcserver

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// connectCodes maps domain error codes to Connect status codes.
var connectCodes = map[string]connect.Code{
	domain.ErrNotFound.Code:            connect.CodeNotFound,
	domain.ErrAmbiguous.Code:           connect.CodeFailedPrecondition,
	domain.ErrResolutionTransport.Code: connect.CodeUnavailable,
	domain.ErrInvocation.Code:          connect.CodeUnknown,
	domain.ErrUnknownMethod.Code:       connect.CodeUnimplemented,
	domain.ErrOutOfOrder.Code:          connect.CodeAborted,
	domain.ErrRateLimited.Code:         connect.CodeResourceExhausted,
	domain.ErrSessionExpired.Code:      connect.CodeNotFound,
	domain.ErrInvalidArgument.Code:     connect.CodeInvalidArgument,
	domain.ErrInternal.Code:            connect.CodeInternal,
}

// toConnectError converts err into a connect.Error carrying the domain
// code in its metadata. Errors that are not DomainErrors came from a bean
// and are reported as ErrInvocation.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInvocation.WithCause(err).WithDetails(err.Error())
	}

	code, ok := connectCodes[de.Code]
	if !ok {
		code = connect.CodeUnknown
	}

	msg := de.Details
	if msg == "" {
		msg = de.Message
	}

	ce := connect.NewError(code, errors.New(msg))
	ce.Meta().Set(remotev1.ErrorCodeHeader, de.Code)
	return ce
}
