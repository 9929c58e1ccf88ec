package rpcserver

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Handler implements the naming and invocation procedures on a container.
type Handler struct {
	container *container.Container
	logger    *slog.Logger
}

// NewHandler creates a handler for c.
func NewHandler(c *container.Container, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{container: c, logger: logger}
}

// Register mounts every procedure on mux.
func (h *Handler) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	opts = append([]connect.HandlerOption{connect.WithCodec(remotev1.Codec())}, opts...)

	mux.Handle(remotev1.NamingServiceLookupProcedure,
		connect.NewUnaryHandler(remotev1.NamingServiceLookupProcedure, h.Lookup, opts...))
	mux.Handle(remotev1.InvocationServiceCreateSessionProcedure,
		connect.NewUnaryHandler(remotev1.InvocationServiceCreateSessionProcedure, h.CreateSession, opts...))
	mux.Handle(remotev1.InvocationServiceInvokeProcedure,
		connect.NewUnaryHandler(remotev1.InvocationServiceInvokeProcedure, h.Invoke, opts...))
	mux.Handle(remotev1.InvocationServiceRemoveSessionProcedure,
		connect.NewUnaryHandler(remotev1.InvocationServiceRemoveSessionProcedure, h.RemoveSession, opts...))
}

// Lookup handles NamingService.Lookup.
func (h *Handler) Lookup(ctx context.Context, req *connect.Request[remotev1.LookupRequest]) (*connect.Response[remotev1.LookupResponse], error) {
	b, err := h.container.Lookup(ctx, req.Msg.Key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&remotev1.LookupResponse{Binding: toWireBinding(b)}), nil
}

// CreateSession handles InvocationService.CreateSession.
func (h *Handler) CreateSession(ctx context.Context, req *connect.Request[remotev1.CreateSessionRequest]) (*connect.Response[remotev1.CreateSessionResponse], error) {
	b, id, err := h.container.CreateSession(ctx, req.Msg.Key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&remotev1.CreateSessionResponse{
		SessionID: id,
		Binding:   toWireBinding(b),
	}), nil
}

// Invoke handles InvocationService.Invoke.
func (h *Handler) Invoke(ctx context.Context, req *connect.Request[remotev1.InvokeRequest]) (*connect.Response[remotev1.InvokeResponse], error) {
	v, err := h.container.Invoke(ctx, container.InvokeRequest{
		Key:       req.Msg.Key,
		SessionID: req.Msg.SessionID,
		Sequence:  req.Msg.Sequence,
		Method:    req.Msg.Method,
		Args:      req.Msg.Args,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&remotev1.InvokeResponse{Value: v.Int, Void: v.Void}), nil
}

// RemoveSession handles InvocationService.RemoveSession.
func (h *Handler) RemoveSession(ctx context.Context, req *connect.Request[remotev1.RemoveSessionRequest]) (*connect.Response[remotev1.RemoveSessionResponse], error) {
	if err := h.container.RemoveSession(ctx, req.Msg.SessionID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&remotev1.RemoveSessionResponse{}), nil
}

func toWireBinding(b container.Binding) remotev1.Binding {
	d := b.Descriptor
	return remotev1.Binding{
		Key:         b.Key.String(),
		Application: d.Application,
		Module:      d.Module,
		Distinct:    d.Distinct,
		Component:   d.Component,
		Contract:    d.Contract,
		Stateful:    d.Kind == naming.Stateful,
		Methods:     b.Contract.MethodNames(),
	}
}
