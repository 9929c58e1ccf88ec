package remoting

import (
	"context"
	"errors"
	"sync"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// Session calls a stateful component through one server-side instance.
//
// Calls are serialized: at most one is in flight, and each carries the
// next sequence number so the server can detect lost, repeated or
// reordered calls. Once the session is terminated every call fails with
// ErrSessionExpired; a new session is never opened implicitly.
type Session struct {
	client  *Client
	binding Binding
	id      string

	mu    sync.Mutex
	seq   uint64
	state domain.SessionState
}

// ID returns the server-assigned session ID.
func (s *Session) ID() string {
	return s.id
}

// Binding returns what the session was opened on.
func (s *Session) Binding() Binding {
	return s.binding
}

// State returns the session's lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Call invokes method on the session's instance.
func (s *Session) Call(ctx context.Context, method string, args ...int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SessionTerminated {
		return Result{}, domain.ErrSessionExpired.WithDetailsf("session %s is terminated", s.id)
	}

	next := s.seq + 1
	res, err := s.client.invokeOnce(ctx, &remotev1.InvokeRequest{
		Key:       s.binding.Key.String(),
		SessionID: s.id,
		Sequence:  next,
		Method:    method,
		Args:      args,
	})

	switch {
	case err == nil:
		s.seq = next
		return res, nil

	case errors.Is(err, domain.ErrSessionExpired):
		s.state = domain.SessionTerminated
		return Result{}, err

	case isTransportFailure(err):
		// No answer from the server. Whether the call was applied is
		// unknown, so the sequence can no longer be trusted.
		s.state = domain.SessionTerminated
		return Result{}, err

	case errors.Is(err, domain.ErrInvocation):
		// The bean ran and failed; the server counted the call.
		s.seq = next
		return Result{}, err

	default:
		// Rejected before reaching the bean; the sequence did not move.
		return Result{}, asInvocationError(err)
	}
}

// Remove ends the session on the server. Removing a terminated session
// returns ErrSessionExpired.
func (s *Session) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SessionTerminated {
		return domain.ErrSessionExpired.WithDetailsf("session %s is terminated", s.id)
	}
	if s.client.closed.Load() {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.cfg.Timeout)
	defer cancel()

	_, err := s.client.removeSession.CallUnary(ctx, connect.NewRequest(&remotev1.RemoveSessionRequest{SessionID: s.id}))
	err = fromConnectError(err, domain.ErrInvocation)
	if err == nil || errors.Is(err, domain.ErrSessionExpired) {
		s.state = domain.SessionTerminated
	}
	return err
}
