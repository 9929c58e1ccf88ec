package remoting

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"

	remotev1 "github.com/yndnr/remotebean-go/api/remote/v1"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// ErrClosed is returned by a Client after Close.
var ErrClosed = errors.New("remoting: client closed")

// Binding is a resolved component.
type Binding struct {
	// Key is the canonical key the server resolved the lookup to.
	Key        naming.Key
	Descriptor naming.Descriptor
	Methods    []string
}

// Client talks to one remotebean server. Create it with New and release
// it with Close.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	ownsHTTP   bool
	logger     *slog.Logger

	lookup        *connect.Client[remotev1.LookupRequest, remotev1.LookupResponse]
	createSession *connect.Client[remotev1.CreateSessionRequest, remotev1.CreateSessionResponse]
	invoke        *connect.Client[remotev1.InvokeRequest, remotev1.InvokeResponse]
	removeSession *connect.Client[remotev1.RemoveSessionRequest, remotev1.RemoveSessionResponse]

	rngMu sync.Mutex
	rng   *rand.Rand

	closed atomic.Bool
}

// New creates a client. It does not contact the server.
func New(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.LookupAttempts < 1 {
		cfg.LookupAttempts = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	baseURL := strings.TrimRight(cfg.Server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		c.ownsHTTP = true
	}

	opts := []connect.ClientOption{
		connect.WithCodec(remotev1.Codec()),
		connect.WithInterceptors(newRequestIDInterceptor()),
	}
	c.lookup = connect.NewClient[remotev1.LookupRequest, remotev1.LookupResponse](
		c.httpClient, baseURL+remotev1.NamingServiceLookupProcedure, opts...)
	c.createSession = connect.NewClient[remotev1.CreateSessionRequest, remotev1.CreateSessionResponse](
		c.httpClient, baseURL+remotev1.InvocationServiceCreateSessionProcedure, opts...)
	c.invoke = connect.NewClient[remotev1.InvokeRequest, remotev1.InvokeResponse](
		c.httpClient, baseURL+remotev1.InvocationServiceInvokeProcedure, opts...)
	c.removeSession = connect.NewClient[remotev1.RemoveSessionRequest, remotev1.RemoveSessionResponse](
		c.httpClient, baseURL+remotev1.InvocationServiceRemoveSessionProcedure, opts...)

	return c, nil
}

// Server returns the base URL the client talks to.
func (c *Client) Server() string {
	return c.baseURL
}

// Close releases idle connections. Handles and sessions created by the
// client fail with ErrClosed afterwards. Close is idempotent.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.ownsHTTP {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// Resolve looks up a stateless component and returns a handle to it.
func (c *Client) Resolve(ctx context.Context, d naming.Descriptor) (*Handle, error) {
	if d.Kind != naming.Stateless {
		return nil, domain.ErrInvalidArgument.WithDetailsf("%s is a stateful lookup; use OpenSession", d.Key())
	}

	b, err := c.Lookup(ctx, d)
	if err != nil {
		return nil, err
	}
	return &Handle{client: c, binding: b}, nil
}

// Lookup resolves a descriptor without creating a handle.
func (c *Client) Lookup(ctx context.Context, d naming.Descriptor) (Binding, error) {
	if c.closed.Load() {
		return Binding{}, ErrClosed
	}
	if err := d.Validate(); err != nil {
		return Binding{}, domain.ErrInvalidArgument.WithCause(err).WithDetails(err.Error())
	}

	key := d.Key().String()
	var lastErr error
	for attempt := 1; attempt <= c.cfg.LookupAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoff(attempt - 1)
			c.logger.Debug("retrying lookup", "key", key, "attempt", attempt, "delay", delay, "error", lastErr)
			if err := sleepContext(ctx, delay); err != nil {
				return Binding{}, domain.ErrResolutionTransport.WithCause(err).WithDetails(lastErr.Error())
			}
		}

		b, err := c.lookupOnce(ctx, key)
		if err == nil {
			c.logger.Debug("lookup resolved", "key", key, "resolved", b.Key.String())
			return b, nil
		}
		if !errors.Is(err, domain.ErrResolutionTransport) {
			return Binding{}, err
		}
		lastErr = err
	}
	return Binding{}, lastErr
}

func (c *Client) lookupOnce(ctx context.Context, key string) (Binding, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.lookup.CallUnary(ctx, connect.NewRequest(&remotev1.LookupRequest{Key: key}))
	if err != nil {
		return Binding{}, fromConnectError(err, domain.ErrResolutionTransport)
	}
	return fromWireBinding(resp.Msg.Binding)
}

// OpenSession looks up a stateful component and creates a session on it.
// The descriptor's kind is taken as stateful.
func (c *Client) OpenSession(ctx context.Context, d naming.Descriptor) (*Session, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	d = d.WithKind(naming.Stateful)
	if err := d.Validate(); err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err).WithDetails(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.createSession.CallUnary(ctx, connect.NewRequest(&remotev1.CreateSessionRequest{Key: d.Key().String()}))
	if err != nil {
		return nil, fromConnectError(err, domain.ErrResolutionTransport)
	}

	b, err := fromWireBinding(resp.Msg.Binding)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("session opened", "key", b.Key.String(), "session_id", resp.Msg.SessionID)
	return &Session{
		client:  c,
		binding: b,
		id:      resp.Msg.SessionID,
		state:   domain.SessionActive,
	}, nil
}

// invokeOnce performs one Invoke round trip. Errors are domain errors;
// transport failures are ErrInvocation.
func (c *Client) invokeOnce(ctx context.Context, req *remotev1.InvokeRequest) (Result, error) {
	if c.closed.Load() {
		return Result{}, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.invoke.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return Result{}, fromConnectError(err, domain.ErrInvocation)
	}
	return Result{Value: resp.Msg.Value, Void: resp.Msg.Void}, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return nextBackoff(c.cfg.InitialBackoff, c.cfg.MaxBackoff, attempt, c.rng)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func fromWireBinding(b remotev1.Binding) (Binding, error) {
	d, err := naming.ParseKey(b.Key)
	if err != nil {
		return Binding{}, domain.ErrInternal.WithCause(err).WithDetailsf("server returned bad key %q", b.Key)
	}
	return Binding{
		Key:        naming.Key(b.Key),
		Descriptor: d,
		Methods:    b.Methods,
	}, nil
}
