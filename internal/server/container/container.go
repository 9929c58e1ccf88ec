package container

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/storage"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Default container settings.
const (
	DefaultPoolSize       = 4
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultPassivateAfter = time.Minute
	DefaultSweepInterval  = 10 * time.Second
)

// Config configures a Container.
type Config struct {
	PoolSize      int
	Session       SessionConfig
	SweepInterval time.Duration
}

// DefaultConfig returns the default container configuration.
func DefaultConfig() Config {
	return Config{
		PoolSize: DefaultPoolSize,
		Session: SessionConfig{
			IdleTimeout:    DefaultIdleTimeout,
			PassivateAfter: DefaultPassivateAfter,
		},
		SweepInterval: DefaultSweepInterval,
	}
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithPassivation enables passivation of idle sessions into store.
func WithPassivation(store *storage.PassivationStore) Option {
	return func(c *Container) {
		c.passivation = store
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// InvokeRequest is one remote call.
type InvokeRequest struct {
	// Key is the lookup key of the target component.
	Key string

	// SessionID and Sequence are set for stateful calls only.
	SessionID string
	Sequence  uint64

	Method string
	Args   []int64
}

// Container hosts deployed components and dispatches calls to them.
type Container struct {
	cfg Config

	directory *Directory
	sessions  *SessionStore

	poolsMu sync.RWMutex
	pools   map[*Component]*pool

	passivation *storage.PassivationStore
	metrics     *metric.Registry
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a container with no deployments.
func New(cfg Config, opts ...Option) *Container {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = DefaultPoolSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	c := &Container{
		cfg:       cfg,
		directory: NewDirectory(),
		pools:     make(map[*Component]*pool),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metric.NewRegistry()
	}

	c.sessions = NewSessionStore(cfg.Session, c.passivation, c.metrics, c.logger)
	c.sessions.now = c.now
	return c
}

// Deploy registers a deployment and creates instance pools for its
// stateless components.
func (c *Container) Deploy(dep *Deployment) error {
	pools := make(map[*Component]*pool)
	for _, comp := range dep.Components {
		if comp.Kind == naming.Stateless {
			pools[comp] = newPool(comp.New, c.cfg.PoolSize)
		}
	}

	// Pools become visible together with the directory entry.
	c.poolsMu.Lock()
	if err := c.directory.Deploy(dep); err != nil {
		c.poolsMu.Unlock()
		return err
	}
	for comp, p := range pools {
		c.pools[comp] = p
	}
	c.poolsMu.Unlock()

	c.logger.Info("module deployed",
		"application", dep.Application,
		"module", dep.Module,
		"distinct", dep.Distinct,
		"components", len(dep.Components))
	return nil
}

// Directory returns the deployment directory.
func (c *Container) Directory() *Directory {
	return c.directory
}

// Sessions returns the session store.
func (c *Container) Sessions() *SessionStore {
	return c.sessions
}

// SetSessionConfig updates session timing on a running container.
func (c *Container) SetSessionConfig(cfg SessionConfig) {
	c.sessions.SetConfig(cfg)
}

// Lookup resolves a lookup key.
func (c *Container) Lookup(_ context.Context, key string) (Binding, error) {
	b, err := c.lookup(key)
	kind := "unknown"
	if err == nil {
		kind = b.Descriptor.Kind.String()
	}
	c.metrics.RecordLookup(kind, resultLabel(err))
	return b, err
}

func (c *Container) lookup(key string) (Binding, error) {
	desc, err := naming.ParseKey(key)
	if err != nil {
		return Binding{}, domain.ErrInvalidArgument.WithCause(err).WithDetails(err.Error())
	}
	return c.directory.Lookup(desc)
}

// CreateSession resolves a stateful key and starts a session on it.
func (c *Container) CreateSession(_ context.Context, key string) (Binding, string, error) {
	b, err := c.lookup(key)
	if err != nil {
		return Binding{}, "", err
	}
	if b.Descriptor.Kind != naming.Stateful {
		return Binding{}, "", domain.ErrInvalidArgument.WithDetailsf("%s is not stateful", b.Key)
	}

	id, err := c.sessions.Create(b)
	if err != nil {
		return Binding{}, "", domain.ErrInternal.WithCause(err).WithDetails("create session")
	}
	return b, id, nil
}

// RemoveSession ends a session.
func (c *Container) RemoveSession(ctx context.Context, id string) error {
	return c.sessions.Remove(ctx, id)
}

// Invoke dispatches one call.
//
// Method name and arity are checked against the contract before a stateful
// call touches its session, so a malformed call does not consume a sequence
// number.
func (c *Container) Invoke(ctx context.Context, req InvokeRequest) (domain.Value, error) {
	b, err := c.lookup(req.Key)
	if err != nil {
		return domain.Value{}, err
	}

	m, ok := b.Contract.Method(req.Method)
	if !ok {
		return domain.Value{}, domain.ErrUnknownMethod.WithDetailsf("%s has no method %q", b.Contract.Name, req.Method)
	}
	if len(req.Args) != m.Arity {
		return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("%s.%s takes %d arguments, got %d",
			b.Contract.Name, m.Name, m.Arity, len(req.Args))
	}

	start := c.now()
	var v domain.Value
	switch b.Descriptor.Kind {
	case naming.Stateful:
		if req.SessionID == "" {
			return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("%s requires a session", b.Key)
		}
		v, err = c.sessions.Invoke(ctx, req.SessionID, b, req.Sequence, req.Method, req.Args)
	default:
		if req.SessionID != "" {
			return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("%s is stateless and takes no session", b.Key)
		}
		v, err = c.invokeStateless(ctx, b, req.Method, req.Args)
	}

	c.metrics.RecordInvocation(b.Contract.Name, req.Method, resultLabel(err), c.now().Sub(start).Seconds())
	return v, err
}

func (c *Container) invokeStateless(ctx context.Context, b Binding, method string, args []int64) (domain.Value, error) {
	c.poolsMu.RLock()
	p, ok := c.pools[b.Component]
	c.poolsMu.RUnlock()
	if !ok {
		return domain.Value{}, domain.ErrInternal.WithDetailsf("no instance pool for %s", b.Component.Name)
	}

	bean, idx := p.get()
	c.logger.Debug("dispatching stateless call", "key", b.Key.String(), "method", method, "instance", idx)
	return bean.Invoke(ctx, method, args)
}

// Run sweeps idle sessions until ctx is done.
func (c *Container) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sessions.Sweep(ctx)
		}
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := domain.GetErrorCode(err); code != "" {
		return code
	}
	return "error"
}
