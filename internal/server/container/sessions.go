package container

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/core/service"
	"github.com/yndnr/remotebean-go/internal/storage"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
)

// DefaultShardCount is the number of session store shards.
const DefaultShardCount = 16

// SessionConfig configures session lifecycle timing.
type SessionConfig struct {
	// IdleTimeout ends a session that has not been called for this long.
	IdleTimeout time.Duration

	// PassivateAfter moves an idle session's state to the passivation
	// store. Zero disables passivation.
	PassivateAfter time.Duration
}

// session is one stateful session. mu serializes calls on it.
type session struct {
	mu sync.Mutex

	id      string
	binding Binding

	bean       service.Bean // nil while passivated
	passivated bool
	terminated bool

	lastSeq  uint64
	lastUsed time.Time
}

type sessionShard struct {
	mu    sync.RWMutex
	items map[string]*session
}

// SessionStore holds stateful sessions.
//
// Lock order: a session's mu is taken before its shard's mu, never the
// other way round.
type SessionStore struct {
	shards []*sessionShard

	idleTimeout    atomic.Int64
	passivateAfter atomic.Int64

	passivation *storage.PassivationStore
	metrics     *metric.Registry
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessionStore creates a session store. passivation may be nil, which
// disables passivation regardless of cfg.
func NewSessionStore(cfg SessionConfig, passivation *storage.PassivationStore, metrics *metric.Registry, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}

	s := &SessionStore{
		shards:      make([]*sessionShard, DefaultShardCount),
		passivation: passivation,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &sessionShard{items: make(map[string]*session)}
	}
	s.SetConfig(cfg)
	return s
}

// SetConfig updates lifecycle timing. It is safe to call at any time.
func (s *SessionStore) SetConfig(cfg SessionConfig) {
	s.idleTimeout.Store(int64(cfg.IdleTimeout))
	s.passivateAfter.Store(int64(cfg.PassivateAfter))
}

// Config returns the current lifecycle timing.
func (s *SessionStore) Config() SessionConfig {
	return SessionConfig{
		IdleTimeout:    time.Duration(s.idleTimeout.Load()),
		PassivateAfter: time.Duration(s.passivateAfter.Load()),
	}
}

func (s *SessionStore) shardFor(id string) *sessionShard {
	return s.shards[murmur3.Sum32([]byte(id))%uint32(len(s.shards))]
}

// Create starts a session bound to b with a fresh bean instance.
func (s *SessionStore) Create(b Binding) (string, error) {
	id, err := domain.GenerateSessionID()
	if err != nil {
		return "", err
	}

	sess := &session{
		id:       id,
		binding:  b,
		bean:     b.Component.New(),
		lastUsed: s.now(),
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	sh.items[id] = sess
	sh.mu.Unlock()

	s.metrics.SessionsCreated.Inc()
	s.logger.Debug("session created", "session_id", id, "key", b.Key.String())
	return id, nil
}

func (s *SessionStore) get(id string) (*session, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sess, ok := sh.items[id]
	return sess, ok
}

func (s *SessionStore) drop(id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	delete(sh.items, id)
	sh.mu.Unlock()
}

// Invoke runs one call on a session.
//
// seq must be exactly one more than the sequence of the last call applied
// to the session; anything else is rejected with ErrOutOfOrder and does not
// change the session. A session that was removed, timed out, or never
// existed yields ErrSessionExpired. A malformed id is ErrInvalidArgument.
func (s *SessionStore) Invoke(ctx context.Context, id string, b Binding, seq uint64, method string, args []int64) (domain.Value, error) {
	if !domain.IsValidSessionID(id) {
		return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("malformed session id %q", id)
	}
	sess, ok := s.get(id)
	if !ok {
		return domain.Value{}, domain.ErrSessionExpired.WithDetailsf("session %s does not exist", id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.terminated {
		return domain.Value{}, domain.ErrSessionExpired.WithDetailsf("session %s was terminated", id)
	}

	now := s.now()
	if idle := s.Config().IdleTimeout; idle > 0 && now.Sub(sess.lastUsed) > idle {
		s.expireLocked(ctx, sess)
		return domain.Value{}, domain.ErrSessionExpired.WithDetailsf("session %s idle for more than %s", id, idle)
	}

	if sess.binding.Key != b.Key {
		return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("session %s is bound to %s, not %s", id, sess.binding.Key, b.Key)
	}

	if seq != sess.lastSeq+1 {
		return domain.Value{}, domain.ErrOutOfOrder.WithDetailsf("session %s expected sequence %d, got %d", id, sess.lastSeq+1, seq)
	}

	if sess.passivated {
		if err := s.activateLocked(ctx, sess); err != nil {
			return domain.Value{}, err
		}
	}

	v, err := sess.bean.Invoke(ctx, method, args)

	// The call reached the bean, so it counts as applied even if it failed.
	sess.lastSeq = seq
	sess.lastUsed = s.now()

	return v, err
}

// Remove ends a session at the client's request.
func (s *SessionStore) Remove(ctx context.Context, id string) error {
	if !domain.IsValidSessionID(id) {
		return domain.ErrInvalidArgument.WithDetailsf("malformed session id %q", id)
	}
	sess, ok := s.get(id)
	if !ok {
		return domain.ErrSessionExpired.WithDetailsf("session %s does not exist", id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.terminated {
		return domain.ErrSessionExpired.WithDetailsf("session %s was terminated", id)
	}

	s.terminateLocked(ctx, sess)
	s.metrics.SessionsRemoved.Inc()
	s.logger.Debug("session removed", "session_id", id)
	return nil
}

// Sweep expires and passivates idle sessions as of now.
func (s *SessionStore) Sweep(ctx context.Context) {
	now := s.now()
	cfg := s.Config()

	for _, sh := range s.shards {
		sh.mu.RLock()
		batch := make([]*session, 0, len(sh.items))
		for _, sess := range sh.items {
			batch = append(batch, sess)
		}
		sh.mu.RUnlock()

		for _, sess := range batch {
			s.sweepOne(ctx, sess, now, cfg)
		}
	}
}

func (s *SessionStore) sweepOne(ctx context.Context, sess *session, now time.Time, cfg SessionConfig) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.terminated {
		return
	}

	idle := now.Sub(sess.lastUsed)
	if cfg.IdleTimeout > 0 && idle > cfg.IdleTimeout {
		s.expireLocked(ctx, sess)
		return
	}

	if s.passivation == nil || sess.passivated || cfg.PassivateAfter <= 0 || idle <= cfg.PassivateAfter {
		return
	}

	bean, ok := sess.bean.(service.StatefulBean)
	if !ok {
		return
	}

	state, err := bean.Passivate()
	if err != nil {
		s.logger.Warn("session passivation failed", "session_id", sess.id, "error", err)
		return
	}

	ttl := time.Duration(0)
	if cfg.IdleTimeout > 0 {
		ttl = cfg.IdleTimeout - idle
	}
	if err := s.passivation.Put(ctx, sess.id, state, ttl); err != nil {
		s.logger.Warn("session passivation failed", "session_id", sess.id, "error", err)
		return
	}

	sess.bean = nil
	sess.passivated = true
	s.metrics.SessionsPassivated.Inc()
	s.logger.Debug("session passivated", "session_id", sess.id, "idle", idle)
}

func (s *SessionStore) activateLocked(ctx context.Context, sess *session) error {
	state, err := s.passivation.Take(ctx, sess.id)
	if err != nil {
		if errors.Is(err, storage.ErrNotPassivated) {
			s.expireLocked(ctx, sess)
			return domain.ErrSessionExpired.WithDetailsf("session %s state is gone", sess.id)
		}
		return domain.ErrInternal.WithCause(err).WithDetails("activate session")
	}

	bean, ok := sess.binding.Component.New().(service.StatefulBean)
	if !ok {
		return domain.ErrInternal.WithDetailsf("component %s cannot be activated", sess.binding.Component.Name)
	}
	if err := bean.Activate(state); err != nil {
		return domain.ErrInternal.WithCause(err).WithDetails("activate session")
	}

	sess.bean = bean
	sess.passivated = false
	s.metrics.SessionsActivated.Inc()
	s.logger.Debug("session activated", "session_id", sess.id)
	return nil
}

func (s *SessionStore) expireLocked(ctx context.Context, sess *session) {
	s.terminateLocked(ctx, sess)
	s.metrics.SessionsExpired.Inc()
	s.logger.Debug("session expired", "session_id", sess.id)
}

func (s *SessionStore) terminateLocked(ctx context.Context, sess *session) {
	if sess.passivated && s.passivation != nil {
		if err := s.passivation.Delete(ctx, sess.id); err != nil {
			s.logger.Warn("failed to delete passivated state", "session_id", sess.id, "error", err)
		}
	}
	sess.terminated = true
	sess.bean = nil
	s.drop(sess.id)
}

// Stats returns the number of in-memory and passivated sessions.
func (s *SessionStore) Stats() metric.SessionStats {
	var st metric.SessionStats
	for _, sh := range s.shards {
		sh.mu.RLock()
		batch := make([]*session, 0, len(sh.items))
		for _, sess := range sh.items {
			batch = append(batch, sess)
		}
		sh.mu.RUnlock()

		for _, sess := range batch {
			sess.mu.Lock()
			switch {
			case sess.terminated:
			case sess.passivated:
				st.Passivated++
			default:
				st.Active++
			}
			sess.mu.Unlock()
		}
	}
	return st
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}
