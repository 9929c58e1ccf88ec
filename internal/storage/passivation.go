package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// Common errors
var (
	ErrNotPassivated = errors.New("storage: session not passivated")
	ErrClosed        = errors.New("storage: passivation store closed")
)

// keyPrefix namespaces passivated session entries.
var keyPrefix = []byte("pasv/")

// Config configures the passivation store.
type Config struct {
	// Dir is the Badger data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory.
	InMemory bool

	// GCInterval is how often the value log GC runs for on-disk stores.
	GCInterval time.Duration

	// GCThreshold is the discard ratio passed to RunValueLogGC.
	GCThreshold float64

	// Logger receives Badger's log output.
	Logger *slog.Logger
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		InMemory:    true,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// PassivationStore holds the serialized state of idle sessions.
type PassivationStore struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// Open opens a passivation store.
func Open(cfg Config) (*PassivationStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, fmt.Errorf("passivation: dir is required unless in_memory is set")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("passivation: open db: %w", err)
	}

	s := &PassivationStore{
		db:     db,
		cfg:    cfg,
		logger: cfg.Logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if cfg.InMemory || cfg.GCInterval <= 0 {
		close(s.doneCh)
	} else {
		go s.gcLoop()
	}

	cfg.Logger.Info("passivation store opened",
		"in_memory", cfg.InMemory,
		"dir", cfg.Dir)

	return s, nil
}

// Put stores the state of a session. The entry expires after ttl; a
// non-positive ttl stores it without expiry.
func (s *PassivationStore) Put(ctx context.Context, sessionID string, state []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(entryKey(sessionID), state)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Take removes and returns the state of a session. It returns
// ErrNotPassivated if there is none, including when the entry expired.
func (s *PassivationStore) Take(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		key := entryKey(sessionID)
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotPassivated
			}
			return err
		}

		state, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes a session's state if present.
func (s *PassivationStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(sessionID))
	})
}

// Count returns the number of live passivated sessions.
func (s *PassivationStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close stops background GC and closes the database. Later calls return
// ErrClosed.
func (s *PassivationStore) Close() error {
	err := ErrClosed
	s.closeOnce.Do(func() {
		err = s.close()
	})
	return err
}

func (s *PassivationStore) close() error {
	close(s.stopCh)
	<-s.doneCh

	n, countErr := s.Count()
	if countErr != nil {
		n = -1
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("passivation: close db: %w", err)
	}
	s.logger.Info("passivation store closed", "passivated", n)
	return nil
}

// gcLoop runs periodic value log garbage collection.
func (s *PassivationStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				err := s.db.RunValueLogGC(s.cfg.GCThreshold)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.logger.Error("passivation gc failed", "error", err)
					}
					break
				}
			}
		case <-s.stopCh:
			return
		}
	}
}

func entryKey(sessionID string) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(sessionID))
	key = append(key, keyPrefix...)
	return append(key, sessionID...)
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
