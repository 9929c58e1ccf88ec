package container

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/core/service"
	"github.com/yndnr/remotebean-go/internal/storage"
	"github.com/yndnr/remotebean-go/internal/telemetry/metric"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

const (
	calculatorKey = "ejb:/remote-app//CalculatorBean!Calculator"
	counterKey    = "ejb:/remote-app//CounterBean!Counter?stateful"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func demoDeployment(distinct string) *Deployment {
	return &Deployment{
		Module:   "remote-app",
		Distinct: distinct,
		Components: []*Component{
			{
				Name:      "CalculatorBean",
				Kind:      naming.Stateless,
				Contracts: []contract.Spec{contract.CalculatorSpec},
				New:       service.NewCalculatorBean,
			},
			{
				Name:      "CounterBean",
				Kind:      naming.Stateful,
				Contracts: []contract.Spec{contract.CounterSpec},
				New:       service.NewCounterBean,
			},
		},
	}
}

func newTestContainer(t *testing.T, cfg Config, opts ...Option) *Container {
	t.Helper()
	opts = append([]Option{WithMetrics(metric.NewRegistry())}, opts...)
	c := New(cfg, opts...)
	if err := c.Deploy(demoDeployment("")); err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	return c
}

func TestContainer_Lookup(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"stateless", calculatorKey, nil},
		{"stateful", counterKey, nil},
		{"unknown component", "ejb:/remote-app//NoSuchBean!Calculator", domain.ErrNotFound},
		{"unknown module", "ejb:/other-app//CalculatorBean!Calculator", domain.ErrNotFound},
		{"contract not exposed", "ejb:/remote-app//CalculatorBean!Counter", domain.ErrNotFound},
		{"kind mismatch", "ejb:/remote-app//CounterBean!Counter", domain.ErrNotFound},
		{"malformed", "not-a-key", domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := c.Lookup(ctx, tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Lookup(%q) error = %v, want %v", tt.key, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.key, err)
			}
			if string(b.Key) != tt.key {
				t.Errorf("Key = %q, want %q", b.Key, tt.key)
			}
		})
	}
}

func TestContainer_LookupDistinct(t *testing.T) {
	ctx := context.Background()

	t.Run("single distinct deployment resolves from empty distinct", func(t *testing.T) {
		c := New(DefaultConfig(), WithMetrics(metric.NewRegistry()))
		if err := c.Deploy(demoDeployment("blue")); err != nil {
			t.Fatal(err)
		}

		b, err := c.Lookup(ctx, calculatorKey)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if b.Descriptor.Distinct != "blue" {
			t.Errorf("Distinct = %q, want %q", b.Descriptor.Distinct, "blue")
		}
	})

	t.Run("two distinct deployments are ambiguous", func(t *testing.T) {
		c := New(DefaultConfig(), WithMetrics(metric.NewRegistry()))
		for _, d := range []string{"blue", "green"} {
			if err := c.Deploy(demoDeployment(d)); err != nil {
				t.Fatal(err)
			}
		}

		if _, err := c.Lookup(ctx, calculatorKey); !errors.Is(err, domain.ErrAmbiguous) {
			t.Fatalf("Lookup() error = %v, want ErrAmbiguous", err)
		}
		if _, err := c.Lookup(ctx, "ejb:/remote-app/green/CalculatorBean!Calculator"); err != nil {
			t.Fatalf("Lookup(green) error = %v", err)
		}
	})

	t.Run("exact match wins over ambiguity", func(t *testing.T) {
		c := New(DefaultConfig(), WithMetrics(metric.NewRegistry()))
		for _, d := range []string{"", "blue"} {
			if err := c.Deploy(demoDeployment(d)); err != nil {
				t.Fatal(err)
			}
		}

		b, err := c.Lookup(ctx, calculatorKey)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if b.Descriptor.Distinct != "" {
			t.Errorf("Distinct = %q, want empty", b.Descriptor.Distinct)
		}
	})

	t.Run("duplicate deployment rejected", func(t *testing.T) {
		c := New(DefaultConfig(), WithMetrics(metric.NewRegistry()))
		if err := c.Deploy(demoDeployment("")); err != nil {
			t.Fatal(err)
		}
		if err := c.Deploy(demoDeployment("")); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("second Deploy() error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestContainer_InvokeStateless(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		method string
		args   []int64
		want   int64
	}{
		{contract.MethodAdd, []int64{204, 340}, 544},
		{contract.MethodSubtract, []int64{3434, 2332}, 1102},
		{contract.MethodAdd, []int64{-5, 5}, 0},
	}

	for _, tt := range tests {
		// Repeat so calls land on every pooled instance.
		for i := 0; i < DefaultPoolSize+1; i++ {
			v, err := c.Invoke(ctx, InvokeRequest{Key: calculatorKey, Method: tt.method, Args: tt.args})
			if err != nil {
				t.Fatalf("%s%v error = %v", tt.method, tt.args, err)
			}
			if v.Int != tt.want {
				t.Errorf("%s%v = %d, want %d", tt.method, tt.args, v.Int, tt.want)
			}
		}
	}
}

func TestContainer_InvokeRejects(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     InvokeRequest
		wantErr error
	}{
		{"unknown method", InvokeRequest{Key: calculatorKey, Method: "multiply", Args: []int64{1, 2}}, domain.ErrUnknownMethod},
		{"wrong arity", InvokeRequest{Key: calculatorKey, Method: contract.MethodAdd, Args: []int64{1}}, domain.ErrInvalidArgument},
		{"session on stateless", InvokeRequest{Key: calculatorKey, SessionID: "rbss-x", Method: contract.MethodAdd, Args: []int64{1, 2}}, domain.ErrInvalidArgument},
		{"stateful without session", InvokeRequest{Key: counterKey, Method: contract.MethodIncrement}, domain.ErrInvalidArgument},
		{"unknown session", InvokeRequest{Key: counterKey, SessionID: "rbss-01arz3ndektsv4rrffq69g5fav", Sequence: 1, Method: contract.MethodIncrement}, domain.ErrSessionExpired},
		{"malformed session", InvokeRequest{Key: counterKey, SessionID: "rbss-missing", Sequence: 1, Method: contract.MethodIncrement}, domain.ErrInvalidArgument},
		{"unknown component", InvokeRequest{Key: "ejb:/remote-app//Nope!Calculator", Method: contract.MethodAdd}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Invoke(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Invoke() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestContainer_SessionAffinity(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	_, id, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if !domain.IsValidSessionID(id) {
		t.Fatalf("session id %q is not valid", id)
	}

	// A second session must not share state with the first.
	_, other, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatal(err)
	}

	var seq uint64
	call := func(id string, method string) domain.Value {
		t.Helper()
		seq++
		v, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: seq, Method: method})
		if err != nil {
			t.Fatalf("%s #%d error = %v", method, seq, err)
		}
		return v
	}

	for i := 1; i <= 20; i++ {
		call(id, contract.MethodIncrement)
		if got := call(id, contract.MethodGetCount).Int; got != int64(i) {
			t.Fatalf("count after %d increments = %d", i, got)
		}
	}
	for i := 19; i >= 0; i-- {
		call(id, contract.MethodDecrement)
		if got := call(id, contract.MethodGetCount).Int; got != int64(i) {
			t.Fatalf("count after decrement = %d, want %d", got, i)
		}
	}

	v, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: other, Sequence: 1, Method: contract.MethodGetCount})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 0 {
		t.Errorf("other session count = %d, want 0", v.Int)
	}
}

func TestContainer_SessionOrdering(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	_, id, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatal(err)
	}

	inc := func(seq uint64) error {
		_, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: seq, Method: contract.MethodIncrement})
		return err
	}

	if err := inc(2); !errors.Is(err, domain.ErrOutOfOrder) {
		t.Fatalf("skipped sequence error = %v, want ErrOutOfOrder", err)
	}
	if err := inc(1); err != nil {
		t.Fatalf("seq 1 error = %v", err)
	}
	if err := inc(1); !errors.Is(err, domain.ErrOutOfOrder) {
		t.Fatalf("duplicate sequence error = %v, want ErrOutOfOrder", err)
	}

	// A malformed call does not consume a sequence number.
	if _, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 2, Method: "reset"}); !errors.Is(err, domain.ErrUnknownMethod) {
		t.Fatalf("unknown method error = %v", err)
	}
	if err := inc(2); err != nil {
		t.Fatalf("seq 2 error = %v", err)
	}

	v, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 3, Method: contract.MethodGetCount})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int != 2 {
		t.Errorf("count = %d, want 2", v.Int)
	}
}

func TestContainer_RemoveSession(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	_, id, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.RemoveSession(ctx, id); err != nil {
		t.Fatalf("RemoveSession() error = %v", err)
	}

	_, err = c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 1, Method: contract.MethodIncrement})
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("call after remove error = %v, want ErrSessionExpired", err)
	}
	if err := c.RemoveSession(ctx, id); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("second RemoveSession() error = %v, want ErrSessionExpired", err)
	}
}

func TestContainer_CreateSessionStateless(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	if _, _, err := c.CreateSession(context.Background(), calculatorKey); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("CreateSession(stateless) error = %v, want ErrInvalidArgument", err)
	}
}

func TestContainer_IdleTimeout(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.Session = SessionConfig{IdleTimeout: time.Minute}
	c := newTestContainer(t, cfg, WithClock(clock.Now))
	ctx := context.Background()

	t.Run("expired at call time", func(t *testing.T) {
		_, id, err := c.CreateSession(ctx, counterKey)
		if err != nil {
			t.Fatal(err)
		}
		clock.Advance(2 * time.Minute)

		_, err = c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 1, Method: contract.MethodIncrement})
		if !errors.Is(err, domain.ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
	})

	t.Run("expired by sweep", func(t *testing.T) {
		_, id, err := c.CreateSession(ctx, counterKey)
		if err != nil {
			t.Fatal(err)
		}
		clock.Advance(30 * time.Second)
		c.Sessions().Sweep(ctx)
		if c.Sessions().Len() != 1 {
			t.Fatalf("Len() = %d after early sweep, want 1", c.Sessions().Len())
		}

		clock.Advance(time.Minute)
		c.Sessions().Sweep(ctx)
		if c.Sessions().Len() != 0 {
			t.Fatalf("Len() = %d after sweep, want 0", c.Sessions().Len())
		}

		_, err = c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 1, Method: contract.MethodGetCount})
		if !errors.Is(err, domain.ErrSessionExpired) {
			t.Fatalf("error = %v, want ErrSessionExpired", err)
		}
	})

	t.Run("activity keeps session alive", func(t *testing.T) {
		_, id, err := c.CreateSession(ctx, counterKey)
		if err != nil {
			t.Fatal(err)
		}
		for seq := uint64(1); seq <= 5; seq++ {
			clock.Advance(45 * time.Second)
			if _, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: seq, Method: contract.MethodIncrement}); err != nil {
				t.Fatalf("call %d error = %v", seq, err)
			}
		}
	})

	t.Run("timeout can be raised at runtime", func(t *testing.T) {
		c.SetSessionConfig(SessionConfig{IdleTimeout: time.Hour})
		defer c.SetSessionConfig(cfg.Session)

		_, id, err := c.CreateSession(ctx, counterKey)
		if err != nil {
			t.Fatal(err)
		}
		clock.Advance(10 * time.Minute)
		if _, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 1, Method: contract.MethodIncrement}); err != nil {
			t.Fatalf("error = %v", err)
		}
	})
}

func TestContainer_Passivation(t *testing.T) {
	store, err := storage.Open(storage.DefaultConfig())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer store.Close()

	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.Session = SessionConfig{IdleTimeout: 10 * time.Minute, PassivateAfter: time.Minute}
	c := newTestContainer(t, cfg, WithClock(clock.Now), WithPassivation(store))
	ctx := context.Background()

	_, id, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatal(err)
	}
	for seq := uint64(1); seq <= 3; seq++ {
		if _, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: seq, Method: contract.MethodIncrement}); err != nil {
			t.Fatal(err)
		}
	}

	clock.Advance(2 * time.Minute)
	c.Sessions().Sweep(ctx)

	if st := c.Sessions().Stats(); st.Passivated != 1 || st.Active != 0 {
		t.Fatalf("Stats() = %+v, want 1 passivated", st)
	}
	if n, _ := store.Count(); n != 1 {
		t.Fatalf("store.Count() = %d, want 1", n)
	}

	v, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: 4, Method: contract.MethodGetCount})
	if err != nil {
		t.Fatalf("call after passivation error = %v", err)
	}
	if v.Int != 3 {
		t.Errorf("count after activation = %d, want 3", v.Int)
	}
	if st := c.Sessions().Stats(); st.Active != 1 || st.Passivated != 0 {
		t.Errorf("Stats() = %+v, want 1 active", st)
	}
	if n, _ := store.Count(); n != 0 {
		t.Errorf("store.Count() = %d after activation, want 0", n)
	}
}

func TestContainer_RemovePassivated(t *testing.T) {
	store, err := storage.Open(storage.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.Session = SessionConfig{IdleTimeout: 10 * time.Minute, PassivateAfter: time.Minute}
	c := newTestContainer(t, cfg, WithClock(clock.Now), WithPassivation(store))
	ctx := context.Background()

	_, id, err := c.CreateSession(ctx, counterKey)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Minute)
	c.Sessions().Sweep(ctx)

	if err := c.RemoveSession(ctx, id); err != nil {
		t.Fatalf("RemoveSession() error = %v", err)
	}
	if n, _ := store.Count(); n != 0 {
		t.Errorf("store.Count() = %d after remove, want 0", n)
	}
}

func TestContainer_ConcurrentSessionCalls(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())
	ctx := context.Background()

	const sessions = 8
	const calls = 50

	var wg sync.WaitGroup
	errs := make(chan error, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, id, err := c.CreateSession(ctx, counterKey)
			if err != nil {
				errs <- err
				return
			}
			for seq := uint64(1); seq <= calls; seq++ {
				if _, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: seq, Method: contract.MethodIncrement}); err != nil {
					errs <- err
					return
				}
			}
			v, err := c.Invoke(ctx, InvokeRequest{Key: counterKey, SessionID: id, Sequence: calls + 1, Method: contract.MethodGetCount})
			if err != nil {
				errs <- err
				return
			}
			if v.Int != calls {
				errs <- errors.New("session count mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestContainer_DeployWhileInvoking(t *testing.T) {
	c := New(DefaultConfig(), WithMetrics(metric.NewRegistry()))
	ctx := context.Background()
	req := InvokeRequest{
		Key:    "ejb:/remote-app/blue/CalculatorBean!Calculator",
		Method: contract.MethodAdd,
		Args:   []int64{2, 3},
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			v, err := c.Invoke(ctx, req)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				continue
			case err != nil:
				errCh <- err
			case v.Int != 5:
				errCh <- errors.New("wrong sum")
			default:
				errCh <- nil
			}
			return
		}
	}()

	if err := c.Deploy(demoDeployment("blue")); err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Invoke() during deploy error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Invoke() never succeeded after deploy")
	}
}

func TestContainer_RemoveSessionMalformedID(t *testing.T) {
	c := newTestContainer(t, DefaultConfig())

	if err := c.RemoveSession(context.Background(), "not-a-session"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("RemoveSession() error = %v, want ErrInvalidArgument", err)
	}
}
