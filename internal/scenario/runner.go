package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/remotebean-go/internal/client/remoting"
	"github.com/yndnr/remotebean-go/internal/client/stub"
	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// DefaultIterations is the number of increments, and then decrements, in
// the stateful scenario.
const DefaultIterations = 20

// Config configures a Runner.
type Config struct {
	Location   contract.Location
	Iterations int

	// OnStep, if set, is called after every step.
	OnStep func(scenario string, step Step)

	Logger *slog.Logger
}

// Runner runs scenarios with one client.
type Runner struct {
	client *remoting.Client
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(c *remoting.Client, cfg Config) *Runner {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{client: c, cfg: cfg, logger: cfg.Logger}
}

// Run runs the named scenarios in order and stops at the first failure.
// The report covers every scenario that started.
func (r *Runner) Run(ctx context.Context, names ...string) (*Report, error) {
	if len(names) == 0 {
		names = []string{Stateless, Stateful}
	}

	report := &Report{Server: r.client.Server(), Passed: true}
	for _, name := range names {
		var (
			res *Result
			err error
		)
		switch name {
		case Stateless:
			res, err = r.RunStateless(ctx)
		case Stateful:
			res, err = r.RunStateful(ctx)
		default:
			return report, domain.ErrInvalidArgument.WithDetailsf("unknown scenario %q", name)
		}

		if res != nil {
			report.Results = append(report.Results, *res)
		}
		if err != nil {
			report.Passed = false
			return report, fmt.Errorf("%s scenario: %w", name, err)
		}
	}
	return report, nil
}

// RunStateless looks up the Calculator and checks add and subtract.
func (r *Runner) RunStateless(ctx context.Context) (*Result, error) {
	start := time.Now()
	d := r.cfg.Location.Calculator()
	res := &Result{Name: Stateless, Key: d.Key().String()}
	defer func() { res.Duration = time.Since(start) }()

	calc, err := stub.LookupCalculator(ctx, r.client, d)
	if err != nil {
		return res, fmt.Errorf("lookup %s: %w", d.Key(), err)
	}
	res.Key = calc.Binding().Key.String()
	r.logger.Debug("calculator resolved", "key", res.Key)

	rec := &recorder{name: Stateless, result: res, onStep: r.cfg.OnStep}

	checks := []struct {
		op   string
		call func(context.Context, int64, int64) (int64, error)
		a, b int64
		want int64
	}{
		{contract.MethodAdd, calc.Add, 204, 340, 204 + 340},
		{contract.MethodSubtract, calc.Subtract, 3434, 2332, 3434 - 2332},
	}
	for _, c := range checks {
		got, err := c.call(ctx, c.a, c.b)
		if err := rec.value(c.op, []int64{c.a, c.b}, c.want, got, err); err != nil {
			return res, err
		}
	}

	res.Passed = true
	return res, nil
}

// RunStateful opens a Counter session, increments it Iterations times and
// decrements it back, reading the count after every step. The session is
// left for the server to time out.
func (r *Runner) RunStateful(ctx context.Context) (*Result, error) {
	start := time.Now()
	d := r.cfg.Location.Counter()
	res := &Result{Name: Stateful, Key: d.Key().String()}
	defer func() { res.Duration = time.Since(start) }()

	ctr, err := stub.OpenCounter(ctx, r.client, d)
	if err != nil {
		return res, fmt.Errorf("open session on %s: %w", d.Key(), err)
	}
	res.Key = ctr.Session().Binding().Key.String()
	res.SessionID = ctr.Session().ID()
	r.logger.Debug("counter session opened", "key", res.Key, "session_id", res.SessionID)

	rec := &recorder{name: Stateful, result: res, onStep: r.cfg.OnStep}

	initial, err := ctr.GetCount(ctx)
	if err := rec.value(contract.MethodGetCount, nil, 0, initial, err); err != nil {
		return res, err
	}

	expected := initial
	for i := 0; i < r.cfg.Iterations; i++ {
		if err := rec.void(contract.MethodIncrement, ctr.Increment(ctx)); err != nil {
			return res, err
		}
		expected++
		got, err := ctr.GetCount(ctx)
		if err := rec.value(contract.MethodGetCount, nil, expected, got, err); err != nil {
			return res, err
		}
	}
	for i := 0; i < r.cfg.Iterations; i++ {
		if err := rec.void(contract.MethodDecrement, ctr.Decrement(ctx)); err != nil {
			return res, err
		}
		expected--
		got, err := ctr.GetCount(ctx)
		if err := rec.value(contract.MethodGetCount, nil, expected, got, err); err != nil {
			return res, err
		}
	}

	res.Passed = true
	return res, nil
}

type recorder struct {
	name   string
	result *Result
	onStep func(string, Step)
}

func (r *recorder) add(s Step) {
	r.result.Steps = append(r.result.Steps, s)
	if r.onStep != nil {
		r.onStep(r.name, s)
	}
}

// value records a call returning a value and reconciles it with want.
func (r *recorder) value(op string, args []int64, want, got int64, callErr error) error {
	s := Step{Operation: op, Args: args, Expected: &want}
	if callErr != nil {
		s.Error = callErr.Error()
		r.add(s)
		return fmt.Errorf("%s: %w", op, callErr)
	}

	s.Observed = &got
	s.OK = got == want
	r.add(s)
	if !s.OK {
		return &ReconciliationError{Operation: op, Args: args, Expected: want, Observed: got}
	}
	return nil
}

// void records a call with no result.
func (r *recorder) void(op string, callErr error) error {
	s := Step{Operation: op, OK: callErr == nil}
	if callErr != nil {
		s.Error = callErr.Error()
	}
	r.add(s)
	if callErr != nil {
		return fmt.Errorf("%s: %w", op, callErr)
	}
	return nil
}

// ReconciliationError reports a remote result that differs from the
// locally computed value. It matches domain.ErrReconciliation.
type ReconciliationError struct {
	Operation string
	Args      []int64
	Expected  int64
	Observed  int64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: %s%v returned %d, expected %d",
		domain.ErrReconciliation.Error(), e.Operation, e.Args, e.Observed, e.Expected)
}

// Is reports whether target is domain.ErrReconciliation.
func (e *ReconciliationError) Is(target error) bool {
	return errors.Is(domain.ErrReconciliation, target)
}
