// Package stub provides typed proxies for the remote contracts.
//
// A stub turns contract.Calculator and contract.Counter method calls into
// remoting calls, so callers work with Go methods instead of method names.
package stub

import (
	"context"
	"slices"

	"github.com/yndnr/remotebean-go/internal/client/remoting"
	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Calculator is a remote contract.Calculator.
type Calculator struct {
	handle *remoting.Handle
}

// LookupCalculator resolves d and returns a Calculator stub. The
// descriptor's contract must be Calculator.
func LookupCalculator(ctx context.Context, c *remoting.Client, d naming.Descriptor) (*Calculator, error) {
	if err := expectContract(d, contract.CalculatorSpec); err != nil {
		return nil, err
	}

	h, err := c.Resolve(ctx, d.WithKind(naming.Stateless))
	if err != nil {
		return nil, err
	}
	if err := checkMethods(h.Binding(), contract.CalculatorSpec); err != nil {
		return nil, err
	}
	return &Calculator{handle: h}, nil
}

// Binding returns what the stub was resolved to.
func (c *Calculator) Binding() remoting.Binding {
	return c.handle.Binding()
}

// Add returns a+b.
func (c *Calculator) Add(ctx context.Context, a, b int64) (int64, error) {
	res, err := c.handle.Call(ctx, contract.MethodAdd, a, b)
	return res.Value, err
}

// Subtract returns a-b.
func (c *Calculator) Subtract(ctx context.Context, a, b int64) (int64, error) {
	res, err := c.handle.Call(ctx, contract.MethodSubtract, a, b)
	return res.Value, err
}

// Counter is a remote contract.Counter bound to one session.
type Counter struct {
	session *remoting.Session
}

// OpenCounter opens a session on d and returns a Counter stub. The
// descriptor's contract must be Counter.
func OpenCounter(ctx context.Context, c *remoting.Client, d naming.Descriptor) (*Counter, error) {
	if err := expectContract(d, contract.CounterSpec); err != nil {
		return nil, err
	}

	s, err := c.OpenSession(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := checkMethods(s.Binding(), contract.CounterSpec); err != nil {
		return nil, err
	}
	return &Counter{session: s}, nil
}

// Session returns the underlying session.
func (c *Counter) Session() *remoting.Session {
	return c.session
}

// Increment adds one to the remote count.
func (c *Counter) Increment(ctx context.Context) error {
	_, err := c.session.Call(ctx, contract.MethodIncrement)
	return err
}

// Decrement subtracts one from the remote count.
func (c *Counter) Decrement(ctx context.Context) error {
	_, err := c.session.Call(ctx, contract.MethodDecrement)
	return err
}

// GetCount returns the remote count.
func (c *Counter) GetCount(ctx context.Context) (int64, error) {
	res, err := c.session.Call(ctx, contract.MethodGetCount)
	return res.Value, err
}

// Remove ends the session.
func (c *Counter) Remove(ctx context.Context) error {
	return c.session.Remove(ctx)
}

func expectContract(d naming.Descriptor, spec contract.Spec) error {
	if d.Contract != spec.Name {
		return domain.ErrInvalidArgument.WithDetailsf("descriptor names contract %q, want %q", d.Contract, spec.Name)
	}
	return nil
}

// checkMethods verifies the server exposes every method the stub calls.
func checkMethods(b remoting.Binding, spec contract.Spec) error {
	for _, m := range spec.MethodNames() {
		if !slices.Contains(b.Methods, m) {
			return domain.ErrNotFound.WithDetailsf("%s does not expose %s.%s", b.Key, spec.Name, m)
		}
	}
	return nil
}

var (
	_ contract.Calculator = (*Calculator)(nil)
	_ contract.Counter    = (*Counter)(nil)
)
