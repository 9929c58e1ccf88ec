package service

import (
	"context"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// CalculatorBean is the stateless Calculator implementation.
type CalculatorBean struct{}

// NewCalculatorBean creates a Calculator bean. It satisfies Factory.
func NewCalculatorBean() Bean {
	return &CalculatorBean{}
}

// Add returns a + b.
func (b *CalculatorBean) Add(_ context.Context, x, y int64) (int64, error) {
	return x + y, nil
}

// Subtract returns a - b.
func (b *CalculatorBean) Subtract(_ context.Context, x, y int64) (int64, error) {
	return x - y, nil
}

// Invoke implements Bean.
func (b *CalculatorBean) Invoke(ctx context.Context, method string, args []int64) (domain.Value, error) {
	if len(args) != 2 {
		return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("%s takes 2 arguments, got %d", method, len(args))
	}

	var (
		v   int64
		err error
	)
	switch method {
	case contract.MethodAdd:
		v, err = b.Add(ctx, args[0], args[1])
	case contract.MethodSubtract:
		v, err = b.Subtract(ctx, args[0], args[1])
	default:
		return domain.Value{}, unknownMethod(contract.CalculatorName, method)
	}
	if err != nil {
		return domain.Value{}, err
	}
	return domain.IntValue(v), nil
}

var _ contract.Calculator = (*CalculatorBean)(nil)
