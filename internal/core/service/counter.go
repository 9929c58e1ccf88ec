package service

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// CounterBean is the stateful Counter implementation. One instance exists
// per session; the container never calls it concurrently.
type CounterBean struct {
	count int64
}

// NewCounterBean creates a Counter bean. It satisfies Factory.
func NewCounterBean() Bean {
	return &CounterBean{}
}

// Increment adds one to the count.
func (b *CounterBean) Increment(context.Context) error {
	b.count++
	return nil
}

// Decrement subtracts one from the count.
func (b *CounterBean) Decrement(context.Context) error {
	b.count--
	return nil
}

// GetCount returns the current count.
func (b *CounterBean) GetCount(context.Context) (int64, error) {
	return b.count, nil
}

// Invoke implements Bean.
func (b *CounterBean) Invoke(ctx context.Context, method string, args []int64) (domain.Value, error) {
	if len(args) != 0 {
		return domain.Value{}, domain.ErrInvalidArgument.WithDetailsf("%s takes no arguments, got %d", method, len(args))
	}

	switch method {
	case contract.MethodIncrement:
		return domain.VoidValue(), b.Increment(ctx)
	case contract.MethodDecrement:
		return domain.VoidValue(), b.Decrement(ctx)
	case contract.MethodGetCount:
		v, err := b.GetCount(ctx)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.IntValue(v), nil
	default:
		return domain.Value{}, unknownMethod(contract.CounterName, method)
	}
}

// Passivate encodes the count as a protobuf Int64Value.
func (b *CounterBean) Passivate() ([]byte, error) {
	return proto.Marshal(wrapperspb.Int64(b.count))
}

// Activate restores the count written by Passivate.
func (b *CounterBean) Activate(state []byte) error {
	var v wrapperspb.Int64Value
	if err := proto.Unmarshal(state, &v); err != nil {
		return fmt.Errorf("decode counter state: %w", err)
	}
	b.count = v.GetValue()
	return nil
}

var (
	_ contract.Counter = (*CounterBean)(nil)
	_ StatefulBean     = (*CounterBean)(nil)
)
