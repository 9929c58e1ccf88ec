package service

import (
	"context"

	"github.com/yndnr/remotebean-go/internal/core/domain"
)

// Bean is a component instance the container dispatches calls to.
type Bean interface {
	Invoke(ctx context.Context, method string, args []int64) (domain.Value, error)
}

// StatefulBean is a Bean whose conversational state can be written out when
// the session is idle and restored when it is used again.
type StatefulBean interface {
	Bean
	Passivate() ([]byte, error)
	Activate(state []byte) error
}

// Factory creates a new bean instance.
type Factory func() Bean

func unknownMethod(contract, method string) error {
	return domain.ErrUnknownMethod.WithDetailsf("%s has no method %q", contract, method)
}
