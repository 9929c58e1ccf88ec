// Package deployment describes the module remotebean-server deploys: the
// stateless CalculatorBean and the stateful CounterBean.
package deployment

import (
	"github.com/yndnr/remotebean-go/internal/core/contract"
	"github.com/yndnr/remotebean-go/internal/core/service"
	"github.com/yndnr/remotebean-go/internal/server/container"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Builtin returns the deployment of both beans at loc.
func Builtin(loc contract.Location) *container.Deployment {
	return &container.Deployment{
		Application: loc.Application,
		Module:      loc.Module,
		Distinct:    loc.Distinct,
		Components: []*container.Component{
			{
				Name:      contract.CalculatorBean,
				Kind:      naming.Stateless,
				Contracts: []contract.Spec{contract.CalculatorSpec},
				New:       service.NewCalculatorBean,
			},
			{
				Name:      contract.CounterBean,
				Kind:      naming.Stateful,
				Contracts: []contract.Spec{contract.CounterSpec},
				New:       service.NewCounterBean,
			},
		},
	}
}
