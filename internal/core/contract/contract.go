// Package contract defines the remote contracts exposed by deployed
// components, both as typed Go interfaces for callers and as method tables
// the container dispatches on.
package contract

import (
	"context"

	"github.com/yndnr/remotebean-go/pkg/naming"
)

// Contract names.
const (
	CalculatorName = "Calculator"
	CounterName    = "Counter"
)

// Method names on the wire.
const (
	MethodAdd       = "add"
	MethodSubtract  = "subtract"
	MethodIncrement = "increment"
	MethodDecrement = "decrement"
	MethodGetCount  = "getCount"
)

// Calculator is a stateless arithmetic contract.
type Calculator interface {
	Add(ctx context.Context, a, b int64) (int64, error)
	Subtract(ctx context.Context, a, b int64) (int64, error)
}

// Counter is a stateful contract. Every call on one Counter value is routed
// to the same server-side instance.
type Counter interface {
	Increment(ctx context.Context) error
	Decrement(ctx context.Context) error
	GetCount(ctx context.Context) (int64, error)
}

// Method describes one contract method.
type Method struct {
	Name  string
	Arity int
	Void  bool
}

// Spec is the method table of a contract.
type Spec struct {
	Name    string
	Methods []Method
}

// Method returns the method with the given name.
func (s Spec) Method(name string) (Method, bool) {
	for _, m := range s.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// MethodNames returns the method names in declaration order.
func (s Spec) MethodNames() []string {
	names := make([]string, len(s.Methods))
	for i, m := range s.Methods {
		names[i] = m.Name
	}
	return names
}

// CalculatorSpec is the method table of Calculator.
var CalculatorSpec = Spec{
	Name: CalculatorName,
	Methods: []Method{
		{Name: MethodAdd, Arity: 2},
		{Name: MethodSubtract, Arity: 2},
	},
}

// CounterSpec is the method table of Counter.
var CounterSpec = Spec{
	Name: CounterName,
	Methods: []Method{
		{Name: MethodIncrement, Void: true},
		{Name: MethodDecrement, Void: true},
		{Name: MethodGetCount},
	},
}

// Component names of the builtin module.
const (
	CalculatorBean = "CalculatorBean"
	CounterBean    = "CounterBean"
)

// DefaultModule is the module the builtin components are deployed as when
// nothing else is configured.
const DefaultModule = "remote-app"

// Location names where the builtin module is deployed.
type Location struct {
	Application string `koanf:"application" json:"application" yaml:"application"`
	Module      string `koanf:"module" json:"module" yaml:"module"`
	Distinct    string `koanf:"distinct" json:"distinct" yaml:"distinct"`
}

// DefaultLocation returns the default deployment location.
func DefaultLocation() Location {
	return Location{Module: DefaultModule}
}

// Calculator returns the descriptor of the Calculator contract at l.
func (l Location) Calculator() naming.Descriptor {
	return naming.Descriptor{
		Application: l.Application,
		Module:      l.Module,
		Distinct:    l.Distinct,
		Component:   CalculatorBean,
		Contract:    CalculatorName,
		Kind:        naming.Stateless,
	}
}

// Counter returns the descriptor of the Counter contract at l.
func (l Location) Counter() naming.Descriptor {
	return naming.Descriptor{
		Application: l.Application,
		Module:      l.Module,
		Distinct:    l.Distinct,
		Component:   CounterBean,
		Contract:    CounterName,
		Kind:        naming.Stateful,
	}
}
