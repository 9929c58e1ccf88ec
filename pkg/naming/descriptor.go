package naming

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the session kind of a component.
type Kind int

const (
	// Stateless components have no session affinity.
	Stateless Kind = iota
	// Stateful components bind a handle to one server-side instance.
	Stateful
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Stateless:
		return "stateless"
	case Stateful:
		return "stateful"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "stateless" or "stateful".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stateless", "":
		return Stateless, nil
	case "stateful":
		return Stateful, nil
	default:
		return Stateless, fmt.Errorf("naming: unknown session kind %q", s)
	}
}

// Validation errors.
var (
	ErrModuleRequired    = errors.New("naming: module name is required")
	ErrComponentRequired = errors.New("naming: component name is required")
	ErrContractRequired  = errors.New("naming: contract name is required")
	ErrInvalidSegment    = errors.New("naming: segment contains a reserved character")
	ErrMalformedKey      = errors.New("naming: malformed lookup key")
)

// Descriptor identifies a deployed component and the contract a caller wants
// to use. It is a value type; copy it freely.
type Descriptor struct {
	// Application is the enclosing application name. May be empty.
	Application string `json:"application" yaml:"application"`
	// Module is the deployment module name.
	Module string `json:"module" yaml:"module"`
	// Distinct disambiguates deployments of the same module. May be empty.
	Distinct string `json:"distinct" yaml:"distinct"`
	// Component is the component (bean) name.
	Component string `json:"component" yaml:"component"`
	// Contract is the contract (view) the caller wants.
	Contract string `json:"contract" yaml:"contract"`
	// Kind selects a stateless or stateful lookup.
	Kind Kind `json:"kind" yaml:"kind"`
}

// Validate checks required fields and rejects segments that would corrupt
// the key encoding.
func (d Descriptor) Validate() error {
	if d.Module == "" {
		return ErrModuleRequired
	}
	if d.Component == "" {
		return ErrComponentRequired
	}
	if d.Contract == "" {
		return ErrContractRequired
	}

	for _, seg := range []string{d.Application, d.Module, d.Distinct, d.Component} {
		if strings.ContainsAny(seg, "/!?") {
			return fmt.Errorf("%w: %q", ErrInvalidSegment, seg)
		}
	}
	if strings.ContainsAny(d.Contract, "/!?") {
		return fmt.Errorf("%w: %q", ErrInvalidSegment, d.Contract)
	}
	return nil
}

// WithKind returns a copy of d with the given session kind.
func (d Descriptor) WithKind(k Kind) Descriptor {
	d.Kind = k
	return d
}

// Key renders the lookup key for d. It does not validate d.
func (d Descriptor) Key() Key {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(d.Application)
	b.WriteByte('/')
	b.WriteString(d.Module)
	b.WriteByte('/')
	b.WriteString(d.Distinct)
	b.WriteByte('/')
	b.WriteString(d.Component)
	b.WriteByte('!')
	b.WriteString(d.Contract)
	if d.Kind == Stateful {
		b.WriteString(StatefulMarker)
	}
	return Key(b.String())
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return string(d.Key())
}
