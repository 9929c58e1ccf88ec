package naming

import (
	"fmt"
	"strings"
)

const (
	// Scheme is the protocol marker every key starts with.
	Scheme = "ejb:"
	// StatefulMarker is appended to keys of stateful lookups.
	StatefulMarker = "?stateful"
)

// Key is a rendered lookup key.
type Key string

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// ParseKey parses a lookup key back into a Descriptor.
//
// Empty application and distinct segments are accepted. The result is
// validated, so a key with an empty module, component or contract fails.
func ParseKey(s string) (Descriptor, error) {
	var d Descriptor

	rest, ok := strings.CutPrefix(s, Scheme)
	if !ok {
		return d, fmt.Errorf("%w: missing %q prefix in %q", ErrMalformedKey, Scheme, s)
	}

	if before, ok := strings.CutSuffix(rest, StatefulMarker); ok {
		d.Kind = Stateful
		rest = before
	}
	if strings.Contains(rest, "?") {
		return d, fmt.Errorf("%w: unknown query in %q", ErrMalformedKey, s)
	}

	path, contract, ok := strings.Cut(rest, "!")
	if !ok {
		return d, fmt.Errorf("%w: missing contract in %q", ErrMalformedKey, s)
	}

	segs := strings.Split(path, "/")
	if len(segs) != 4 {
		return d, fmt.Errorf("%w: want 4 path segments, got %d in %q", ErrMalformedKey, len(segs), s)
	}

	d.Application = segs[0]
	d.Module = segs[1]
	d.Distinct = segs[2]
	d.Component = segs[3]
	d.Contract = contract

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
