package domain

import "strconv"

// Value is the result of a remote invocation. Void methods return a Value
// with Void set and Int zero.
type Value struct {
	Int  int64
	Void bool
}

// IntValue wraps an integer result.
func IntValue(v int64) Value {
	return Value{Int: v}
}

// VoidValue is the result of a void method.
func VoidValue() Value {
	return Value{Void: true}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.Void {
		return "void"
	}
	return strconv.FormatInt(v.Int, 10)
}
