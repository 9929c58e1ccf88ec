package scenario

import (
	"fmt"
	"strings"
	"time"
)

// Scenario names.
const (
	Stateless = "stateless"
	Stateful  = "stateful"
)

// Step is one remote operation and its reconciliation.
type Step struct {
	Operation string  `json:"operation" yaml:"operation"`
	Args      []int64 `json:"args,omitempty" yaml:"args,omitempty"`
	// Expected is unset for void operations.
	Expected *int64 `json:"expected,omitempty" yaml:"expected,omitempty"`
	Observed *int64 `json:"observed,omitempty" yaml:"observed,omitempty"`
	OK       bool   `json:"ok" yaml:"ok"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// String renders the step as one trace line.
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Operation)
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", a)
	}
	b.WriteByte(')')

	switch {
	case s.Error != "":
		fmt.Fprintf(&b, " failed: %s", s.Error)
	case s.Observed != nil:
		fmt.Fprintf(&b, " = %d", *s.Observed)
		if s.Expected != nil && !s.OK {
			fmt.Fprintf(&b, " (expected %d)", *s.Expected)
		}
	}
	return b.String()
}

// Result is the outcome of one scenario.
type Result struct {
	Name      string        `json:"name" yaml:"name"`
	Key       string        `json:"key" yaml:"key"`
	SessionID string        `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Steps     []Step        `json:"steps" yaml:"steps"`
	Passed    bool          `json:"passed" yaml:"passed"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Report is the outcome of a run.
type Report struct {
	Server  string   `json:"server" yaml:"server"`
	Results []Result `json:"results" yaml:"results"`
	Passed  bool     `json:"passed" yaml:"passed"`
}
