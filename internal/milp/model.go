package milp

import "context"

// The formulator talks to the external integer-programming capability
// through this neutral model. All coefficients and bounds are integers
// in scaled duration units; see Config.Scale.

// Var is an integer decision variable with inclusive bounds. Binary
// variables use bounds 0..1.
type Var struct {
	Name   string
	Lo, Hi int64
}

// Term is one coefficient*variable entry of a linear expression.
type Term struct {
	Var   int
	Coeff int64
}

// Constraint requires Lo <= sum(Terms) <= Hi. Use math.MinInt64 or
// math.MaxInt64 for an unbounded side.
type Constraint struct {
	Name   string
	Terms  []Term
	Lo, Hi int64
}

type Model struct {
	Vars        []Var
	Constraints []Constraint
	Objective   []Term
	Minimize    bool
}

type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Solution carries the backend verdict. Values and Objective are only
// meaningful when Status is StatusOptimal.
type Solution struct {
	Status    Status
	Values    []int64
	Objective int64
}

// Backend is the pluggable branch-and-bound capability. Implementations
// must honor ctx cancellation and deadlines, reporting StatusTimeout
// when the budget runs out before optimality is proven.
type Backend interface {
	Optimize(ctx context.Context, m *Model) (Solution, error)
}
