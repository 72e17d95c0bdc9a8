package opt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"consultSched/internal/assign"
)

// Solver is the narrow contract every solving strategy implements.
// Implementations must honor ctx cancellation on long-running searches.
type Solver interface {
	Solve(ctx context.Context, inst *assign.Instance) (Result, error)
}

type Result struct {
	Assignment assign.Assignment
	Makespan   float64
	// Evaluations counts candidate assignments scored by the strategy;
	// zero when the search is delegated to an external solver.
	Evaluations int
	Duration    time.Duration
	Meta        map[string]any
}

// ErrSolverTimeout reports that the external solver stopped before
// proving an optimum. Distinct from infeasibility: a timeout does not
// mean no solution exists.
var ErrSolverTimeout = errors.New("solver stopped before proving an optimum")

// ErrTooLarge reports that the exact enumerator refused an instance
// whose candidate space exceeds its configured budget.
var ErrTooLarge = errors.New("instance exceeds the enumerator's candidate budget")

// InfeasibleError reports that the instance admits no valid total
// assignment. Tasks lists the identifiers of tasks with no feasible
// consultant; it is empty when infeasibility was detected without a
// per-task cause (e.g. reported by the external solver).
type InfeasibleError struct {
	Tasks []string
}

func (e *InfeasibleError) Error() string {
	if len(e.Tasks) == 0 {
		return "instance is infeasible"
	}
	return fmt.Sprintf("instance is infeasible: no feasible consultant for task(s) %s",
		strings.Join(e.Tasks, ", "))
}

// MismatchError reports that the exact enumerator and the MILP strategy
// disagree on the optimal makespan for the same instance. This is a
// modeling defect signal and must never be swallowed.
type MismatchError struct {
	Exact float64
	MILP  float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("makespan mismatch: enumerator found %.6f, MILP found %.6f", e.Exact, e.MILP)
}
