// Package reconcile cross-checks the MILP strategy against the exact
// enumerator on instances small enough to run both. A disagreement on
// the optimal makespan signals a modeling defect (missing constraint,
// wrong objective, broken feasibility filtering) and is reported as a
// hard failure, never retried or smoothed over.
package reconcile

import (
	"context"
	"fmt"
	"math"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

type Config struct {
	// Tolerance bounds the allowed makespan difference. Both strategies
	// score assignments through the shared evaluator, so the only
	// slack needed is floating-point noise.
	Tolerance float64
}

func DefaultConfig() Config {
	return Config{Tolerance: 1e-6}
}

func (c Config) Validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("Tolerance must be >= 0 (got %v)", c.Tolerance)
	}
	return nil
}

type Report struct {
	Exact opt.Result
	MILP  opt.Result
}

// Run solves the instance with both strategies and compares makespans.
// The exact result is ground truth; errors from either strategy are
// returned as-is so infeasibility, size refusals and solver timeouts
// stay distinguishable from a genuine mismatch.
func Run(ctx context.Context, inst *assign.Instance, exact, milp opt.Solver, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if err := inst.Validate(); err != nil {
		return Report{}, err
	}

	exactRes, err := exact.Solve(ctx, inst)
	if err != nil {
		return Report{}, fmt.Errorf("exact strategy: %w", err)
	}
	if err := assign.ValidateAssignment(exactRes.Assignment, inst); err != nil {
		return Report{}, fmt.Errorf("exact strategy returned an invalid assignment: %w", err)
	}

	milpRes, err := milp.Solve(ctx, inst)
	if err != nil {
		return Report{}, fmt.Errorf("MILP strategy: %w", err)
	}
	if err := assign.ValidateAssignment(milpRes.Assignment, inst); err != nil {
		return Report{}, fmt.Errorf("MILP strategy returned an invalid assignment: %w", err)
	}

	rep := Report{Exact: exactRes, MILP: milpRes}
	if math.Abs(exactRes.Makespan-milpRes.Makespan) > cfg.Tolerance {
		return rep, &opt.MismatchError{Exact: exactRes.Makespan, MILP: milpRes.Makespan}
	}
	return rep, nil
}
