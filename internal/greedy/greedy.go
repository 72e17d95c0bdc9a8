// Package greedy implements a deterministic list-scheduling heuristic:
// tasks are taken longest first and each goes to the feasible
// consultant whose completion time grows the least. Fast and feasible,
// but not exact; it serves as a benchmark baseline and is excluded from
// reconciliation.
package greedy

import (
	"context"
	"sort"
	"time"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

type Solver struct{}

func New() *Solver {
	return &Solver{}
}

func (s *Solver) Solve(ctx context.Context, inst *assign.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if bad := inst.InfeasibleTasks(); len(bad) > 0 {
		return opt.Result{}, &opt.InfeasibleError{Tasks: inst.TaskIDs(bad)}
	}
	if err := ctx.Err(); err != nil {
		return opt.Result{}, err
	}

	// Longest task first; ties by original index for determinism.
	order := make([]int, len(inst.Tasks))
	for t := range order {
		order[t] = t
	}
	sort.SliceStable(order, func(i, j int) bool {
		return inst.Tasks[order[i]].Hours > inst.Tasks[order[j]].Hours
	})

	loads := make([]float64, len(inst.Consultants))
	a := make(assign.Assignment, len(inst.Tasks))
	for _, t := range order {
		bestC := -1
		bestFinish := 0.0
		for _, c := range inst.FeasibleConsultants(t) {
			d, _ := inst.Duration(t, c)
			finish := loads[c] + d
			if bestC == -1 || finish < bestFinish {
				bestC = c
				bestFinish = finish
			}
		}
		a[t] = bestC
		loads[bestC] = bestFinish
	}

	eval, err := assign.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}
	makespan, err := eval.Makespan(a)
	if err != nil {
		return opt.Result{}, err
	}

	return opt.Result{
		Assignment:  a,
		Makespan:    makespan,
		Evaluations: len(inst.Tasks),
		Duration:    time.Since(start),
	}, nil
}
