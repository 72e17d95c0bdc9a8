package milp

import (
	"context"
	"fmt"
	"math"
	"time"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

// Solver formulates the assignment problem as an integer program and
// delegates the search to a Backend. One binary variable per feasible
// (task, consultant) pair plus a single makespan variable; pairs with
// zero compatibility are omitted entirely, so the model size is
// proportional to the feasible pairs only.
type Solver struct {
	Cfg     Config
	Backend Backend
}

func New(cfg Config, backend Backend) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("backend must not be nil")
	}
	return &Solver{Cfg: cfg, Backend: backend}, nil
}

// pairVar records which (task, consultant) pair a model variable
// decides, for decoding the solution back into an assignment.
type pairVar struct {
	task       int
	consultant int
}

func (s *Solver) Solve(ctx context.Context, inst *assign.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}

	model, pairs, err := s.buildModel(inst)
	if err != nil {
		return opt.Result{}, err
	}

	sol, err := s.Backend.Optimize(ctx, model)
	if err != nil {
		return opt.Result{}, fmt.Errorf("backend: %w", err)
	}

	switch sol.Status {
	case StatusOptimal:
		// Decode below.
	case StatusInfeasible:
		return opt.Result{}, &opt.InfeasibleError{}
	case StatusUnbounded, StatusTimeout:
		return opt.Result{}, fmt.Errorf("backend status %s: %w", sol.Status, opt.ErrSolverTimeout)
	default:
		return opt.Result{}, fmt.Errorf("backend returned unknown status %d", sol.Status)
	}

	a, err := decodeAssignment(inst, pairs, sol.Values)
	if err != nil {
		return opt.Result{}, err
	}

	// Re-score the decoded assignment with the shared evaluator over
	// the exact rational durations. The scaled objective value is kept
	// only as metadata; the reported makespan must mean the same thing
	// it means for every other strategy.
	eval, err := assign.NewEvaluator(inst)
	if err != nil {
		return opt.Result{}, err
	}
	makespan, err := eval.Makespan(a)
	if err != nil {
		return opt.Result{}, err
	}

	return opt.Result{
		Assignment: a,
		Makespan:   makespan,
		Duration:   time.Since(start),
		Meta: map[string]any{
			"variables":        len(model.Vars),
			"constraints":      len(model.Constraints),
			"scaled_objective": sol.Objective,
			"scale":            s.Cfg.Scale,
		},
	}, nil
}

// buildModel constructs the integer program:
//
//	minimize M
//	s.t. for every task t:        sum_w x(t,w) == 1
//	     for every consultant w:  sum_t d(t,w)*x(t,w) - M <= 0
//
// with x binary over feasible pairs and d the effective duration in
// scaled units. A model with zero pair variables is rejected before the
// backend is ever called.
func (s *Solver) buildModel(inst *assign.Instance) (*Model, []pairVar, error) {
	if bad := inst.InfeasibleTasks(); len(bad) > 0 {
		return nil, nil, &opt.InfeasibleError{Tasks: inst.TaskIDs(bad)}
	}

	m := &Model{Minimize: true}
	var pairs []pairVar

	// durations[i] is the scaled effective duration of pair variable i.
	var durations []int64
	// horizon bounds M: the sum over tasks of their worst feasible
	// duration is always achievable by some load, so it is a valid
	// upper bound.
	var horizon int64

	taskVars := make([][]int, len(inst.Tasks))
	consultantVars := make([][]int, len(inst.Consultants))
	for t := range inst.Tasks {
		worst := int64(0)
		for _, c := range inst.FeasibleConsultants(t) {
			d, ok := inst.Duration(t, c)
			if !ok {
				return nil, nil, fmt.Errorf("task %d consultant %d reported feasible but has no duration", t, c)
			}
			scaled := int64(math.Round(d * float64(s.Cfg.Scale)))
			if scaled <= 0 {
				scaled = 1
			}

			v := len(m.Vars)
			m.Vars = append(m.Vars, Var{
				Name: fmt.Sprintf("x[%s,%s]", inst.Tasks[t].ID, inst.Consultants[c].ID),
				Lo:   0,
				Hi:   1,
			})
			pairs = append(pairs, pairVar{task: t, consultant: c})
			durations = append(durations, scaled)
			taskVars[t] = append(taskVars[t], v)
			consultantVars[c] = append(consultantVars[c], v)
			if scaled > worst {
				worst = scaled
			}
		}
		horizon += worst
	}
	if len(pairs) == 0 {
		return nil, nil, &opt.InfeasibleError{}
	}

	makespanVar := len(m.Vars)
	m.Vars = append(m.Vars, Var{Name: "makespan", Lo: 0, Hi: horizon})

	// Assignment completeness: each task goes to exactly one feasible
	// consultant.
	for t, vars := range taskVars {
		ct := Constraint{
			Name: fmt.Sprintf("assign[%s]", inst.Tasks[t].ID),
			Lo:   1,
			Hi:   1,
		}
		for _, v := range vars {
			ct.Terms = append(ct.Terms, Term{Var: v, Coeff: 1})
		}
		m.Constraints = append(m.Constraints, ct)
	}

	// Load bound: no consultant's load exceeds the makespan.
	for c, vars := range consultantVars {
		if len(vars) == 0 {
			continue
		}
		ct := Constraint{
			Name: fmt.Sprintf("load[%s]", inst.Consultants[c].ID),
			Lo:   math.MinInt64,
			Hi:   0,
		}
		for _, v := range vars {
			ct.Terms = append(ct.Terms, Term{Var: v, Coeff: durations[v]})
		}
		ct.Terms = append(ct.Terms, Term{Var: makespanVar, Coeff: -1})
		m.Constraints = append(m.Constraints, ct)
	}

	m.Objective = []Term{{Var: makespanVar, Coeff: 1}}
	return m, pairs, nil
}

// decodeAssignment converts backend variable values into an Assignment,
// enforcing that every task was assigned exactly once. Anything else is
// a defect in the model or the backend, not a property of the instance.
func decodeAssignment(inst *assign.Instance, pairs []pairVar, values []int64) (assign.Assignment, error) {
	if len(values) < len(pairs) {
		return nil, fmt.Errorf("backend returned %d values for %d pair variables", len(values), len(pairs))
	}

	a := make(assign.Assignment, len(inst.Tasks))
	assigned := make([]bool, len(inst.Tasks))
	for i, p := range pairs {
		if values[i] == 0 {
			continue
		}
		if assigned[p.task] {
			return nil, fmt.Errorf("task %q assigned more than once in the solver solution", inst.Tasks[p.task].ID)
		}
		assigned[p.task] = true
		a[p.task] = p.consultant
	}
	for t, ok := range assigned {
		if !ok {
			return nil, fmt.Errorf("task %q unassigned in the solver solution", inst.Tasks[t].ID)
		}
	}
	if err := assign.ValidateAssignment(a, inst); err != nil {
		return nil, err
	}
	return a, nil
}
