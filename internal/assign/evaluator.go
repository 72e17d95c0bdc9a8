package assign

import "fmt"

// Summary is the full scoring of an assignment. Idle time is a reporting
// derivative only: makespan minus the consultant's load. Idle hours are
// not billed.
type Summary struct {
	// Loads holds the effective hours per consultant index.
	Loads    []float64
	Makespan float64
	// TotalCost is the sum over consultants of rate times load.
	TotalCost float64
	Idle      []float64
}

// Evaluator scores assignments against one instance. The single source
// of truth for what makespan and cost mean; both solving strategies and
// the reconciliation step use it. Not safe for concurrent use: it keeps
// a scratch load buffer, so create one evaluator per goroutine.
type Evaluator struct {
	inst  *Instance
	loads []float64
}

func NewEvaluator(inst *Instance) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{inst: inst, loads: make([]float64, len(inst.Consultants))}, nil
}

// Makespan computes the completion time of the last-finishing consultant
// under the given assignment. Reuses the internal buffer, so it is the
// fast path for enumeration inner loops.
func (e *Evaluator) Makespan(a Assignment) (float64, error) {
	if e == nil || e.inst == nil {
		return 0, fmt.Errorf("nil evaluator")
	}
	if err := ValidateAssignment(a, e.inst); err != nil {
		return 0, err
	}

	for c := range e.loads {
		e.loads[c] = 0
	}
	for t, c := range a {
		d, ok := e.inst.Duration(t, c)
		if !ok {
			return 0, fmt.Errorf("task %q has no feasible duration for consultant %q",
				e.inst.Tasks[t].ID, e.inst.Consultants[c].ID)
		}
		e.loads[c] += d
	}

	makespan := 0.0
	for _, load := range e.loads {
		if load > makespan {
			makespan = load
		}
	}
	return makespan, nil
}

func (e *Evaluator) MustMakespan(a Assignment) float64 {
	ms, err := e.Makespan(a)
	if err != nil {
		panic(err)
	}
	return ms
}

// Evaluate computes the full summary for an assignment: per-consultant
// loads, makespan, total cost and idle hours. Allocates fresh slices so
// the result is safe to keep.
func (e *Evaluator) Evaluate(a Assignment) (Summary, error) {
	makespan, err := e.Makespan(a)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Loads:    make([]float64, len(e.loads)),
		Makespan: makespan,
		Idle:     make([]float64, len(e.loads)),
	}
	copy(s.Loads, e.loads)
	for c, load := range s.Loads {
		s.Idle[c] = makespan - load
		s.TotalCost += e.inst.Consultants[c].Rate * load
	}
	return s, nil
}
