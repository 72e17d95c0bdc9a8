package assign

import (
	"errors"
	"fmt"
	"math/rand"
)

// Task is an atomic unit of work. Hours is the base duration for a
// consultant working at factor 1.0.
type Task struct {
	ID     string
	Hours  float64
	Skills []string
}

// Consultant is a worker with an hourly rate. Seniority and Specialty
// feed the compatibility derivation; the optimization core only reads
// Rate and the derived factor table.
type Consultant struct {
	ID        string
	Rate      float64
	Seniority string
	Specialty string
	Skills    []string
}

// Instance is the immutable problem input shared by every solving
// strategy. It is loaded once per run and never mutated.
type Instance struct {
	Tasks       []Task
	Consultants []Consultant
	// Factors length must be len(Tasks)*len(Consultants), task-major.
	// Each entry is an efficiency multiplier: effective duration is
	// Hours/factor. A factor of zero marks the pair as infeasible.
	Factors []float64
}

func NewInstance(tasks []Task, consultants []Consultant, factors []float64) (*Instance, error) {
	inst := &Instance{Tasks: tasks, Consultants: consultants, Factors: factors}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if len(inst.Tasks) == 0 {
		return errors.New("instance has no tasks")
	}
	if len(inst.Consultants) == 0 {
		return errors.New("instance has no consultants")
	}
	for i, t := range inst.Tasks {
		if t.Hours <= 0 {
			return fmt.Errorf("task %q: hours must be > 0 (got %v)", t.ID, t.Hours)
		}
		if t.ID == "" {
			return fmt.Errorf("task at index %d has an empty id", i)
		}
	}
	for i, c := range inst.Consultants {
		if c.Rate <= 0 {
			return fmt.Errorf("consultant %q: rate must be > 0 (got %v)", c.ID, c.Rate)
		}
		if c.ID == "" {
			return fmt.Errorf("consultant at index %d has an empty id", i)
		}
	}
	want := len(inst.Tasks) * len(inst.Consultants)
	if len(inst.Factors) != want {
		return fmt.Errorf("factors length must be tasks*consultants=%d (got %d)", want, len(inst.Factors))
	}
	for i, f := range inst.Factors {
		if f < 0 {
			return fmt.Errorf("factors[%d] must be >= 0 (got %v)", i, f)
		}
	}
	return nil
}

// Factor returns the compatibility factor for a (task, consultant) pair.
func (inst *Instance) Factor(task, consultant int) float64 {
	return inst.Factors[task*len(inst.Consultants)+consultant]
}

// Duration returns the effective duration of a task when performed by a
// consultant, in hours. ok is false when the pairing is infeasible.
func (inst *Instance) Duration(task, consultant int) (float64, bool) {
	f := inst.Factor(task, consultant)
	if f == 0 {
		return 0, false
	}
	return inst.Tasks[task].Hours / f, true
}

// FeasibleConsultants lists the consultants able to perform a task, in
// ascending index order. That order is the deterministic enumeration
// order used by the exact solver.
func (inst *Instance) FeasibleConsultants(task int) []int {
	var out []int
	for c := range inst.Consultants {
		if inst.Factor(task, c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// InfeasibleTasks lists the indices of tasks that no consultant can
// perform. A non-empty result means the instance admits no assignment.
func (inst *Instance) InfeasibleTasks() []int {
	var out []int
	for t := range inst.Tasks {
		feasible := false
		for c := range inst.Consultants {
			if inst.Factor(t, c) > 0 {
				feasible = true
				break
			}
		}
		if !feasible {
			out = append(out, t)
		}
	}
	return out
}

// TaskIDs maps task indices to their identifiers.
func (inst *Instance) TaskIDs(indices []int) []string {
	ids := make([]string, len(indices))
	for i, t := range indices {
		ids[i] = inst.Tasks[t].ID
	}
	return ids
}

// RandomInstance generates a random instance for benchmarks. Factors are
// drawn from [0.5, 1.5]; each pair is independently infeasible with
// probability infeasProb, except that every task keeps at least one
// feasible consultant.
func RandomInstance(tasks, consultants int, minHours, maxHours float64, infeasProb float64, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("rng must not be nil")
	}
	if minHours <= 0 || maxHours < minHours {
		panic("invalid hour bounds")
	}
	if infeasProb < 0 || infeasProb >= 1 {
		panic("infeasProb must lie in [0,1)")
	}

	ts := make([]Task, tasks)
	for t := range ts {
		ts[t] = Task{
			ID:    fmt.Sprintf("T%d", t+1),
			Hours: minHours + rng.Float64()*(maxHours-minHours),
		}
	}
	cs := make([]Consultant, consultants)
	for c := range cs {
		cs[c] = Consultant{
			ID:   fmt.Sprintf("C%d", c+1),
			Rate: 50 + rng.Float64()*150,
		}
	}

	factors := make([]float64, tasks*consultants)
	for t := 0; t < tasks; t++ {
		anyFeasible := false
		for c := 0; c < consultants; c++ {
			if rng.Float64() < infeasProb {
				continue
			}
			factors[t*consultants+c] = 0.5 + rng.Float64()
			anyFeasible = true
		}
		if !anyFeasible {
			c := rng.Intn(consultants)
			factors[t*consultants+c] = 0.5 + rng.Float64()
		}
	}

	inst, err := NewInstance(ts, cs, factors)
	if err != nil {
		panic(err)
	}
	return inst
}
