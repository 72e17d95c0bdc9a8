package assign

import "fmt"

// Assignment maps every task index to the consultant index performing
// it. Produced by a solving strategy and never mutated afterwards.
type Assignment []int

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// ValidateAssignment checks that an assignment is total over the
// instance's tasks, in range, and uses only feasible pairs.
func ValidateAssignment(a Assignment, inst *Instance) error {
	if len(a) != len(inst.Tasks) {
		return fmt.Errorf("assignment length must be %d (got %d)", len(inst.Tasks), len(a))
	}
	for t, c := range a {
		if c < 0 || c >= len(inst.Consultants) {
			return fmt.Errorf("assignment[%d]=%d out of range [0,%d)", t, c, len(inst.Consultants))
		}
		if inst.Factor(t, c) == 0 {
			return fmt.Errorf("task %q assigned to consultant %q but the pair is infeasible",
				inst.Tasks[t].ID, inst.Consultants[c].ID)
		}
	}
	return nil
}
