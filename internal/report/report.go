// Package report renders the evaluator's summary for humans. Formatting
// only; every number comes from the shared evaluator.
package report

import (
	"fmt"
	"io"
	"strings"

	"consultSched/internal/assign"
)

// Render writes the per-consultant breakdown: assigned tasks, effective
// hours, idle hours and cost, followed by project totals.
func Render(w io.Writer, inst *assign.Instance, a assign.Assignment, s assign.Summary) error {
	contracted := 0.0
	for _, t := range inst.Tasks {
		contracted += t.Hours
	}

	if _, err := fmt.Fprintf(w, "Makespan: %.2f h\n", s.Makespan); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Contracted hours (sum of base task hours): %.2f h\n\n", contracted); err != nil {
		return err
	}

	tasksByConsultant := make([][]string, len(inst.Consultants))
	for t, c := range a {
		tasksByConsultant[c] = append(tasksByConsultant[c], inst.Tasks[t].ID)
	}

	for c, cons := range inst.Consultants {
		cost := cons.Rate * s.Loads[c]
		assigned := "-"
		if len(tasksByConsultant[c]) > 0 {
			assigned = strings.Join(tasksByConsultant[c], ", ")
		}
		_, err := fmt.Fprintf(w, "Consultant %s (%.2f/h):\n  tasks: %s\n  effective hours: %.2f h\n  idle hours: %.2f h\n  cost: %.2f\n",
			cons.ID, cons.Rate, assigned, s.Loads[c], s.Idle[c], cost)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal cost: %.2f\n", s.TotalCost)
	return err
}
