package assign

import "strings"

// Seniority time multipliers: how much longer (or shorter) a consultant
// of a given level takes, at full skill match and at zero match. The
// compatibility factor is the inverse, so a senior at full match works
// faster than the base estimate.
var seniorityMultipliers = map[string]struct{ fullMatch, penalty float64 }{
	"junior":    {1.80, 2.00},
	"mid-level": {1.00, 1.20},
	"senior":    {0.85, 1.00},
}

var defaultMultipliers = struct{ fullMatch, penalty float64 }{1.00, 1.20}

// ComputeFactor derives the compatibility factor for one (task,
// consultant) pair from the required and offered skill sets. A task with
// no required skills is neutral (factor 1). Zero skill overlap makes the
// pair infeasible (factor 0). Partial overlap interpolates linearly
// between the full-match and worst-case multipliers for the consultant's
// seniority before inverting to an efficiency factor.
func ComputeFactor(taskSkills, consultantSkills []string, seniority string) float64 {
	required := normalizeSkills(taskSkills)
	if len(required) == 0 {
		return 1.0
	}
	offered := normalizeSkills(consultantSkills)

	matched := 0
	for s := range required {
		if _, ok := offered[s]; ok {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(required))
	if ratio == 0 {
		return 0
	}

	m, ok := seniorityMultipliers[strings.ToLower(strings.TrimSpace(seniority))]
	if !ok {
		m = defaultMultipliers
	}
	multiplier := ratio*m.fullMatch + (1-ratio)*m.penalty
	return 1 / multiplier
}

// DeriveFactors builds the full task-major factor table from skill sets.
// Used when no precomputed compatibility table is supplied.
func DeriveFactors(tasks []Task, consultants []Consultant) []float64 {
	factors := make([]float64, len(tasks)*len(consultants))
	for t, task := range tasks {
		for c, cons := range consultants {
			factors[t*len(consultants)+c] = ComputeFactor(task.Skills, cons.Skills, cons.Seniority)
		}
	}
	return factors
}

func normalizeSkills(skills []string) map[string]struct{} {
	out := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}
