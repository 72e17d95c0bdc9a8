// Package cpsat adapts the neutral milp.Model to the OR-Tools CP-SAT
// solver. The model is purely integral (binary pair variables, integer
// scaled durations), which is exactly the shape CP-SAT accepts.
package cpsat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"google.golang.org/protobuf/proto"

	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"

	"consultSched/internal/milp"
)

type Backend struct {
	// NumWorkers caps the solver's internal parallelism. 0 keeps the
	// CP-SAT default.
	NumWorkers int32
}

func (b Backend) Optimize(ctx context.Context, m *milp.Model) (milp.Solution, error) {
	cp := cpmodel.NewCpModelBuilder()

	vars := make([]cpmodel.IntVar, len(m.Vars))
	for i, v := range m.Vars {
		vars[i] = cp.NewIntVar(v.Lo, v.Hi).WithName(v.Name)
	}

	for _, ct := range m.Constraints {
		expr := cpmodel.NewLinearExpr()
		for _, term := range ct.Terms {
			expr.AddTerm(vars[term.Var], term.Coeff)
		}
		cp.AddLinearConstraint(expr, ct.Lo, ct.Hi).WithName(ct.Name)
	}

	obj := cpmodel.NewLinearExpr()
	for _, term := range m.Objective {
		obj.AddTerm(vars[term.Var], term.Coeff)
	}
	if m.Minimize {
		cp.Minimize(obj)
	} else {
		cp.Maximize(obj)
	}

	modelProto, err := cp.Model()
	if err != nil {
		return milp.Solution{}, fmt.Errorf("building CP model: %w", err)
	}

	params := &sppb.SatParameters{}
	if b.NumWorkers > 0 {
		params.NumWorkers = proto.Int32(b.NumWorkers)
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline).Seconds()
		if remaining <= 0 {
			return milp.Solution{Status: milp.StatusTimeout}, nil
		}
		params.MaxTimeInSeconds = proto.Float64(remaining)
	}

	resp, err := cpmodel.SolveCpModelInterruptibleWithParameters(modelProto, params, ctx.Done())
	if err != nil {
		return milp.Solution{}, fmt.Errorf("solving CP model: %w", err)
	}

	switch resp.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		values := make([]int64, len(vars))
		for i, v := range vars {
			values[i] = cpmodel.SolutionIntegerValue(resp, v)
		}
		return milp.Solution{
			Status:    milp.StatusOptimal,
			Values:    values,
			Objective: int64(math.Round(resp.GetObjectiveValue())),
		}, nil
	case cmpb.CpSolverStatus_INFEASIBLE:
		return milp.Solution{Status: milp.StatusInfeasible}, nil
	case cmpb.CpSolverStatus_FEASIBLE, cmpb.CpSolverStatus_UNKNOWN:
		// A feasible-but-unproven or interrupted solve is a timeout,
		// never infeasibility.
		return milp.Solution{Status: milp.StatusTimeout}, nil
	case cmpb.CpSolverStatus_MODEL_INVALID:
		return milp.Solution{}, fmt.Errorf("CP-SAT rejected the model as invalid")
	default:
		return milp.Solution{}, fmt.Errorf("CP-SAT returned unexpected status %v", resp.GetStatus())
	}
}
