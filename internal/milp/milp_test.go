package milp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

type fakeBackend struct {
	optimize func(ctx context.Context, m *Model) (Solution, error)
	called   bool
}

func (b *fakeBackend) Optimize(ctx context.Context, m *Model) (Solution, error) {
	b.called = true
	return b.optimize(ctx, m)
}

func newInstance(t *testing.T, tasks []assign.Task, consultants []assign.Consultant, factors []float64) *assign.Instance {
	t.Helper()
	inst, err := assign.NewInstance(tasks, consultants, factors)
	require.NoError(t, err)
	return inst
}

func twoByTwo(t *testing.T) *assign.Instance {
	t.Helper()
	return newInstance(t,
		[]assign.Task{{ID: "T1", Hours: 10}, {ID: "T2", Hours: 10}},
		[]assign.Consultant{{ID: "C1", Rate: 100}, {ID: "C2", Rate: 80}},
		[]float64{1, 1, 1, 1},
	)
}

func TestBuildModelShape(t *testing.T) {
	inst := newInstance(t,
		[]assign.Task{{ID: "T1", Hours: 10}, {ID: "T2", Hours: 8}},
		[]assign.Consultant{{ID: "C1", Rate: 100}, {ID: "C2", Rate: 80}},
		[]float64{
			1, 0.5,
			0, 1, // T2/C1 infeasible: no variable for this pair
		},
	)

	s, err := New(DefaultConfig(), &fakeBackend{})
	require.NoError(t, err)
	m, pairs, err := s.buildModel(inst)
	require.NoError(t, err)

	// Three feasible pairs plus the makespan variable.
	require.Len(t, pairs, 3)
	require.Len(t, m.Vars, 4)
	require.True(t, m.Minimize)
	require.Equal(t, []Term{{Var: 3, Coeff: 1}}, m.Objective)

	// Pair variables are binary; the makespan variable is bounded by
	// the sum of the worst feasible durations (20h + 8h scaled).
	for _, v := range m.Vars[:3] {
		require.Equal(t, int64(0), v.Lo)
		require.Equal(t, int64(1), v.Hi)
	}
	require.Equal(t, int64(28_000_000), m.Vars[3].Hi)

	// One completeness constraint per task, one load bound per
	// consultant with feasible work.
	require.Len(t, m.Constraints, 4)

	assignT1 := m.Constraints[0]
	require.Equal(t, int64(1), assignT1.Lo)
	require.Equal(t, int64(1), assignT1.Hi)
	require.Len(t, assignT1.Terms, 2)

	loadC1 := m.Constraints[2]
	require.Equal(t, int64(math.MinInt64), loadC1.Lo)
	require.Equal(t, int64(0), loadC1.Hi)
	// T1 on C1 takes 10h at scale 1e6; the makespan enters with -1.
	require.Equal(t, []Term{{Var: 0, Coeff: 10_000_000}, {Var: 3, Coeff: -1}}, loadC1.Terms)

	loadC2 := m.Constraints[3]
	// T1 on C2 takes 20h (factor 0.5), T2 on C2 takes 8h.
	require.Equal(t, []Term{{Var: 1, Coeff: 20_000_000}, {Var: 2, Coeff: 8_000_000}, {Var: 3, Coeff: -1}}, loadC2.Terms)
}

func TestSolveDecodesAssignment(t *testing.T) {
	inst := twoByTwo(t)

	// Var order is deterministic: x[T1,C1], x[T1,C2], x[T2,C1],
	// x[T2,C2], makespan.
	backend := &fakeBackend{optimize: func(ctx context.Context, m *Model) (Solution, error) {
		return Solution{
			Status:    StatusOptimal,
			Values:    []int64{1, 0, 0, 1, 10_000_000},
			Objective: 10_000_000,
		}, nil
	}}

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)

	require.Equal(t, assign.Assignment{0, 1}, res.Assignment)
	// The makespan is re-scored by the evaluator over exact durations,
	// not read back from the scaled objective.
	require.Equal(t, 10.0, res.Makespan)
	require.Equal(t, int64(10_000_000), res.Meta["scaled_objective"])
}

func TestSolveRejectsIncompleteSolution(t *testing.T) {
	inst := twoByTwo(t)

	backend := &fakeBackend{optimize: func(ctx context.Context, m *Model) (Solution, error) {
		return Solution{
			Status: StatusOptimal,
			Values: []int64{1, 0, 0, 0, 10_000_000},
		}, nil
	}}

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), inst)
	require.ErrorContains(t, err, "unassigned")
}

func TestSolveTimeoutIsNotInfeasible(t *testing.T) {
	inst := twoByTwo(t)

	backend := &fakeBackend{optimize: func(ctx context.Context, m *Model) (Solution, error) {
		return Solution{Status: StatusTimeout}, nil
	}}

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), inst)

	require.ErrorIs(t, err, opt.ErrSolverTimeout)
	var infeasible *opt.InfeasibleError
	require.False(t, errors.As(err, &infeasible))
}

func TestSolveBackendInfeasible(t *testing.T) {
	inst := twoByTwo(t)

	backend := &fakeBackend{optimize: func(ctx context.Context, m *Model) (Solution, error) {
		return Solution{Status: StatusInfeasible}, nil
	}}

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), inst)

	var infeasible *opt.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
}

func TestSolveInfeasibleTaskSkipsBackend(t *testing.T) {
	inst := newInstance(t,
		[]assign.Task{{ID: "T1", Hours: 10}},
		[]assign.Consultant{{ID: "C1", Rate: 100}},
		[]float64{0},
	)

	backend := &fakeBackend{optimize: func(ctx context.Context, m *Model) (Solution, error) {
		return Solution{}, nil
	}}

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), inst)

	var infeasible *opt.InfeasibleError
	require.ErrorAs(t, err, &infeasible)
	require.Equal(t, []string{"T1"}, infeasible.Tasks)
	require.False(t, backend.called, "an infeasible model must be rejected before the solver runs")
}
