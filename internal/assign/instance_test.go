package assign

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func twoByTwo(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(
		[]Task{{ID: "T1", Hours: 10}, {ID: "T2", Hours: 10}},
		[]Consultant{{ID: "C1", Rate: 100}, {ID: "C2", Rate: 80}},
		[]float64{1, 1, 1, 1},
	)
	require.NoError(t, err)
	return inst
}

func TestValidate(t *testing.T) {
	tasks := []Task{{ID: "T1", Hours: 10}}
	consultants := []Consultant{{ID: "C1", Rate: 100}}

	tests := []struct {
		name    string
		inst    *Instance
		wantErr string
	}{
		{
			name:    "no tasks",
			inst:    &Instance{Consultants: consultants},
			wantErr: "no tasks",
		},
		{
			name:    "no consultants",
			inst:    &Instance{Tasks: tasks},
			wantErr: "no consultants",
		},
		{
			name: "non-positive hours",
			inst: &Instance{
				Tasks:       []Task{{ID: "T1", Hours: 0}},
				Consultants: consultants,
				Factors:     []float64{1},
			},
			wantErr: "hours must be > 0",
		},
		{
			name: "non-positive rate",
			inst: &Instance{
				Tasks:       tasks,
				Consultants: []Consultant{{ID: "C1", Rate: -5}},
				Factors:     []float64{1},
			},
			wantErr: "rate must be > 0",
		},
		{
			name: "wrong factors length",
			inst: &Instance{
				Tasks:       tasks,
				Consultants: consultants,
				Factors:     []float64{1, 1},
			},
			wantErr: "factors length",
		},
		{
			name: "negative factor",
			inst: &Instance{
				Tasks:       tasks,
				Consultants: consultants,
				Factors:     []float64{-0.5},
			},
			wantErr: "must be >= 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.inst.Validate()
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestDuration(t *testing.T) {
	inst, err := NewInstance(
		[]Task{{ID: "T1", Hours: 10}},
		[]Consultant{{ID: "C1", Rate: 100}, {ID: "C2", Rate: 80}, {ID: "C3", Rate: 90}},
		[]float64{0, 0.5, 0},
	)
	require.NoError(t, err)

	_, ok := inst.Duration(0, 0)
	require.False(t, ok, "zero factor must be infeasible")

	d, ok := inst.Duration(0, 1)
	require.True(t, ok)
	require.InDelta(t, 20.0, d, 1e-12, "effective duration is base/factor")

	require.Equal(t, []int{1}, inst.FeasibleConsultants(0))
	require.Empty(t, inst.InfeasibleTasks())
}

func TestInfeasibleTasks(t *testing.T) {
	inst, err := NewInstance(
		[]Task{{ID: "T1", Hours: 10}, {ID: "T2", Hours: 5}},
		[]Consultant{{ID: "C1", Rate: 100}},
		[]float64{0, 1},
	)
	require.NoError(t, err)

	require.Equal(t, []int{0}, inst.InfeasibleTasks())
	require.Equal(t, []string{"T1"}, inst.TaskIDs(inst.InfeasibleTasks()))
}

func TestValidateAssignment(t *testing.T) {
	inst, err := NewInstance(
		[]Task{{ID: "T1", Hours: 10}, {ID: "T2", Hours: 5}},
		[]Consultant{{ID: "C1", Rate: 100}, {ID: "C2", Rate: 80}},
		[]float64{1, 0, 1, 1},
	)
	require.NoError(t, err)

	require.NoError(t, ValidateAssignment(Assignment{0, 1}, inst))
	require.ErrorContains(t, ValidateAssignment(Assignment{0}, inst), "length")
	require.ErrorContains(t, ValidateAssignment(Assignment{0, 2}, inst), "out of range")
	require.ErrorContains(t, ValidateAssignment(Assignment{1, 0}, inst), "infeasible")
}

func TestRandomInstance(t *testing.T) {
	inst := RandomInstance(12, 4, 4, 40, 0.5, rand.New(rand.NewSource(42)))
	require.NoError(t, inst.Validate())
	require.Empty(t, inst.InfeasibleTasks(), "every task must keep a feasible consultant")

	again := RandomInstance(12, 4, 4, 40, 0.5, rand.New(rand.NewSource(42)))
	require.Equal(t, inst, again, "generation must be deterministic per seed")
}
