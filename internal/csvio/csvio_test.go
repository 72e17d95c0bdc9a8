package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const tasksCSV = `id,hours,skills
T1,10,"go,sql"
T2,8,go
`

const consultantsCSV = `id,rate,seniority,specialty,skills
C1,100,senior,backend,"go,sql"
C2,80,junior,backend,go
`

func TestLoadWithCompatibilityTable(t *testing.T) {
	dir := t.TempDir()
	tasks := writeFile(t, dir, "tasks.csv", tasksCSV)
	consultants := writeFile(t, dir, "consultants.csv", consultantsCSV)
	compat := writeFile(t, dir, "compatibility.csv", `task_id,consultant_C1,consultant_C2
T1,100,50
T2,0,100
`)

	inst, err := Load(tasks, consultants, compat)
	require.NoError(t, err)

	require.Len(t, inst.Tasks, 2)
	require.Len(t, inst.Consultants, 2)
	require.Equal(t, "T1", inst.Tasks[0].ID)
	require.Equal(t, []string{"go", "sql"}, inst.Tasks[0].Skills)
	require.Equal(t, 100.0, inst.Consultants[0].Rate)

	// Percentages become multipliers; zero stays infeasible.
	require.Equal(t, 1.0, inst.Factor(0, 0))
	require.Equal(t, 0.5, inst.Factor(0, 1))
	require.Equal(t, 0.0, inst.Factor(1, 0))
	require.Equal(t, 1.0, inst.Factor(1, 1))
}

func TestLoadDerivesFactorsFromSkills(t *testing.T) {
	dir := t.TempDir()
	tasks := writeFile(t, dir, "tasks.csv", tasksCSV)
	consultants := writeFile(t, dir, "consultants.csv", consultantsCSV)

	inst, err := Load(tasks, consultants, "")
	require.NoError(t, err)

	// C1 is a senior full match for both tasks.
	require.InDelta(t, 1/0.85, inst.Factor(0, 0), 1e-12)
	require.InDelta(t, 1/0.85, inst.Factor(1, 0), 1e-12)
	// C2 is a junior with half the skills of T1 and all of T2.
	require.InDelta(t, 1/(0.5*1.80+0.5*2.00), inst.Factor(0, 1), 1e-12)
	require.InDelta(t, 1/1.80, inst.Factor(1, 1), 1e-12)
}

func TestLoadMissingCompatibilityRowIsInfeasible(t *testing.T) {
	dir := t.TempDir()
	tasks := writeFile(t, dir, "tasks.csv", tasksCSV)
	consultants := writeFile(t, dir, "consultants.csv", consultantsCSV)
	compat := writeFile(t, dir, "compatibility.csv", `task_id,consultant_C1,consultant_C2
T1,100,50
`)

	inst, err := Load(tasks, consultants, compat)
	require.NoError(t, err)
	// T2 has no entries at all, so it is globally infeasible.
	require.Equal(t, []int{1}, inst.InfeasibleTasks())
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	dir := t.TempDir()
	tasks := writeFile(t, dir, "tasks.csv", tasksCSV)
	consultants := writeFile(t, dir, "consultants.csv", consultantsCSV)

	unknownTask := writeFile(t, dir, "bad_task.csv", `task_id,consultant_C1,consultant_C2
T9,100,50
`)
	_, err := Load(tasks, consultants, unknownTask)
	require.ErrorContains(t, err, `unknown task "T9"`)

	unknownConsultant := writeFile(t, dir, "bad_consultant.csv", `task_id,consultant_C1,consultant_C9
T1,100,50
T2,0,100
`)
	_, err = Load(tasks, consultants, unknownConsultant)
	require.ErrorContains(t, err, `unknown consultant "C9"`)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	tasks := writeFile(t, dir, "tasks.csv", `id,hours
T1,10
T1,8
`)
	consultants := writeFile(t, dir, "consultants.csv", consultantsCSV)

	_, err := Load(tasks, consultants, "")
	require.ErrorContains(t, err, `duplicate id "T1"`)
}

func TestReadTasksSortsById(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tasks.csv", `id,hours
T2,8
T1,10
`)

	tasks, err := ReadTasks(path)
	require.NoError(t, err)
	require.Equal(t, "T1", tasks[0].ID)
	require.Equal(t, "T2", tasks[1].ID)
}
