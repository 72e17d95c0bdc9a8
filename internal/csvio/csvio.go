// Package csvio loads problem instances from the three-file CSV layout:
// tasks.csv (id,hours,skills), consultants.csv
// (id,rate,seniority,specialty,skills) and an optional compatibility.csv
// (task_id plus one consultant_<id> column per consultant, factors in
// percent). Skills within a cell are comma-separated. This is the data
// provider boundary; no optimization logic lives here.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"consultSched/internal/assign"
)

// Load reads an instance from CSV files. When compatPath is empty the
// factor table is derived from the skill sets instead.
func Load(tasksPath, consultantsPath, compatPath string) (*assign.Instance, error) {
	tasks, err := ReadTasks(tasksPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tasksPath, err)
	}
	consultants, err := ReadConsultants(consultantsPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", consultantsPath, err)
	}

	var factors []float64
	if compatPath == "" {
		factors = assign.DeriveFactors(tasks, consultants)
	} else {
		factors, err = ReadCompatibility(compatPath, tasks, consultants)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", compatPath, err)
		}
	}

	return assign.NewInstance(tasks, consultants, factors)
}

func ReadTasks(path string) ([]assign.Task, error) {
	rows, header, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idCol, err := column(header, "id")
	if err != nil {
		return nil, err
	}
	hoursCol, err := column(header, "hours")
	if err != nil {
		return nil, err
	}
	skillsCol, _ := column(header, "skills") // optional

	tasks := make([]assign.Task, 0, len(rows))
	for i, row := range rows {
		hours, err := strconv.ParseFloat(row[hoursCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing hours: %w", i+2, err)
		}
		t := assign.Task{ID: row[idCol], Hours: hours}
		if skillsCol >= 0 {
			t.Skills = splitSkills(row[skillsCol])
		}
		tasks = append(tasks, t)
	}

	// Sort by id so the instance layout is stable regardless of file
	// order; identifiers stay the source of truth.
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	if err := uniqueIDs(len(tasks), func(i int) string { return tasks[i].ID }); err != nil {
		return nil, err
	}
	return tasks, nil
}

func ReadConsultants(path string) ([]assign.Consultant, error) {
	rows, header, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idCol, err := column(header, "id")
	if err != nil {
		return nil, err
	}
	rateCol, err := column(header, "rate")
	if err != nil {
		return nil, err
	}
	seniorityCol, _ := column(header, "seniority")
	specialtyCol, _ := column(header, "specialty")
	skillsCol, _ := column(header, "skills")

	consultants := make([]assign.Consultant, 0, len(rows))
	for i, row := range rows {
		rate, err := strconv.ParseFloat(row[rateCol], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing rate: %w", i+2, err)
		}
		c := assign.Consultant{ID: row[idCol], Rate: rate}
		if seniorityCol >= 0 {
			c.Seniority = strings.TrimSpace(row[seniorityCol])
		}
		if specialtyCol >= 0 {
			c.Specialty = strings.TrimSpace(row[specialtyCol])
		}
		if skillsCol >= 0 {
			c.Skills = splitSkills(row[skillsCol])
		}
		consultants = append(consultants, c)
	}

	sort.SliceStable(consultants, func(i, j int) bool { return consultants[i].ID < consultants[j].ID })
	if err := uniqueIDs(len(consultants), func(i int) string { return consultants[i].ID }); err != nil {
		return nil, err
	}
	return consultants, nil
}

// ReadCompatibility reads the factor table. Percent values are converted
// to multipliers (85 -> 0.85). Every task_id and consultant_<id> column
// must reference a loaded task or consultant; a task with no row in the
// table is globally infeasible (all factors zero).
func ReadCompatibility(path string, tasks []assign.Task, consultants []assign.Consultant) ([]float64, error) {
	rows, header, err := readTable(path)
	if err != nil {
		return nil, err
	}
	taskCol, err := column(header, "task_id")
	if err != nil {
		return nil, err
	}

	taskIndex := make(map[string]int, len(tasks))
	for i, t := range tasks {
		taskIndex[t.ID] = i
	}
	consultantIndex := make(map[string]int, len(consultants))
	for i, c := range consultants {
		consultantIndex[c.ID] = i
	}

	// Map header columns to consultant indices up front so an unknown
	// consultant column fails before any row is processed.
	colToConsultant := make(map[int]int)
	for col, name := range header {
		if col == taskCol {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(name), "consultant_") {
			return nil, fmt.Errorf("unexpected column %q (want consultant_<id>)", name)
		}
		id := name[len("consultant_"):]
		ci, ok := consultantIndex[id]
		if !ok {
			return nil, fmt.Errorf("column %q references unknown consultant %q", name, id)
		}
		colToConsultant[col] = ci
	}

	factors := make([]float64, len(tasks)*len(consultants))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		taskID := row[taskCol]
		ti, ok := taskIndex[taskID]
		if !ok {
			return nil, fmt.Errorf("row %d: unknown task %q", i+2, taskID)
		}
		if seen[taskID] {
			return nil, fmt.Errorf("row %d: duplicate task %q", i+2, taskID)
		}
		seen[taskID] = true

		for col, ci := range colToConsultant {
			pct, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+2, header[col], err)
			}
			if pct < 0 {
				return nil, fmt.Errorf("row %d column %q: factor must be >= 0 (got %v)", i+2, header[col], pct)
			}
			factors[ti*len(consultants)+ci] = pct / 100.0
		}
	}
	return factors, nil
}

func readTable(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}
	header = make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}
	return all[1:], header, nil
}

func column(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("missing column %q", name)
}

// uniqueIDs checks a sorted sequence for duplicate identifiers.
func uniqueIDs(n int, id func(int) string) error {
	for i := 1; i < n; i++ {
		if id(i) == id(i-1) {
			return fmt.Errorf("duplicate id %q", id(i))
		}
	}
	return nil
}

func splitSkills(cell string) []string {
	var out []string
	for _, s := range strings.Split(cell, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
