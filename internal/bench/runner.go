package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Solver
}

type Case struct {
	Tasks        int
	Consultants  int
	InstanceSeed int64
}

type Record struct {
	Algo        string
	Tasks       int
	Consultants int
	Runs        int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest float64
	MakespanMean float64
	MakespanStd  float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Log           *zap.Logger   // nil disables logging
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	instRng := randForSeed(c.InstanceSeed)
	inst := assign.RandomInstance(c.Tasks, c.Consultants, 4, 40, 0.2, instRng)

	makespans := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		solver := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := solver.Solve(runCtx, inst)
		dur := time.Since(start)
		cancel()

		if err != nil && runCtx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if err := assign.ValidateAssignment(res.Assignment, inst); err != nil {
			return Record{}, fmt.Errorf("run %d: invalid assignment: %w", i, err)
		}

		log.Debug("run finished",
			zap.String("algo", algo.Name),
			zap.Int("run", i),
			zap.Float64("makespan", res.Makespan),
			zap.Duration("duration", dur),
		)

		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
	}

	msStats := CalcFloatStats(makespans)
	tStats := CalcFloatStats(timesMs)

	return Record{
		Algo:        algo.Name,
		Tasks:       c.Tasks,
		Consultants: c.Consultants,
		Runs:        r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: msStats.Best,
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "tasks", "consultants", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Tasks),
			itoa(r.Consultants),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			ftoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
