// The schedule command loads a problem instance from CSV files, solves
// it with the selected strategy and prints the per-consultant report.
// With -validate it additionally cross-checks the MILP result against
// the exact enumerator and fails hard on any disagreement.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"consultSched/internal/assign"
	"consultSched/internal/bruteforce"
	"consultSched/internal/csvio"
	"consultSched/internal/greedy"
	"consultSched/internal/milp"
	"consultSched/internal/milp/cpsat"
	"consultSched/internal/opt"
	"consultSched/internal/reconcile"
	"consultSched/internal/report"
)

func main() {
	var (
		tasksPath       = flag.String("tasks", "data/tasks.csv", "path to the tasks CSV")
		consultantsPath = flag.String("consultants", "data/consultants.csv", "path to the consultants CSV")
		compatPath      = flag.String("compat", "", "path to the compatibility CSV; empty derives factors from skill sets")
		strategy        = flag.String("strategy", "milp", "solving strategy: milp | bruteforce | greedy")
		validate        = flag.Bool("validate", false, "cross-check the MILP result against the exact enumerator")
		timeout         = flag.Duration("timeout", 0, "overall solve timeout; 0 = no limit")
		tolerance       = flag.Float64("tolerance", 1e-6, "makespan tolerance for -validate")

		bfMaxCandidates = flag.Uint64("bf_max_candidates", 50_000_000, "candidate budget for the exact enumerator")
		bfWorkers       = flag.Int("bf_workers", 1, "parallel workers for the exact enumerator")

		milpScale  = flag.Int64("milp_scale", 1_000_000, "integer duration units per hour in the MILP model")
		satWorkers = flag.Int("sat_workers", 0, "CP-SAT worker threads; 0 = solver default")

		debug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := newLogger(*debug)
	defer log.Sync()

	inst, err := csvio.Load(*tasksPath, *consultantsPath, *compatPath)
	if err != nil {
		log.Error("loading instance", zap.Error(err))
		os.Exit(2)
	}
	log.Info("instance loaded",
		zap.Int("tasks", len(inst.Tasks)),
		zap.Int("consultants", len(inst.Consultants)),
	)

	bfSolver, err := bruteforce.New(bruteforce.Config{
		MaxCandidates: *bfMaxCandidates,
		Workers:       *bfWorkers,
	})
	if err != nil {
		log.Error("enumerator config", zap.Error(err))
		os.Exit(2)
	}
	milpSolver, err := milp.New(
		milp.Config{Scale: *milpScale},
		cpsat.Backend{NumWorkers: int32(*satWorkers)},
	)
	if err != nil {
		log.Error("milp config", zap.Error(err))
		os.Exit(2)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if *validate {
		rep, err := reconcile.Run(ctx, inst, bfSolver, milpSolver, reconcile.Config{Tolerance: *tolerance})
		if err != nil {
			exitOnSolveError(log, err)
		}
		log.Info("strategies agree",
			zap.Float64("exact_makespan", rep.Exact.Makespan),
			zap.Float64("milp_makespan", rep.MILP.Makespan),
		)
		render(log, inst, rep.MILP.Assignment)
		return
	}

	var solver opt.Solver
	switch *strategy {
	case "milp":
		solver = milpSolver
	case "bruteforce":
		solver = bfSolver
	case "greedy":
		solver = greedy.New()
	default:
		log.Error("unknown strategy", zap.String("strategy", *strategy))
		os.Exit(2)
	}

	if *strategy == "bruteforce" {
		stopProgress := watchProgress(log, bfSolver)
		defer stopProgress()
	}

	res, err := solver.Solve(ctx, inst)
	if err != nil {
		exitOnSolveError(log, err)
	}
	log.Info("solved",
		zap.String("strategy", *strategy),
		zap.Float64("makespan", res.Makespan),
		zap.Duration("duration", res.Duration),
	)
	render(log, inst, res.Assignment)
}

func render(log *zap.Logger, inst *assign.Instance, a assign.Assignment) {
	eval, err := assign.NewEvaluator(inst)
	if err != nil {
		log.Error("evaluator", zap.Error(err))
		os.Exit(1)
	}
	summary, err := eval.Evaluate(a)
	if err != nil {
		log.Error("evaluating assignment", zap.Error(err))
		os.Exit(1)
	}
	if err := report.Render(os.Stdout, inst, a, summary); err != nil {
		log.Error("rendering report", zap.Error(err))
		os.Exit(1)
	}
}

// exitOnSolveError reports the error taxonomy distinctly: infeasibility
// names the offending tasks, a solver timeout is never confused with
// infeasibility, and a reconciliation mismatch is a defect signal.
func exitOnSolveError(log *zap.Logger, err error) {
	var infeasible *opt.InfeasibleError
	var mismatch *opt.MismatchError
	switch {
	case errors.As(err, &infeasible):
		log.Error("instance is infeasible", zap.Strings("tasks", infeasible.Tasks))
	case errors.As(err, &mismatch):
		log.Error("validation mismatch between strategies",
			zap.Float64("exact_makespan", mismatch.Exact),
			zap.Float64("milp_makespan", mismatch.MILP),
		)
	case errors.Is(err, opt.ErrSolverTimeout):
		log.Error("solver timed out before proving an optimum; the instance may still be solvable", zap.Error(err))
	case errors.Is(err, opt.ErrTooLarge):
		log.Error("instance too large for exhaustive enumeration", zap.Error(err))
	default:
		log.Error("solve failed", zap.Error(err))
	}
	os.Exit(1)
}

// watchProgress logs the enumerator's fraction complete until the
// returned stop function is called.
func watchProgress(log *zap.Logger, s *bruteforce.Solver) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				log.Info("enumeration progress", zap.String("complete", fmt.Sprintf("%.1f%%", s.Progress()*100)))
			}
		}
	}()
	return func() { close(done) }
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	return log
}
