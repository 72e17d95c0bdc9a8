// The bench command compares solving strategies on randomly generated
// instances and writes the aggregated results to CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"consultSched/internal/bench"
	"consultSched/internal/bruteforce"
	"consultSched/internal/greedy"
	"consultSched/internal/milp"
	"consultSched/internal/milp/cpsat"
	"consultSched/internal/opt"
)

func main() {
	var (
		out          = flag.String("out", "artifacts/results.csv", "output CSV path")
		pairs        = flag.String("pairs", "6x3,8x3,10x4", "cases: tasks x consultants, comma separated")
		algos        = flag.String("algos", "BF,MILP,GREEDY", "strategies to run: BF, MILP, GREEDY (comma separated)")
		runs         = flag.Int("runs", 10, "runs per strategy and case")
		baseSeed     = flag.Int64("seed", 1000, "base seed for runs")
		instanceSeed = flag.Int64("instance_seed", 777, "base seed for instance generation (fixed per case)")
		perRunTO     = flag.Duration("per_run_timeout", 0, "timeout per run; 0 = no limit")

		bfMaxCandidates = flag.Uint64("bf_max_candidates", 50_000_000, "candidate budget for the exact enumerator")
		bfWorkers       = flag.Int("bf_workers", 1, "parallel workers for the exact enumerator")

		milpScale  = flag.Int64("milp_scale", 1_000_000, "integer duration units per hour in the MILP model")
		satWorkers = flag.Int("sat_workers", 0, "CP-SAT worker threads; 0 = solver default")

		debug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := newLogger(*debug)
	defer log.Sync()

	ctx := context.Background()

	cases, err := parsePairs(*pairs, *instanceSeed)
	if err != nil {
		log.Error("parsing -pairs", zap.Error(err))
		os.Exit(2)
	}

	bfCfg := bruteforce.Config{
		MaxCandidates: *bfMaxCandidates,
		Workers:       *bfWorkers,
	}
	if err := bfCfg.Validate(); err != nil {
		log.Error("enumerator config", zap.Error(err))
		os.Exit(2)
	}
	milpCfg := milp.Config{Scale: *milpScale}
	if err := milpCfg.Validate(); err != nil {
		log.Error("milp config", zap.Error(err))
		os.Exit(2)
	}

	// Every strategy here is deterministic, but the factory keeps the
	// per-run seed in its signature so seeded strategies can join the
	// bench without touching the runner.
	available := map[string]bench.Algorithm{
		"BF": {Name: "BF", Factory: func(seed int64) opt.Solver {
			solver, _ := bruteforce.New(bfCfg)
			return solver
		}},
		"MILP": {Name: "MILP", Factory: func(seed int64) opt.Solver {
			solver, _ := milp.New(milpCfg, cpsat.Backend{NumWorkers: int32(*satWorkers)})
			return solver
		}},
		"GREEDY": {Name: "GREEDY", Factory: func(seed int64) opt.Solver {
			return greedy.New()
		}},
	}

	var selected []bench.Algorithm
	for _, a := range splitCSV(*algos) {
		al, ok := available[a]
		if !ok {
			log.Error("unknown strategy", zap.String("strategy", a), zap.Strings("available", keys(available)))
			os.Exit(2)
		}
		selected = append(selected, al)
	}

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
		Log:           log,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			log.Info("running case",
				zap.String("algo", a.Name),
				zap.Int("tasks", c.Tasks),
				zap.Int("consultants", c.Consultants),
				zap.Int("runs", runner.Runs),
			)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				log.Error("case failed", zap.Error(err))
				os.Exit(1)
			}
			records = append(records, rec)

			log.Info("case finished",
				zap.String("algo", a.Name),
				zap.Float64("makespan_best", rec.MakespanBest),
				zap.Float64("makespan_mean", rec.MakespanMean),
				zap.Float64("makespan_std", rec.MakespanStd),
				zap.Float64("time_mean_ms", rec.TimeMeanMs),
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		log.Error("writing CSV", zap.Error(err))
		os.Exit(1)
	}
	log.Info("saved", zap.String("path", *out))
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		tc := strings.Split(p, "x")
		if len(tc) != 2 {
			return nil, fmt.Errorf("pair %q is malformed, example: 8x3", p)
		}
		tasks, err := atoiStrict(tc[0])
		if err != nil {
			return nil, fmt.Errorf("pair %q: parsing task count: %w", p, err)
		}
		consultants, err := atoiStrict(tc[1])
		if err != nil {
			return nil, fmt.Errorf("pair %q: parsing consultant count: %w", p, err)
		}
		if tasks <= 0 || consultants <= 0 {
			return nil, fmt.Errorf("pair %q: task and consultant counts must be > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(tasks)*100 + int64(consultants)

		cases = append(cases, bench.Case{
			Tasks:        tasks,
			Consultants:  consultants,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
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
