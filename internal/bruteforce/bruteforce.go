package bruteforce

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"consultSched/internal/assign"
	"consultSched/internal/opt"
)

// batchSize is how many candidates a worker scores between context
// checks and progress updates.
const batchSize = 1024

// Solver enumerates every feasible total assignment and returns the one
// with provably minimal makespan. The search space is the cartesian
// product of the per-task feasible consultant lists, walked iteratively
// in mixed-radix order; ties are broken by the first candidate
// encountered in that order, so results are reproducible across runs
// and across worker counts.
type Solver struct {
	Cfg Config

	total atomic.Uint64
	done  atomic.Uint64
}

func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{Cfg: cfg}, nil
}

// Candidates returns the size of the search space for an instance
// without enumerating it, so callers can decide whether an exhaustive
// run is affordable. Returns opt.InfeasibleError when some task has no
// feasible consultant, and opt.ErrTooLarge when the product overflows.
func (s *Solver) Candidates(inst *assign.Instance) (uint64, error) {
	if err := inst.Validate(); err != nil {
		return 0, err
	}
	cand, err := feasibleLists(inst)
	if err != nil {
		return 0, err
	}
	return candidateCount(cand)
}

// Progress reports the fraction of the current (or last) search that
// has been scored, in [0,1]. Safe to call concurrently with Solve.
func (s *Solver) Progress() float64 {
	total := s.total.Load()
	if total == 0 {
		return 0
	}
	return float64(s.done.Load()) / float64(total)
}

func (s *Solver) Solve(ctx context.Context, inst *assign.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}

	cand, err := feasibleLists(inst)
	if err != nil {
		return opt.Result{}, err
	}
	total, err := candidateCount(cand)
	if err != nil {
		return opt.Result{}, err
	}
	if total > s.Cfg.MaxCandidates {
		return opt.Result{}, fmt.Errorf("%d candidates with budget %d: %w",
			total, s.Cfg.MaxCandidates, opt.ErrTooLarge)
	}

	s.total.Store(total)
	s.done.Store(0)

	workers := s.Cfg.Workers
	if uint64(workers) > total {
		workers = int(total)
	}

	// Each worker walks a contiguous slice of the candidate index
	// space and reports the best candidate it saw together with the
	// index where it first occurred.
	partials := make([]partial, workers)
	g, gctx := errgroup.WithContext(ctx)
	chunk := total / uint64(workers)
	for w := 0; w < workers; w++ {
		w := w
		lo := uint64(w) * chunk
		hi := lo + chunk
		if w == workers-1 {
			hi = total
		}
		g.Go(func() error {
			return s.scan(gctx, inst, cand, lo, hi, &partials[w])
		})
	}
	waitErr := g.Wait()

	best := mergePartials(partials)
	res := opt.Result{
		Assignment:  best.assignment,
		Makespan:    best.makespan,
		Evaluations: int(s.done.Load()),
		Duration:    time.Since(start),
		Meta: map[string]any{
			"candidates": total,
			"workers":    workers,
		},
	}
	if waitErr != nil {
		res.Meta["stopped"] = "context"
		return res, waitErr
	}
	return res, nil
}

type partial struct {
	assignment assign.Assignment
	makespan   float64
	foundAt    uint64
	seen       bool
}

// scan scores candidates [lo, hi). Every candidate is feasible by
// construction: the odometer digits index into per-task feasible lists,
// so infeasible pairs never enter an assignment.
func (s *Solver) scan(ctx context.Context, inst *assign.Instance, cand [][]int, lo, hi uint64, out *partial) error {
	eval, err := assign.NewEvaluator(inst)
	if err != nil {
		return err
	}

	n := len(cand)
	digits := decodeIndex(lo, cand)
	a := make(assign.Assignment, n)
	for t := range a {
		a[t] = cand[t][digits[t]]
	}

	best := partial{makespan: math.Inf(1)}
	sinceCheck := 0
	for i := lo; i < hi; i++ {
		ms := eval.MustMakespan(a)
		if ms < best.makespan {
			best.makespan = ms
			best.foundAt = i
			best.assignment = a.Clone()
			best.seen = true
		}

		sinceCheck++
		if sinceCheck == batchSize {
			s.done.Add(batchSize)
			sinceCheck = 0
			if err := ctx.Err(); err != nil {
				*out = best
				return err
			}
		}

		// Advance the odometer: rightmost task is the fastest digit.
		for t := n - 1; t >= 0; t-- {
			digits[t]++
			if digits[t] < len(cand[t]) {
				a[t] = cand[t][digits[t]]
				break
			}
			digits[t] = 0
			a[t] = cand[t][0]
		}
	}
	s.done.Add(uint64(sinceCheck))

	*out = best
	return nil
}

// mergePartials picks the overall winner: lowest makespan, and on exact
// ties the candidate with the lowest global index, which is the first
// one a serial walk would have encountered.
func mergePartials(partials []partial) partial {
	best := partial{makespan: math.Inf(1)}
	for _, p := range partials {
		if !p.seen {
			continue
		}
		if p.makespan < best.makespan || (p.makespan == best.makespan && p.foundAt < best.foundAt) {
			best = p
		}
	}
	return best
}

// feasibleLists builds the per-task candidate lists in ascending
// consultant order. Tasks with no feasible consultant make the whole
// instance infeasible and are reported before any enumeration starts.
func feasibleLists(inst *assign.Instance) ([][]int, error) {
	if bad := inst.InfeasibleTasks(); len(bad) > 0 {
		return nil, &opt.InfeasibleError{Tasks: inst.TaskIDs(bad)}
	}
	cand := make([][]int, len(inst.Tasks))
	for t := range cand {
		cand[t] = inst.FeasibleConsultants(t)
	}
	return cand, nil
}

func candidateCount(cand [][]int) (uint64, error) {
	total := uint64(1)
	for _, list := range cand {
		k := uint64(len(list))
		if total > math.MaxUint64/k {
			return 0, fmt.Errorf("candidate count overflows uint64: %w", opt.ErrTooLarge)
		}
		total *= k
	}
	return total, nil
}

// decodeIndex converts a flat candidate index into mixed-radix digits,
// one per task, with the last task as the least significant digit.
func decodeIndex(idx uint64, cand [][]int) []int {
	digits := make([]int, len(cand))
	for t := len(cand) - 1; t >= 0; t-- {
		k := uint64(len(cand[t]))
		digits[t] = int(idx % k)
		idx /= k
	}
	return digits
}
