package bruteforce

import "fmt"

type Config struct {
	// MaxCandidates is the largest candidate space the enumerator will
	// accept. Instances above it are refused with opt.ErrTooLarge
	// instead of running for an unbounded time.
	MaxCandidates uint64

	// Workers partitions the candidate index space across this many
	// goroutines. Candidate evaluation is side-effect free, so the
	// partitions share nothing but the read-only instance. 1 runs the
	// search serially.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		MaxCandidates: 50_000_000,
		Workers:       1,
	}
}

func (c Config) Validate() error {
	if c.MaxCandidates == 0 {
		return fmt.Errorf("MaxCandidates must be > 0")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("Workers must be > 0 (got %d)", c.Workers)
	}
	return nil
}
