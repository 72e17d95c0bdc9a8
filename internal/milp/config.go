package milp

import "fmt"

type Config struct {
	// Scale converts hours to the integer duration unit used in the
	// model. The default of one million (microhours) keeps rounding far
	// below the reconciliation tolerance while leaving ample headroom
	// in int64 load sums.
	Scale int64
}

func DefaultConfig() Config {
	return Config{Scale: 1_000_000}
}

func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("Scale must be > 0 (got %d)", c.Scale)
	}
	return nil
}
