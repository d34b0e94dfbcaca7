package idgen

// DefaultBlockSize is the granularity of counter reservations. One store
// round trip advances the durable counter by at least this much; larger
// requests round up to the next multiple.
const DefaultBlockSize = 65536

// DefaultCounterName is the id_counters row used when none is configured.
const DefaultCounterName = "default"

// Config defines the configuration for the block-reservation ID generator.
type Config struct {
	// BlockSize is the reservation granularity. Every store round trip
	// reserves the smallest multiple of BlockSize covering the request.
	//
	// Default: 65536
	BlockSize uint64 `yaml:"block_size" envconfig:"IDGEN_BLOCK_SIZE"`

	// CounterName selects the id_counters row backing this generator.
	//
	// Default: "default"
	CounterName string `yaml:"counter_name" envconfig:"IDGEN_COUNTER_NAME"`

	// MaxRetries is passed through to the executor for the reservation
	// statement. 0 means an effectively unlimited retry budget (see
	// executor.Config.MaxRetries).
	MaxRetries int `yaml:"max_retries" envconfig:"IDGEN_MAX_RETRIES"`
}

// withDefaults returns the config with package defaults applied.
func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.CounterName == "" {
		c.CounterName = DefaultCounterName
	}
	return c
}
