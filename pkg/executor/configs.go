package executor

import "time"

// Package defaults applied to zero-valued config fields.
const (
	DefaultRetryDelay    = 250 * time.Millisecond
	DefaultReadPoolSize  = 32
	DefaultWritePoolSize = 16
)

// Config defines the configuration for the resilient statement executor.
type Config struct {
	// MaxRetries is the default number of attempts for ExecuteWithRetry.
	//
	// NOTE: MaxRetries == 0 means an effectively UNLIMITED retry budget,
	// not "no retries". This inversion is load-bearing for callers that
	// must never give up on transient failures (the ID generator among
	// them); do not change it to mean "zero attempts".
	MaxRetries int `yaml:"max_retries" envconfig:"EXECUTOR_MAX_RETRIES"`

	// RetryDelay is the fixed pause between attempts after a transient failure.
	//
	// Default: 250ms
	RetryDelay time.Duration `yaml:"retry_delay" envconfig:"EXECUTOR_RETRY_DELAY"`

	// ReadPoolSize is the capacity of the read-statement admission gate.
	//
	// Default: 32
	ReadPoolSize int64 `yaml:"read_pool_size" envconfig:"EXECUTOR_READ_POOL_SIZE"`

	// WritePoolSize is the capacity of the write/general-statement admission
	// gate. Transactions hold a write slot for their whole lifetime.
	//
	// Default: 16
	WritePoolSize int64 `yaml:"write_pool_size" envconfig:"EXECUTOR_WRITE_POOL_SIZE"`
}

// withDefaults returns the config with package defaults applied to unset
// pool sizes and delay. MaxRetries is left untouched: zero is meaningful.
func (c Config) withDefaults() Config {
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.ReadPoolSize == 0 {
		c.ReadPoolSize = DefaultReadPoolSize
	}
	if c.WritePoolSize == 0 {
		c.WritePoolSize = DefaultWritePoolSize
	}
	return c
}
