package executor

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/dbcore/pkg/logger"
	"github.com/Aleph-Alpha/dbcore/pkg/metrics"
	"github.com/Aleph-Alpha/dbcore/pkg/postgres"
)

// FXModule provides the Executor wired to the module's postgres client,
// logger, and metrics registry.
var FXModule = fx.Module("executor",
	fx.Provide(
		NewExecutorWithDI,
	),
)

// ExecutorParams groups the dependencies needed to create an Executor via
// dependency injection.
type ExecutorParams struct {
	fx.In

	Config   Config
	Postgres *postgres.Postgres
	Logger   *logger.Logger
	Metrics  *metrics.Metrics `optional:"true"`
}

// NewExecutorWithDI creates an Executor from the injected dependencies.
// The metrics registry is optional; without it the executor's collectors
// stay unregistered.
func NewExecutorWithDI(params ExecutorParams) *Executor {
	var opts []Option
	if params.Metrics != nil {
		opts = append(opts, WithRegisterer(params.Metrics.Registerer))
	}
	return NewExecutor(params.Config, params.Postgres, params.Logger, opts...)
}
