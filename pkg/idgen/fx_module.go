package idgen

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/dbcore/pkg/executor"
	"github.com/Aleph-Alpha/dbcore/pkg/logger"
	"github.com/Aleph-Alpha/dbcore/pkg/metrics"
)

// FXModule provides the durable ID generator, exposed as the Generator
// interface.
var FXModule = fx.Module("idgen",
	fx.Provide(
		NewGeneratorWithDI,
		ProvideGenerator,
	),
)

// ProvideGenerator exposes the concrete generator as the Generator interface.
func ProvideGenerator(g *BlockGenerator) Generator {
	return g
}

// GeneratorParams groups the dependencies needed to create a BlockGenerator
// via dependency injection.
type GeneratorParams struct {
	fx.In

	Config   Config
	Executor *executor.Executor
	Logger   *logger.Logger
	Metrics  *metrics.Metrics `optional:"true"`
}

// NewGeneratorWithDI creates a BlockGenerator from the injected dependencies.
func NewGeneratorWithDI(params GeneratorParams) (*BlockGenerator, error) {
	var opts []Option
	if params.Metrics != nil {
		opts = append(opts, WithRegisterer(params.Metrics.Registerer))
	}
	return NewGenerator(params.Config, params.Executor, params.Logger, opts...)
}
