package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule provides the Postgres component and registers its lifecycle:
// connection monitoring and reconnection on start, graceful shutdown on stop.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgres,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// RegisterPostgresLifecycle starts the monitor/retry goroutine pair on
// application start and tears the connection down on stop. A WaitGroup
// ensures both goroutines have exited before shutdown completes.
func RegisterPostgresLifecycle(lifecycle fx.Lifecycle, postgres *Postgres) {
	wg := &sync.WaitGroup{}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.MonitorConnection(ctx)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.RetryConnection(ctx)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			postgres.closeShutdownOnce.Do(func() {
				close(postgres.shutdownSignal)
			})

			wg.Wait()

			postgres.closeRetryChanOnce.Do(func() {
				close(postgres.retryChanSignal)
			})

			sqlDB, err := postgres.DB().DB()
			if err == nil {
				return sqlDB.Close()
			}
			return nil
		},
	})
}
