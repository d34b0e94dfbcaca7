// Package postgres provides the PostgreSQL connection layer underneath the
// statement executor.
//
// It wraps GORM with connection health monitoring and automatic reconnection,
// owns the schema migration entry point (including the id_counters table used
// for block reservation of identifiers), and translates driver errors into
// standardized sentinels.
//
// Pooling of physical connections is delegated to database/sql; concurrency
// throttling of logical operations lives in the executor package, not here.
//
// Thread safety: the active *gorm.DB is held in an atomic pointer so the
// reconnection loop can swap it without blocking in-flight operations.
package postgres
