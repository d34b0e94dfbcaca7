package idgen

import (
	"context"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/executor"
	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// reserveBlockStatement atomically advances the persisted counter by a whole
// block and captures the new upper bound. The increment-and-return form is
// the only mutation the counter row ever sees: cross-process safety rests
// entirely on the store's row-level atomicity, never on read-then-write from
// application code.
type reserveBlockStatement struct {
	counter string
	block   uint64

	// newEnd is the counter value after the increment, the upper bound of
	// the freshly reserved block. Valid only after a successful Run.
	newEnd uint64
}

func (s *reserveBlockStatement) Kind() executor.Kind {
	return executor.KindWrite
}

func (s *reserveBlockStatement) Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error) {
	var row struct {
		LastReserved int64
	}
	res := db.WithContext(ctx).Raw(
		"UPDATE id_counters SET last_reserved = last_reserved + ? WHERE name = ? RETURNING last_reserved",
		s.block, s.counter,
	).Scan(&row)
	if res.Error != nil {
		return outcome.Outcome{}, res.Error
	}
	if res.RowsAffected == 0 {
		return outcome.Failuref(outcome.NotFound, "id counter %q does not exist", s.counter), nil
	}
	s.newEnd = uint64(row.LastReserved)
	return outcome.Success(res.RowsAffected), nil
}

// counterProbeStatement checks that the configured counter row exists, so the
// generator's constructor can fail fast when the migrator has not run.
type counterProbeStatement struct {
	counter string
	found   bool
}

func (s *counterProbeStatement) Kind() executor.Kind {
	return executor.KindRead
}

func (s *counterProbeStatement) Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error) {
	var row struct {
		LastReserved int64
	}
	res := db.WithContext(ctx).Raw(
		"SELECT last_reserved FROM id_counters WHERE name = ?",
		s.counter,
	).Scan(&row)
	if res.Error != nil {
		return outcome.Outcome{}, res.Error
	}
	s.found = res.RowsAffected > 0
	return outcome.Success(res.RowsAffected), nil
}
