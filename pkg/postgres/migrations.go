package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"
)

// IDCounter is the single-row-per-name table backing block reservation of
// 64-bit identifiers. LastReserved is the upper bound of the last durably
// reserved block; it must only ever be mutated through the atomic
// increment-and-return statement issued by the ID generator, never by
// read-then-write from application code.
type IDCounter struct {
	Name         string `gorm:"primaryKey;size:64"`
	LastReserved int64  `gorm:"not null"`
}

// TableName pins the table name independent of GORM's pluralization rules.
func (IDCounter) TableName() string {
	return "id_counters"
}

// Migrate runs database migrations for the provided models, plus the
// IDCounter table this package always owns. It must run to completion before
// the executor and ID generator are usable; their constructors fail fast
// otherwise.
func (p *Postgres) Migrate(models ...interface{}) error {
	models = append(models, &IDCounter{})
	if err := p.DB().AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SeedCounter inserts the counter row with the given name if it does not
// exist yet. Seeding is idempotent and safe under concurrent execution from
// multiple processes (insert-if-absent on the primary key).
func (p *Postgres) SeedCounter(ctx context.Context, name string) error {
	err := p.DB().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&IDCounter{Name: name, LastReserved: 0}).Error
	if err != nil {
		return fmt.Errorf("seeding id counter %q: %w", name, err)
	}
	return nil
}

// CounterExists reports whether the counter row with the given name has been
// created. The ID generator uses it to fail fast when the migrator has not
// run.
func (p *Postgres) CounterExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := p.DB().WithContext(ctx).
		Model(&IDCounter{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking id counter %q: %w", name, err)
	}
	return count > 0, nil
}
