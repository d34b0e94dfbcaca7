package postgres

import (
	"gorm.io/gorm"
)

// DB returns the currently-active GORM DB client.
// Callers must not cache the returned pointer across operations: the
// reconnection loop may swap it at any time.
func (p *Postgres) DB() *gorm.DB {
	return p.client.Load()
}
