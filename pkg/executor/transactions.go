package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/limiter"
	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// ErrTransactionFinished is returned by Commit and Rollback once the
// transaction has already been committed or rolled back.
var ErrTransactionFinished = errors.New("transaction already finished")

// driverTx is the narrow commit/rollback surface of an open transaction.
// It decouples the handle's lifetime bookkeeping from GORM so tests can
// substitute a fake transaction.
type driverTx interface {
	Commit() error
	Rollback() error
}

// gormTx adapts *gorm.DB's fluent commit/rollback API to driverTx.
type gormTx struct {
	db *gorm.DB
}

func (g gormTx) Commit() error {
	return g.db.Commit().Error
}

func (g gormTx) Rollback() error {
	return g.db.Rollback().Error
}

// TransactionHandle owns one open transaction on one connection together
// with the write-pool limiter slot borrowed for their combined lifetime.
//
// Commit and Rollback are explicit and do NOT release the slot; all
// statements of one transaction run serially on the one connection the
// transaction owns, and the slot models that connection's occupancy until
// the handle is closed. Close releases the slot exactly once and rolls the
// transaction back if it is still open; defer Close immediately after
// BeginTransaction succeeds.
type TransactionHandle struct {
	tx     *gorm.DB
	driver driverTx
	slot   *limiter.Slot
	logger Logger

	mu        sync.Mutex
	finished  bool
	closeOnce sync.Once
}

// BeginTransaction acquires a write-pool slot, opens a transaction on a
// fresh session, and bundles both into a TransactionHandle. On failure the
// slot is released before the error is returned.
func (e *Executor) BeginTransaction(ctx context.Context) (*TransactionHandle, error) {
	slot, err := e.writes.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx := e.db.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		slot.Release()
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	return &TransactionHandle{
		tx:     tx,
		driver: gormTx{db: tx},
		slot:   slot,
		logger: e.logger,
	}, nil
}

// run executes stmt on the handle's open transaction. No limiter slot is
// acquired; the handle already holds one.
func (h *TransactionHandle) run(ctx context.Context, e *Executor, stmt Statement) (outcome.Outcome, error) {
	h.mu.Lock()
	finished := h.finished
	h.mu.Unlock()
	if finished {
		return outcome.Outcome{}, ErrTransactionFinished
	}
	return e.runStatement(ctx, stmt, h.tx)
}

// Commit commits the transaction. The limiter slot stays held until Close.
// Committing a finished transaction returns ErrTransactionFinished.
func (h *TransactionHandle) Commit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return ErrTransactionFinished
	}
	h.finished = true
	return h.driver.Commit()
}

// Rollback rolls the transaction back. The limiter slot stays held until
// Close. Rolling back a finished transaction returns ErrTransactionFinished.
func (h *TransactionHandle) Rollback() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished {
		return ErrTransactionFinished
	}
	h.finished = true
	return h.driver.Rollback()
}

// Close disposes the handle: if neither Commit nor Rollback has run, the
// transaction is rolled back first, then the limiter slot is released.
// Close is idempotent and safe to defer unconditionally.
func (h *TransactionHandle) Close() error {
	var rollbackErr error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		open := !h.finished
		h.finished = true
		h.mu.Unlock()

		if open {
			if err := h.driver.Rollback(); err != nil {
				rollbackErr = fmt.Errorf("rolling back on close: %w", err)
				if h.logger != nil {
					h.logger.Warn("rollback during handle close failed", err, nil)
				}
			}
		}
		h.slot.Release()
	})
	return rollbackErr
}
