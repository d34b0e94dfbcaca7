package executor

import (
	"context"
	"database/sql/driver"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// nopLogger satisfies Logger without output; tests that assert on logging
// use countingLogger instead.
type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}

// countingLogger records how often each level was used.
type countingLogger struct {
	mu     sync.Mutex
	warns  int
	errors int
}

func (c *countingLogger) Info(string, error, ...map[string]interface{})  {}
func (c *countingLogger) Debug(string, error, ...map[string]interface{}) {}
func (c *countingLogger) Warn(string, error, ...map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns++
}
func (c *countingLogger) Error(string, error, ...map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors++
}
func (c *countingLogger) Fatal(string, error, ...map[string]interface{}) {}

// fakeStatement fails with the scripted errors in order, then succeeds.
type fakeStatement struct {
	kind Kind

	mu      sync.Mutex
	calls   int
	scripts []error
}

func (s *fakeStatement) Kind() Kind {
	return s.kind
}

func (s *fakeStatement) Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= len(s.scripts) && s.scripts[s.calls-1] != nil {
		return outcome.Outcome{}, s.scripts[s.calls-1]
	}
	return outcome.Success(1), nil
}

func (s *fakeStatement) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// repeat builds a script of n identical errors.
func repeat(err error, n int) []error {
	script := make([]error, n)
	for i := range script {
		script[i] = err
	}
	return script
}

func newTestExecutor(t *testing.T, cfg Config, log Logger) *Executor {
	t.Helper()
	ctrl := gomock.NewController(t)
	db := NewMockDatabase(ctrl)
	db.EXPECT().DB().Return(nil).AnyTimes()
	if log == nil {
		log = nopLogger{}
	}
	return NewExecutor(cfg, db, log)
}

func TestNewExecutorPanicsOnNilCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(Config{}, nil, nopLogger{}) })

	ctrl := gomock.NewController(t)
	db := NewMockDatabase(ctrl)
	assert.Panics(t, func() { NewExecutor(Config{}, db, nil) })
}

func TestExecuteOncePanicsOnNilStatement(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 1}, nil)
	assert.Panics(t, func() { e.ExecuteOnce(context.Background(), nil) })
	assert.Panics(t, func() { e.ExecuteWithRetry(context.Background(), nil) })
}

func TestExecuteOnceSuccess(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 1}, nil)
	stmt := &fakeStatement{kind: KindRead}

	out := e.ExecuteOnce(context.Background(), stmt)

	require.True(t, out.OK())
	assert.Equal(t, int64(1), out.AffectedRows)
	assert.Equal(t, 1, stmt.callCount())
	assert.Equal(t, int64(0), e.reads.InUse(), "slot must be released after execution")
}

func TestExecuteOnceDoesNotRetry(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 5, RetryDelay: time.Millisecond}, nil)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(driver.ErrBadConn, 1)}

	out := e.ExecuteOnce(context.Background(), stmt)

	assert.False(t, out.OK())
	assert.True(t, out.Is(outcome.GenericError))
	assert.Equal(t, 1, stmt.callCount(), "ExecuteOnce must not retry transport failures")
}

func TestRetryTransientFailuresThenSucceed(t *testing.T) {
	log := &countingLogger{}
	delay := 15 * time.Millisecond
	e := newTestExecutor(t, Config{MaxRetries: 3, RetryDelay: delay}, log)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(io.ErrUnexpectedEOF, 2)}

	start := time.Now()
	out := e.ExecuteWithRetry(context.Background(), stmt)
	elapsed := time.Since(start)

	require.True(t, out.OK())
	assert.Equal(t, 3, stmt.callCount(), "two failures plus the success")
	assert.GreaterOrEqual(t, elapsed, 2*delay, "the configured delay must pass between attempts")
	assert.Equal(t, 2, log.warns, "each transient failure is logged before the retry")
	assert.Equal(t, int64(0), e.writes.InUse())
}

func TestRetryBudgetExhausted(t *testing.T) {
	log := &countingLogger{}
	e := newTestExecutor(t, Config{MaxRetries: 3, RetryDelay: time.Millisecond}, log)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(driver.ErrBadConn, 10)}

	out := e.ExecuteWithRetry(context.Background(), stmt)

	require.False(t, out.OK())
	assert.True(t, out.Is(outcome.TooManyRetries))
	assert.Equal(t, 3, stmt.callCount())
	assert.Equal(t, 1, log.errors, "the final failure is logged before returning")
}

func TestRejectedFailureIsNeverRetried(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 10, RetryDelay: time.Millisecond}, nil)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(gorm.ErrDuplicatedKey, 10)}

	out := e.ExecuteWithRetry(context.Background(), stmt)

	require.False(t, out.OK())
	assert.True(t, out.Is(outcome.Duplicate))
	assert.Equal(t, 1, stmt.callCount(), "store-rejected failures propagate on first occurrence")
}

func TestZeroMaxRetriesMeansUnlimited(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 0, RetryDelay: time.Microsecond}, nil)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(io.ErrUnexpectedEOF, 150)}

	out := e.ExecuteWithRetry(context.Background(), stmt)

	require.True(t, out.OK(), "a zero budget means unlimited attempts, not zero")
	assert.Equal(t, 151, stmt.callCount())
}

func TestPerCallMaxRetriesOverride(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 10, RetryDelay: time.Millisecond}, nil)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(driver.ErrBadConn, 10)}

	out := e.ExecuteWithRetry(context.Background(), stmt, WithMaxRetries(2))

	require.False(t, out.OK())
	assert.True(t, out.Is(outcome.TooManyRetries))
	assert.Equal(t, 2, stmt.callCount())
}

func TestCancellationDuringLimiterWait(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 1, WritePoolSize: 1}, nil)

	held, err := e.writes.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stmt := &fakeStatement{kind: KindWrite}
	out := e.ExecuteOnce(ctx, stmt)

	require.False(t, out.OK())
	assert.True(t, out.Is(outcome.GenericError))
	assert.Equal(t, 0, stmt.callCount(), "statement must not run without a slot")
	assert.Equal(t, int64(1), e.writes.InUse(), "cancelled wait must not leak a slot")
}

func TestCancellationDuringBackoff(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 5, RetryDelay: time.Second}, nil)
	stmt := &fakeStatement{kind: KindWrite, scripts: repeat(driver.ErrBadConn, 5)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	out := e.ExecuteWithRetry(ctx, stmt)

	require.False(t, out.OK())
	assert.Equal(t, 1, stmt.callCount())
	assert.Less(t, time.Since(start), time.Second, "cancellation must abort the backoff wait")
}

func TestReadAndWriteStatementsUseSeparatePools(t *testing.T) {
	e := newTestExecutor(t, Config{MaxRetries: 1, ReadPoolSize: 1, WritePoolSize: 1}, nil)

	// Saturate the read pool; a write statement must still get through.
	heldRead, err := e.reads.Acquire(context.Background())
	require.NoError(t, err)
	defer heldRead.Release()

	stmt := &fakeStatement{kind: KindWrite}
	out := e.ExecuteOnce(context.Background(), stmt)

	require.True(t, out.OK())
	assert.Equal(t, 1, stmt.callCount())
}

func TestStatementKindString(t *testing.T) {
	assert.Equal(t, "read", KindRead.String())
	assert.Equal(t, "write", KindWrite.String())
}
