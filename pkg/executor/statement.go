package executor

import (
	"context"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/dbcore/pkg/outcome"
)

// Kind tells the executor which admission gate a statement competes for.
type Kind int

const (
	// KindWrite statements (and anything unclassified) go through the
	// write/general pool.
	KindWrite Kind = iota

	// KindRead statements go through the read pool.
	KindRead
)

// String returns the pool name for the kind, matching the limiter names.
func (k Kind) String() string {
	if k == KindRead {
		return "read"
	}
	return "write"
}

// Statement is an opaque, self-contained unit of work executable against one
// open connection. Implementations carry their own input parameters; query
// statements accumulate their result rows internally and own them
// exclusively.
//
// Run returns the semantic result of the statement as an Outcome, or a
// non-nil error when the driver itself failed. The executor classifies that
// error to decide between retrying (transport failures) and propagating
// (store-rejected failures); statements should hand driver errors back
// untranslated.
type Statement interface {
	Kind() Kind
	Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error)
}

// ExecStatement is a write statement running a raw SQL command that returns
// no rows.
type ExecStatement struct {
	sql  string
	args []interface{}
}

// NewExec creates a write statement from a raw SQL command.
func NewExec(sql string, args ...interface{}) *ExecStatement {
	return &ExecStatement{sql: sql, args: args}
}

func (s *ExecStatement) Kind() Kind {
	return KindWrite
}

func (s *ExecStatement) Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error) {
	res := db.WithContext(ctx).Exec(s.sql, s.args...)
	if res.Error != nil {
		return outcome.Outcome{}, res.Error
	}
	return outcome.Success(res.RowsAffected), nil
}

// QueryStatement is a read statement running a raw SQL query and scanning the
// result rows into dest. dest is owned by the statement instance for the
// duration of the execution and must not be shared across statements.
type QueryStatement struct {
	dest interface{}
	sql  string
	args []interface{}
}

// NewQuery creates a read statement scanning its rows into dest.
func NewQuery(dest interface{}, sql string, args ...interface{}) *QueryStatement {
	return &QueryStatement{dest: dest, sql: sql, args: args}
}

func (s *QueryStatement) Kind() Kind {
	return KindRead
}

func (s *QueryStatement) Run(ctx context.Context, db *gorm.DB) (outcome.Outcome, error) {
	res := db.WithContext(ctx).Raw(s.sql, s.args...).Scan(s.dest)
	if res.Error != nil {
		return outcome.Outcome{}, res.Error
	}
	return outcome.Success(res.RowsAffected), nil
}
