/*
Package pg implements `sqlq.Executor` on top of "database/sql", using the
Postgres driver "github.com/lib/pq". Every statement is logged via "log/slog",
and its duration may be recorded as a metric.
*/
package pg

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mitranim/sqlq"
)

// Name under which "github.com/lib/pq" registers itself in "database/sql".
const DriverName = `postgres`

const defaultSlowThreshold = 100 * time.Millisecond

/*
Subset of "database/sql" used for running statements. Implemented by
`*sql.DB`, `*sql.Tx` and `*sql.Conn`.
*/
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Configures a `DB`. See `OpenDB`.
type Option func(*DB)

// Option for using a specific logger. The default is `slog.Default()`.
func WithLogger(logger *slog.Logger) Option {
	return func(self *DB) {
		if logger != nil {
			self.logger = logger
		}
	}
}

/*
Option for the duration above which statements are logged as slow, at warning
level. Zero disables slow statement detection.
*/
func WithSlowThreshold(threshold time.Duration) Option {
	return func(self *DB) {
		self.slowThreshold = threshold
	}
}

/*
Option for including statement arguments in log records. Off by default,
because arguments may contain sensitive data.
*/
func WithArgLogging(enabled bool) Option {
	return func(self *DB) {
		self.logArgs = enabled
	}
}

// Option for recording the duration of every statement. See `Metrics`.
func WithMetrics(metrics Metrics) Option {
	return func(self *DB) {
		self.metrics = metrics
	}
}

/*
Executes compiled statements. Safe for concurrent use when the underlying
`ExecQuerier` is, which is the case for `*sql.DB`.
*/
type DB struct {
	conn          ExecQuerier
	logger        *slog.Logger
	metrics       Metrics
	slowThreshold time.Duration
	logArgs       bool
}

var _ sqlq.Executor = (*DB)(nil)

/*
Opens a connection pool using the configuration. Connections are established
lazily; use `.SQL().PingContext` to verify connectivity.
*/
func Open(conf Config, opts ...Option) (*DB, error) {
	db, err := sql.Open(DriverName, conf.DSN)
	if err != nil {
		return nil, err
	}

	if conf.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		db.SetMaxIdleConns(conf.MaxIdleConns)
	}

	return OpenDB(db, append(conf.options(), opts...)...), nil
}

// Wraps an existing connection pool, transaction or connection.
func OpenDB(conn ExecQuerier, opts ...Option) *DB {
	out := &DB{
		conn:          conn,
		logger:        slog.Default(),
		slowThreshold: defaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// Returns the underlying `*sql.DB`, or nil when wrapping something else.
func (self *DB) SQL() *sql.DB {
	db, _ := self.conn.(*sql.DB)
	return db
}

// Closes the underlying pool, if any.
func (self *DB) Close() error {
	if db := self.SQL(); db != nil {
		return db.Close()
	}
	return nil
}

/*
Starts a transaction. The resulting `Tx` is also a `sqlq.Executor` and shares
the logging and metrics configuration.
*/
func (self *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	db := self.SQL()
	if db == nil {
		return nil, errNotPool
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	child := *self
	child.conn = tx
	return &Tx{DB: &child, tx: tx}, nil
}

var errNotPool = errors.New(`[pg] transactions require a *sql.DB`)

// Transaction-scoped executor. See `DB.BeginTx`.
type Tx struct {
	*DB
	tx *sql.Tx
}

func (self *Tx) Commit() error   { return self.tx.Commit() }
func (self *Tx) Rollback() error { return self.tx.Rollback() }

/*
Implement `sqlq.Executor`. Statements that produce rows ("select" and anything
with "returning") are run with `QueryContext`, and every row is collected into
a map. Other statements are run with `ExecContext`, and the result count is
the amount of affected rows. Driver errors are returned unmodified.
*/
func (self *DB) Query(ctx context.Context, text string, args []any) (sqlq.Result, error) {
	start := time.Now()
	id := uuid.NewString()

	var (
		out sqlq.Result
		err error
	)
	if returnsRows(text) {
		out, err = self.query(ctx, text, args)
	} else {
		out, err = self.exec(ctx, text, args)
	}

	dur := time.Since(start)
	self.log(ctx, id, text, args, out, dur, err)
	self.record(ctx, text, dur, err)
	return out, err
}

func (self *DB) query(ctx context.Context, text string, args []any) (sqlq.Result, error) {
	rows, err := self.conn.QueryContext(ctx, text, args...)
	if err != nil {
		return sqlq.Result{}, err
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return sqlq.Result{}, err
	}
	return sqlq.Result{Rows: out, Count: int64(len(out))}, nil
}

func (self *DB) exec(ctx context.Context, text string, args []any) (sqlq.Result, error) {
	res, err := self.conn.ExecContext(ctx, text, args...)
	if err != nil {
		return sqlq.Result{}, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return sqlq.Result{}, err
	}
	return sqlq.Result{Count: count}, nil
}

func scanRows(rows *sql.Rows) ([]sqlq.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []sqlq.Row{}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for ind := range vals {
		ptrs[ind] = &vals[ind]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(sqlq.Row, len(cols))
		for ind, col := range cols {
			row[col] = vals[ind]
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (self *DB) log(ctx context.Context, id, text string, args []any, out sqlq.Result, dur time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String(`id`, id),
		slog.String(`type`, statementType(text)),
		slog.String(`query`, text),
		slog.Duration(`duration`, dur),
		slog.Int(`args`, len(args)),
	}
	if self.logArgs {
		attrs = append(attrs, slog.Any(`values`, args))
	}

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			attrs = append(attrs,
				slog.String(`code`, string(pqErr.Code)),
				slog.String(`constraint`, pqErr.Constraint),
			)
		}
		attrs = append(attrs, slog.String(`error`, err.Error()))
		self.logger.LogAttrs(ctx, slog.LevelError, `query failed`, attrs...)
		return
	}

	attrs = append(attrs, slog.Int64(`count`, out.Count))

	if self.slowThreshold > 0 && dur > self.slowThreshold {
		self.logger.LogAttrs(ctx, slog.LevelWarn, `slow query`, attrs...)
		return
	}
	self.logger.LogAttrs(ctx, slog.LevelDebug, `query`, attrs...)
}

func (self *DB) record(ctx context.Context, text string, dur time.Duration, err error) {
	if self.metrics == nil {
		return
	}

	status := statusOk
	if err != nil {
		status = statusError
	}

	self.metrics.RecordHistogram(
		ctx, MetricQueryDuration, dur.Seconds(),
		labelType, statementType(text),
		labelStatus, status,
	)
}

func statementType(text string) string {
	text = strings.TrimSpace(text)
	word, _, _ := strings.Cut(text, ` `)
	return strings.ToUpper(word)
}

// Statements compiled by "sqlq" use upper-case keywords and quoted
// identifiers, so a bare " RETURNING " can only be the clause itself.
func returnsRows(text string) bool {
	return statementType(text) == `SELECT` || strings.Contains(text, ` RETURNING `)
}
