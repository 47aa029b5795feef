package sqlq

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Single result row: column name to value.
type Row = map[string]any

/*
Envelope returned by an `Executor`. `Rows` holds the returned rows, if any.
`Count` is the amount of affected or returned rows, as reported by the
executor.
*/
type Result struct {
	Rows  []Row
	Count int64
}

/*
Runs SQL text with ordinal arguments. The only capability this package requires
from a database driver. Implementations are responsible for connection
pooling, and their errors are returned to callers unmodified. See the sibling
package "pg".
*/
type Executor interface {
	Query(ctx context.Context, text string, args []any) (Result, error)
}

// Function type implementing `Executor`.
type ExecutorFunc func(ctx context.Context, text string, args []any) (Result, error)

// Implement `Executor`.
func (self ExecutorFunc) Query(ctx context.Context, text string, args []any) (Result, error) {
	return self(ctx, text, args)
}

/*
Compiles the statement and sends it to the executor, issuing exactly one
request. Compilation errors are returned before reaching the executor.
Executing the same statement again compiles it again and issues another
request; results are never memoized.
*/
func Execute(ctx context.Context, exec Executor, stmt Statement) (Result, error) {
	out, err := Compile(stmt)
	if err != nil {
		return Result{}, err
	}
	if exec == nil {
		return Result{}, ErrInvalidInput.while(`executing ` + stmt.Kind().String()).becausef(`nil executor`)
	}
	return exec.Query(ctx, out.Text, out.Args)
}

/*
Executes the statement in a separate goroutine, returning a future that
resolves exactly once. Compilation happens before this function returns, so
configuration errors are delivered through the future without starting a
request.
*/
func Go(ctx context.Context, exec Executor, stmt Statement) *Future {
	fut := newFuture()

	out, err := Compile(stmt)
	if err != nil {
		fut.resolve(Result{}, err)
		return fut
	}

	go func() {
		fut.resolve(Execute(ctx, exec, compiledStatement{stmt.Kind(), out}))
	}()
	return fut
}

/*
Executes several statements concurrently, returning their results in the input
order. All statements are compiled before any request is issued. The first
failure cancels the context shared by the remaining requests.
*/
func ExecuteAll(ctx context.Context, exec Executor, stmts ...Statement) ([]Result, error) {
	compiled := make([]Compiled, len(stmts))
	for ind, stmt := range stmts {
		out, err := Compile(stmt)
		if err != nil {
			return nil, err
		}
		compiled[ind] = out
	}

	group, ctx := errgroup.WithContext(ctx)
	out := make([]Result, len(stmts))

	for ind := range compiled {
		group.Go(func() (err error) {
			out[ind], err = Execute(ctx, exec, compiledStatement{stmts[ind].Kind(), compiled[ind]})
			return
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Result of `Go`. Resolves exactly once.
type Future struct {
	done chan struct{}
	res  Result
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (self *Future) resolve(res Result, err error) {
	self.res, self.err = res, err
	close(self.done)
}

// Closed when the future is resolved.
func (self *Future) Done() <-chan struct{} { return self.done }

// Blocks until resolved. May be called any amount of times.
func (self *Future) Wait() (Result, error) {
	<-self.done
	return self.res, self.err
}

/*
Blocks until resolved or until the context is done. In the latter case, the
request keeps running; cancellation of the request itself depends on the
context given to `Go`.
*/
func (self *Future) WaitContext(ctx context.Context) (Result, error) {
	select {
	case <-self.done:
		return self.res, self.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Already-compiled statement. Avoids compiling twice in `Go` and `ExecuteAll`.
type compiledStatement struct {
	kind Kind
	out  Compiled
}

func (self compiledStatement) Kind() Kind                 { return self.kind }
func (self compiledStatement) Compile() (Compiled, error) { return self.out, nil }

// Executes the query, returning the rows.
func (self *SelectQuery) Execute(ctx context.Context, exec Executor) ([]Row, error) {
	out, err := Execute(ctx, exec, self)
	return out.Rows, err
}

// Shortcut for `Go(ctx, exec, self)`.
func (self *SelectQuery) Go(ctx context.Context, exec Executor) *Future {
	return Go(ctx, exec, self)
}

// Executes the query. The rows are present only when using "returning".
func (self *InsertQuery) Execute(ctx context.Context, exec Executor) (Result, error) {
	return Execute(ctx, exec, self)
}

// Shortcut for `Go(ctx, exec, self)`.
func (self *InsertQuery) Go(ctx context.Context, exec Executor) *Future {
	return Go(ctx, exec, self)
}

// Executes the query. The rows are present only when using "returning".
func (self *UpdateQuery) Execute(ctx context.Context, exec Executor) (Result, error) {
	return Execute(ctx, exec, self)
}

// Shortcut for `Go(ctx, exec, self)`.
func (self *UpdateQuery) Go(ctx context.Context, exec Executor) *Future {
	return Go(ctx, exec, self)
}

// Executes the query. The rows are present only when using "returning".
func (self *DeleteQuery) Execute(ctx context.Context, exec Executor) (Result, error) {
	return Execute(ctx, exec, self)
}

// Shortcut for `Go(ctx, exec, self)`.
func (self *DeleteQuery) Go(ctx context.Context, exec Executor) *Future {
	return Go(ctx, exec, self)
}
