package sqlq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Text string
	Args []any
}

// Records every request and answers with a fixed result.
type recExec struct {
	sync.Mutex
	calls []call
	res   Result
	err   error
}

func (self *recExec) Query(_ context.Context, text string, args []any) (Result, error) {
	self.Lock()
	defer self.Unlock()
	self.calls = append(self.calls, call{text, args})
	return self.res, self.err
}

func (self *recExec) Calls() []call {
	self.Lock()
	defer self.Unlock()
	return append([]call(nil), self.calls...)
}

func TestExecute(t *testing.T) {
	exec := &recExec{res: Result{Rows: []Row{{`id`: 1}}, Count: 1}}
	query := Select(`t`, `id`).Where(Condition{{`id`, 1}})

	rows, err := query.Execute(context.Background(), exec)
	require.NoError(t, err)
	eq(t, []Row{{`id`: 1}}, rows)
	eq(t, []call{{`SELECT "id" FROM "t" WHERE "id" = $1`, []any{1}}}, exec.Calls())

	_, err = query.Execute(context.Background(), exec)
	require.NoError(t, err)
	eq(t, 2, len(exec.Calls()))
}

func TestExecute_no_request_on_invalid_statement(t *testing.T) {
	exec := &recExec{}
	ctx := context.Background()

	_, err := Update(`t`, Delta{{`a`, 1}}).Execute(ctx, exec)
	assert.ErrorIs(t, err, ErrEmptyWhere)

	_, err = Update(`t`, nil).Where(Condition{{`id`, 1}}).Execute(ctx, exec)
	assert.ErrorIs(t, err, ErrEmptyDelta)

	insert := Insert(`t`, Delta{{`a`, 1}})
	insert.OnConflict(`a`)
	_, err = insert.Execute(ctx, exec)
	assert.ErrorIs(t, err, ErrConflictIncomplete)

	_, err = Execute(ctx, exec, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	eq(t, []call(nil), exec.Calls())
}

func TestExecute_nil_executor(t *testing.T) {
	_, err := Execute(context.Background(), nil, DeleteFrom(`t`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_error_passthrough(t *testing.T) {
	cause := errors.New(`connection refused`)
	exec := &recExec{err: cause}

	_, err := DeleteFrom(`t`).Execute(context.Background(), exec)
	assert.Same(t, cause, err)
}

func TestExecutorFunc(t *testing.T) {
	var text string
	exec := ExecutorFunc(func(_ context.Context, val string, args []any) (Result, error) {
		text = val
		return Result{Count: int64(len(args))}, nil
	})

	res, err := Insert(`t`, Delta{{`a`, 1}, {`b`, 2}}).Execute(context.Background(), exec)
	require.NoError(t, err)
	eq(t, Result{Count: 2}, res)
	eq(t, `INSERT INTO "t" ("a", "b") VALUES ($1, $2)`, text)
}

func TestGo(t *testing.T) {
	exec := &recExec{res: Result{Count: 3}}

	fut := Update(`t`, Delta{{`a`, 1}}).Where(Condition{{`b`, 2}}).Go(context.Background(), exec)

	select {
	case <-fut.Done():
	case <-time.After(time.Second):
		t.Fatal(`future did not resolve`)
	}

	res, err := fut.Wait()
	require.NoError(t, err)
	eq(t, Result{Count: 3}, res)

	res, err = fut.Wait()
	require.NoError(t, err)
	eq(t, Result{Count: 3}, res)

	eq(t, []call{{`UPDATE "t" SET "a" = $1 WHERE "b" = $2`, []any{`1`, 2}}}, exec.Calls())
}

func TestGo_compile_error(t *testing.T) {
	exec := &recExec{}

	_, err := Update(`t`, Delta{{`a`, 1}}).Go(context.Background(), exec).Wait()
	assert.ErrorIs(t, err, ErrEmptyWhere)
	eq(t, []call(nil), exec.Calls())
}

func TestFuture_WaitContext(t *testing.T) {
	release := make(chan struct{})
	exec := ExecutorFunc(func(context.Context, string, []any) (Result, error) {
		<-release
		return Result{Count: 1}, nil
	})

	fut := Select(`t`).Go(context.Background(), exec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fut.WaitContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	res, err := fut.WaitContext(context.Background())
	require.NoError(t, err)
	eq(t, int64(1), res.Count)
}

func TestExecuteAll(t *testing.T) {
	exec := ExecutorFunc(func(_ context.Context, text string, _ []any) (Result, error) {
		return Result{Rows: []Row{{`text`: text}}}, nil
	})

	out, err := ExecuteAll(
		context.Background(), exec,
		Select(`a`),
		DeleteFrom(`b`),
		Insert(`c`, nil),
	)
	require.NoError(t, err)
	require.Len(t, out, 3)
	eq(t, `SELECT * FROM "a"`, out[0].Rows[0][`text`])
	eq(t, `DELETE FROM "b"`, out[1].Rows[0][`text`])
	eq(t, `INSERT INTO "c" DEFAULT VALUES`, out[2].Rows[0][`text`])
}

func TestExecuteAll_compile_error(t *testing.T) {
	exec := &recExec{}

	_, err := ExecuteAll(context.Background(), exec, Select(`a`), Update(`b`, nil))
	assert.ErrorIs(t, err, ErrEmptyDelta)
	eq(t, []call(nil), exec.Calls())
}

func TestExecuteAll_request_error(t *testing.T) {
	cause := errors.New(`fail`)
	exec := ExecutorFunc(func(ctx context.Context, text string, _ []any) (Result, error) {
		if text == `SELECT * FROM "b"` {
			return Result{}, cause
		}
		return Result{}, nil
	})

	out, err := ExecuteAll(context.Background(), exec, Select(`a`), Select(`b`))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, out)
}
