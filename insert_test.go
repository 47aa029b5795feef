package sqlq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	t.Run(`record`, func(t *testing.T) {
		eqCompiled(
			t,
			Insert(`t`, Delta{{`a`, 1}, {`b`, 2}}),
			`INSERT INTO "t" ("a", "b") VALUES ($1, $2)`,
			1, 2,
		)
	})

	t.Run(`values are not stringified`, func(t *testing.T) {
		eqCompiled(
			t,
			Insert(`t`, Delta{{`a`, true}, {`b`, nil}, {`c`, `>=5`}}),
			`INSERT INTO "t" ("a", "b", "c") VALUES ($1, $2, $3)`,
			true, nil, `>=5`,
		)
	})

	t.Run(`empty record`, func(t *testing.T) {
		eqCompiled(t, Insert(`t`, nil), `INSERT INTO "t" DEFAULT VALUES`)
	})

	t.Run(`returning`, func(t *testing.T) {
		eqCompiled(
			t,
			Insert(`t`, Delta{{`a`, 1}}).Returning(`id`, `a`),
			`INSERT INTO "t" ("a") VALUES ($1) RETURNING "id", "a"`,
			1,
		)
	})

	t.Run(`returning all`, func(t *testing.T) {
		eqCompiled(
			t,
			Insert(`t`, Delta{{`a`, 1}}).Returning(`*`),
			`INSERT INTO "t" ("a") VALUES ($1) RETURNING *`,
			1,
		)
	})

	t.Run(`returning cleared`, func(t *testing.T) {
		eqCompiled(
			t,
			Insert(`t`, Delta{{`a`, 1}}).Returning(`id`).Returning(),
			`INSERT INTO "t" ("a") VALUES ($1)`,
			1,
		)
	})
}

func TestInsert_invalid(t *testing.T) {
	test := func(query *InsertQuery) {
		t.Helper()
		_, err := query.Compile()
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf(`expected invalid input, got %+v`, err)
		}
	}

	test(Insert(``, Delta{{`a`, 1}}))
	test(Insert(`t`, Delta{{``, 1}}))
	test(Insert(`t`, Delta{{`a`, 1}, {`a`, 2}}))
}

func TestInsert_DoUpdate(t *testing.T) {
	query := Insert(`t`, Delta{{`a`, 1}, {`b`, 2}, {`c`, 3}}).OnConflict(`a`).DoUpdate(`b`)

	eqCompiled(
		t,
		query,
		`INSERT INTO "t" ("a", "b", "c") VALUES ($1, $2, $3) ON CONFLICT ("a") DO UPDATE SET "a" = $4, "c" = $5`,
		1, 2, 3, `1`, `3`,
	)

	eq(t, Delta{{`a`, 1}, {`c`, 3}}, query.UpdateDelta())
}

func TestInsert_DoUpdate_without_exclusions(t *testing.T) {
	eqCompiled(
		t,
		Insert(`t`, Delta{{`id`, 1}, {`name`, `x`}}).OnConflict(`id`).DoUpdate().Returning(`id`),
		`INSERT INTO "t" ("id", "name") VALUES ($1, $2) ON CONFLICT ("id") DO UPDATE SET "id" = $3, "name" = $4 RETURNING "id"`,
		1, `x`, `1`, `x`,
	)
}

func TestInsert_DoUpdate_legacy_exclusion_marker(t *testing.T) {
	eqCompiled(
		t,
		Insert(`t`, Delta{{`a`, 1}, {`b`, 2}}).OnConflict(`a`, `b`).DoUpdate(`!a`),
		`INSERT INTO "t" ("a", "b") VALUES ($1, $2) ON CONFLICT ("a", "b") DO UPDATE SET "b" = $3`,
		1, 2, `2`,
	)
}

func TestInsert_DoUpdate_invalid(t *testing.T) {
	t.Run(`missing target`, func(t *testing.T) {
		_, err := Insert(`t`, Delta{{`a`, 1}}).OnConflict().DoUpdate().Compile()
		assert.ErrorIs(t, err, ErrConflictTarget)
	})

	t.Run(`everything excluded`, func(t *testing.T) {
		_, err := Insert(`t`, Delta{{`a`, 1}}).OnConflict(`a`).DoUpdate(`a`).Compile()
		assert.ErrorIs(t, err, ErrEmptyDelta)
	})
}

func TestInsert_DoNothing(t *testing.T) {
	eqCompiled(
		t,
		Insert(`t`, Delta{{`a`, 1}}).OnConflict(`a`).DoNothing(),
		`INSERT INTO "t" ("a") VALUES ($1) ON CONFLICT ("a") DO NOTHING`,
		1,
	)

	eqCompiled(
		t,
		Insert(`t`, Delta{{`a`, 1}}).OnConflict().DoNothing(),
		`INSERT INTO "t" ("a") VALUES ($1) ON CONFLICT DO NOTHING`,
		1,
	)
}

func TestInsert_conflict_incomplete(t *testing.T) {
	query := Insert(`t`, Delta{{`a`, 1}})
	query.OnConflict(`a`)

	_, err := query.Compile()
	assert.ErrorIs(t, err, ErrConflictIncomplete)
}

func TestInsert_conflict_redefined(t *testing.T) {
	query := Insert(`t`, Delta{{`a`, 1}, {`b`, 2}}).OnConflict(`a`).DoNothing()
	query.OnConflict(`b`).DoUpdate()

	_, err := query.Compile()
	require.ErrorIs(t, err, ErrConflictRedefined)

	spec, ok := query.Conflict()
	require.True(t, ok)
	eq(t, ConflictSpec{Fields: []string{`a`}, Action: ConflictNothing}, spec)
	eq(t, Delta(nil), query.UpdateDelta())
}

func TestInsert_Conflict_copy(t *testing.T) {
	query := Insert(`t`, Delta{{`a`, 1}})
	_, ok := query.Conflict()
	eq(t, false, ok)

	query.OnConflict(`a`).DoUpdate(`b`)
	spec, ok := query.Conflict()
	eq(t, true, ok)
	eq(t, ConflictSpec{Fields: []string{`a`}, Action: ConflictUpdate, Exclude: []string{`b`}}, spec)

	spec.Fields[0] = `x`
	spec.Exclude[0] = `y`
	eqCompiled(
		t,
		query,
		`INSERT INTO "t" ("a") VALUES ($1) ON CONFLICT ("a") DO UPDATE SET "a" = $2`,
		1, `1`,
	)
}

func TestConflictAction_String(t *testing.T) {
	eq(t, ``, ConflictNone.String())
	eq(t, `DO NOTHING`, ConflictNothing.String())
	eq(t, `DO UPDATE`, ConflictUpdate.String())
}
