package sqlq

import (
	"testing"
)

func TestInferOp(t *testing.T) {
	test := func(src any, expOp Op, expVal any) {
		t.Helper()
		op, val := InferOp(src)
		eq(t, expOp, op)
		eq(t, expVal, val)
	}

	test(`>=5`, OpGte, `5`)
	test(`<=5`, OpLte, `5`)
	test(`<>x`, OpNeq, `x`)
	test(`>5`, OpGt, `5`)
	test(`<5`, OpLt, `5`)
	test(`>`, OpGt, ``)
	test(`>=`, OpGte, ``)

	test(`*abc`, OpLike, `%abc`)
	test(`a?c`, OpLike, `a_c`)
	test(`jo*n?`, OpLike, `jo%n_`)
	test(`*`, OpLike, `%`)

	test(`plain`, OpEq, `plain`)
	test(``, OpEq, ``)
	test(`=5`, OpEq, `=5`)
	test(`a%b`, OpEq, `a%b`)

	test(5, OpEq, 5)
	test(int64(-1), OpEq, int64(-1))
	test(true, OpEq, true)
	test(nil, OpEq, nil)
	test([]byte(`>=5`), OpEq, []byte(`>=5`))
}

// Operator prefixes take priority over wildcards.
func TestInferOp_prefix_with_wildcard(t *testing.T) {
	op, val := InferOp(`>=a*`)
	eq(t, OpGte, op)
	eq(t, `a*`, val)

	op, val = InferOp(`<>?`)
	eq(t, OpNeq, op)
	eq(t, `?`, val)
}
