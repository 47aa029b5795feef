package sqlq

import "testing"

func Test_dir_String(t *testing.T) {
	eq(t, ``, dirNone.String())
	eq(t, `ASC`, dirAsc.String())
	eq(t, `DESC`, dirDesc.String())
}

func Test_appendOrderBy(t *testing.T) {
	test := func(fields []string, direction dir, quote bool, exp string) {
		t.Helper()
		var bui Bui
		appendOrderBy(&bui, fields, direction, quote)
		eq(t, exp, bui.String())
	}

	test(nil, dirDesc, true, ``)
	test([]string{`a`}, dirNone, true, `ORDER BY "a"`)
	test([]string{`a`, `b`}, dirAsc, true, `ORDER BY "a", "b"`)
	test([]string{`a`, `b`}, dirDesc, true, `ORDER BY "a" DESC, "b" DESC`)
	test([]string{`a`, `b`}, dirDesc, false, `ORDER BY a DESC, b DESC`)
}
