package sqlq

import (
	"reflect"
	"testing"
)

type (
	T  = testing.T
	TB = testing.TB
)

func eq(t TB, expected any, actual any) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected:\n%#v\nactual:\n%#v", expected, actual)
	}
}

func compiled(t TB, stmt Statement) Compiled {
	t.Helper()
	out, err := Compile(stmt)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("invalid placeholders in %q: %+v", out.Text, err)
	}
	return out
}

func eqCompiled(t TB, stmt Statement, text string, args ...any) {
	t.Helper()
	out := compiled(t, stmt)
	if len(out.Args) == 0 {
		out.Args = nil
	}
	eq(t, text, out.Text)
	eq(t, args, out.Args)
}
