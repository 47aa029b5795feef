package sqlq

import (
	"database/sql/driver"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitranim/refut"
)

/*
Builds a disjunction of conjunctions: pairs within each condition are joined by
"and", and conditions are joined by "or". Every value becomes an ordinal
parameter, numbered from `start`. For example:

	Disjunction([]Condition{{{`a`, 1}, {`b`, `>=2`}}, {{`c`, `x*`}}}, 1, true)
	-> `"a" = $1 AND "b" >= $2 OR "c" LIKE $3`, [1, "2", "x%"]

Conditions without pairs are skipped. Empty input produces an empty result;
callers are expected to omit the "where" keyword in that case. Identifiers are
quoted unless `quote` is false, which is meant only for system catalog lookups
with schema-qualified names.
*/
func Disjunction(conds []Condition, start int, quote bool) Compiled {
	bui := Bui{Offset: offsetFrom(start)}
	appendDisjunction(&bui, conds, quote)
	return bui.Compiled()
}

func appendDisjunction(bui *Bui, conds []Condition, quote bool) {
	var found bool

	for _, cond := range conds {
		if cond.IsEmpty() {
			continue
		}

		if found {
			bui.Str(`OR`)
		}
		found = true

		for ind, pair := range cond {
			if ind > 0 {
				bui.Str(`AND`)
			}
			op, val := InferOp(pair.Val)
			bui.Ident(pair.Key, quote)
			bui.Str(string(op))
			bui.Arg(val)
		}
	}
}

// Rejects pairs with empty keys, which would compile to an empty identifier.
func validateConditions(conds []Condition, while string) error {
	for ind, cond := range conds {
		for _, pair := range cond {
			if pair.Key == `` {
				return ErrInvalidInput.while(while).becausef(`empty field name in condition %d`, ind)
			}
		}
	}
	return nil
}

// Counts predicates across all conditions.
func countPredicates(conds []Condition) (count int) {
	for _, cond := range conds {
		count += len(cond)
	}
	return
}

/*
Builds a comma-separated assignment list suitable for "set", with parameters
numbered from `start`:

	Assignments(Delta{{`a`, 1}, {`b`, true}}, 3)
	-> `"a" = $3, "b" = $4`, ["1", "true"]

Every value is converted to its string representation via `Stringify`; this
differs from conditions, where values are passed as-is. An empty delta
produces an empty result; "update" statements reject it before getting here.
*/
func Assignments(delta Delta, start int) Compiled {
	bui := Bui{Offset: offsetFrom(start)}
	appendAssignments(&bui, delta)
	return bui.Compiled()
}

func appendAssignments(bui *Bui, delta Delta) {
	for ind, pair := range delta {
		if ind > 0 {
			bui.Str(`,`)
		}
		bui.Ident(pair.Key, true)
		bui.Str(string(OpEq))
		bui.Arg(Stringify(pair.Val))
	}
}

/*
Converts an assignment value to a string. Pointers are dereferenced and
`driver.Valuer` types such as `sql.NullString` are resolved first. Nil, nil
pointers and invalid nullable values remain nil, which corresponds to SQL null.
Times are encoded as RFC 3339 with nanoseconds, which Postgres accepts for all
date and time types.
*/
func Stringify(val any) any {
	val, ok := resolveValue(val)
	if !ok {
		return nil
	}

	switch val := val.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err == nil {
			return string(text)
		}
		return fmt.Sprint(val)
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

/*
Dereferences pointers and resolves `driver.Valuer`. False means SQL null.
Values returned by a valuer are plain driver values and are not resolved again.
A valuer that fails is treated as a regular value.
*/
func resolveValue(val any) (any, bool) {
	for {
		if refut.IsNil(val) {
			return nil, false
		}

		valuer, ok := val.(driver.Valuer)
		if ok {
			out, err := valuer.Value()
			if err == nil {
				return out, out != nil
			}
		}

		rval := reflect.ValueOf(val)
		if rval.Kind() != reflect.Ptr {
			return val, true
		}
		val = rval.Elem().Interface()
	}
}

// Placeholders are 1-based; anything below 1 starts at 1.
func offsetFrom(start int) int {
	if start < 1 {
		return 0
	}
	return start - 1
}
