package sqlq

import (
	"fmt"
	"reflect"

	"github.com/mitranim/refut"
)

/*
Converts a struct into a `Delta`, using "db"-tagged fields in their declaration
order. Fields without a "db" tag or tagged with "-" are skipped. Embedded
structs are traversed. Nil pointers produce an empty delta. For example:

	type User struct {
		Id   string `db:"id"`
		Name string `db:"name"`
		Temp string
	}

	sqlq.DeltaOf(User{`10`, `Mira`, ``})
	-> Delta{{`id`, `10`}, {`name`, `Mira`}}

Panics if the input is not a struct or struct pointer.
*/
func DeltaOf(src any) Delta {
	var out Delta
	traverseStructDbFields(src, func(key string, val any) {
		out = append(out, Pair{key, val})
	})
	return out
}

/*
Same as `DeltaOf`, but the resulting delta contains only the named fields, in
the order of the struct fields. Useful for partial updates.
*/
func DeltaOnly(src any, fields ...string) Delta {
	var out Delta
	traverseStructDbFields(src, func(key string, val any) {
		if hasString(fields, key) {
			out = append(out, Pair{key, val})
		}
	})
	return out
}

func sfieldColumnName(sfield reflect.StructField) string {
	return refut.TagIdent(sfield.Tag.Get("db"))
}

func traverseStructDbFields(input any, fun func(string, any)) {
	if input == nil {
		panic(ErrInvalidInput.while(`traversing struct for DB fields`).becausef(`expected struct, got nil`))
	}

	rval := reflect.ValueOf(input)
	rtype := refut.RtypeDeref(rval.Type())

	if rtype.Kind() != reflect.Struct {
		panic(ErrInvalidInput.while(`traversing struct for DB fields`).because(
			fmt.Errorf(`expected struct, got %q`, rtype),
		))
	}

	if refut.IsRvalNil(rval) {
		return
	}

	err := refut.TraverseStructRval(rval, func(rval reflect.Value, sfield reflect.StructField, _ []int) error {
		colName := sfieldColumnName(sfield)
		if colName == "" {
			return nil
		}
		fun(colName, rval.Interface())
		return nil
	})
	if err != nil {
		panic(err)
	}
}
