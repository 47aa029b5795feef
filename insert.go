package sqlq

import (
	"fmt"
	"strings"
)

// Resolution of a uniqueness conflict in an "insert" statement.
type ConflictAction byte

const (
	ConflictNone ConflictAction = iota
	ConflictNothing
	ConflictUpdate
)

// Implement `fmt.Stringer` for debug purposes.
func (self ConflictAction) String() string {
	switch self {
	case ConflictNothing:
		return `DO NOTHING`
	case ConflictUpdate:
		return `DO UPDATE`
	default:
		return ``
	}
}

/*
Describes an "on conflict" clause. `Fields` are the unique or exclusion columns
that trigger the conflict. For `ConflictUpdate`, the record's fields named in
`Exclude` are left out of the "set" clause.
*/
type ConflictSpec struct {
	Fields  []string
	Action  ConflictAction
	Exclude []string
}

// Returns a deep copy.
func (self ConflictSpec) Clone() ConflictSpec {
	return ConflictSpec{
		Fields:  copyStrings(self.Fields),
		Action:  self.Action,
		Exclude: copyStrings(self.Exclude),
	}
}

/*
Starts an "insert" query for a single record. Column order matches the order of
the record's pairs, and values are passed as-is:

	sqlq.Insert(`t`, sqlq.Delta{{`a`, 1}, {`b`, 2}})

Compiles to:

	INSERT INTO "t" ("a", "b") VALUES ($1, $2)

An empty record compiles to "insert into ... default values".
*/
func Insert(table string, record Delta) *InsertQuery {
	return &InsertQuery{upsert: newUpsert(table), record: record}
}

/*
Mutable "insert" query. Setters modify the receiver and return it. Not safe for
concurrent mutation.
*/
type InsertQuery struct {
	upsert
	record   Delta
	conflict *ConflictSpec
	err      error
}

// Implement `Statement`.
func (self *InsertQuery) Kind() Kind { return KindInsert }

// Replaces the "returning" fields. Empty input clears them.
func (self *InsertQuery) Returning(fields ...string) *InsertQuery {
	self.setReturning(fields)
	return self
}

/*
Attaches an "on conflict" clause targeting the given fields, returning a
builder for choosing the action. May be called only once per query: a second
call is a configuration error, which is reported by `Compile` and leaves the
first clause unchanged.
*/
func (self *InsertQuery) OnConflict(fields ...string) *ConflictBuilder {
	if self.conflict != nil {
		self.fail(ErrConflictRedefined.while(`configuring insert`).because(
			fmt.Errorf(`conflict clause on %q is already defined`, self.conflict.Fields),
		))
		return &ConflictBuilder{self, &ConflictSpec{}}
	}

	self.conflict = &ConflictSpec{Fields: copyStrings(fields)}
	return &ConflictBuilder{self, self.conflict}
}

// Returns a copy of the conflict clause, if any.
func (self *InsertQuery) Conflict() (ConflictSpec, bool) {
	if self.conflict == nil {
		return ConflictSpec{}, false
	}
	return self.conflict.Clone(), true
}

// Only the first configuration error is kept.
func (self *InsertQuery) fail(err error) {
	if self.err == nil {
		self.err = err
	}
}

// Implement `Statement`.
func (self *InsertQuery) Compile() (Compiled, error) {
	const while = `compiling insert`

	if self.err != nil {
		return Compiled{}, self.err
	}
	if err := self.validate(while); err != nil {
		return Compiled{}, err
	}
	if err := validateDelta(self.record, while); err != nil {
		return Compiled{}, err
	}

	bui := MakeBui(64, len(self.record)*2)
	bui.Str(`INSERT INTO`)
	bui.Ident(self.table, true)

	if len(self.record) == 0 {
		bui.Str(`DEFAULT VALUES`)
	} else {
		bui.Str(`(`)
		bui.Idents(self.record.Keys(), true)
		bui.Str(`)`)
		bui.Str(`VALUES`)
		bui.Str(`(`)
		for ind, pair := range self.record {
			if ind > 0 {
				bui.Str(`,`)
			}
			bui.Arg(pair.Val)
		}
		bui.Str(`)`)
	}

	if self.conflict != nil {
		if err := self.appendConflict(&bui, while); err != nil {
			return Compiled{}, err
		}
	}

	self.appendReturning(&bui)
	return bui.Compiled(), nil
}

// Implement `fmt.Stringer` for debug purposes.
func (self *InsertQuery) String() string {
	out, err := self.Compile()
	if err != nil {
		return fmt.Sprintf(`<%v>`, err)
	}
	return out.Text
}

func (self *InsertQuery) appendConflict(bui *Bui, while string) error {
	spec := self.conflict

	switch spec.Action {
	case ConflictNothing:
		bui.Str(`ON CONFLICT`)
		appendConflictTarget(bui, spec.Fields)
		bui.Str(`DO NOTHING`)
		return nil

	case ConflictUpdate:
		if len(spec.Fields) == 0 {
			return ErrConflictTarget.while(while).becausef(`"do update" requires conflict fields`)
		}

		delta := self.UpdateDelta()
		if len(delta) == 0 {
			return ErrEmptyDelta.while(while).becausef(`every field of the record is excluded from "do update"`)
		}

		bui.Str(`ON CONFLICT`)
		appendConflictTarget(bui, spec.Fields)
		bui.Str(`DO UPDATE SET`)
		appendAssignments(bui, delta)
		return nil

	default:
		return ErrConflictIncomplete.while(while).becausef(
			`conflict clause on %q needs "do nothing" or "do update"`, spec.Fields,
		)
	}
}

/*
Returns the assignments used by "on conflict do update": the record without the
excluded fields. Returns nil when the query has no such clause.
*/
func (self *InsertQuery) UpdateDelta() Delta {
	if self.conflict == nil || self.conflict.Action != ConflictUpdate {
		return nil
	}
	return self.record.Without(exclusionNames(self.conflict.Exclude)...)
}

func appendConflictTarget(bui *Bui, fields []string) {
	if len(fields) > 0 {
		bui.Str(`(`)
		bui.Idents(fields, true)
		bui.Str(`)`)
	}
}

// Legacy exclusion syntax allowed a leading "!" marker, which is ignored.
func exclusionNames(vals []string) []string {
	out := make([]string, len(vals))
	for ind, val := range vals {
		out[ind] = strings.TrimPrefix(val, `!`)
	}
	return out
}

/*
Chooses the action of an "on conflict" clause. Returned by
`InsertQuery.OnConflict`; every method returns the original query for further
chaining.
*/
type ConflictBuilder struct {
	query *InsertQuery
	spec  *ConflictSpec
}

// Resolves conflicts by skipping the row. Adds no arguments.
func (self *ConflictBuilder) DoNothing() *InsertQuery {
	self.spec.Action = ConflictNothing
	self.spec.Exclude = nil
	return self.query
}

/*
Resolves conflicts by updating the existing row with the record's values,
except the excluded fields. The "set" clause uses its own parameters, numbered
after the parameters of the inserted values, and its arguments are appended
after the inserted values. Like any assignment, they are converted to strings.
*/
func (self *ConflictBuilder) DoUpdate(exclude ...string) *InsertQuery {
	self.spec.Action = ConflictUpdate
	self.spec.Exclude = copyStrings(exclude)
	return self.query
}

func validateDelta(delta Delta, while string) error {
	for ind, pair := range delta {
		if pair.Key == `` {
			return ErrInvalidInput.while(while).becausef(`empty field name at index %d`, ind)
		}
		for _, prev := range delta[:ind] {
			if prev.Key == pair.Key {
				return ErrInvalidInput.while(while).becausef(`duplicate field %q`, pair.Key)
			}
		}
	}
	return nil
}
