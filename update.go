package sqlq

import (
	"fmt"
)

/*
Starts an "update" query. Requires a non-empty delta and at least one
condition with at least one pair; both are checked by `Compile`, before
anything reaches the database. Parameters of the "where" clause continue
numbering after the "set" clause:

	sqlq.Update(`t`, sqlq.Delta{{`a`, 1}}).Where(sqlq.Condition{{`id`, 10}})

Compiles to:

	UPDATE "t" SET "a" = $1 WHERE "id" = $2

with arguments `["1", 10]`. Assigned values are converted to strings, while
condition values are passed as-is.
*/
func Update(table string, delta Delta) *UpdateQuery {
	return &UpdateQuery{upsert: newUpsert(table), delta: delta}
}

/*
Mutable "update" query. Setters modify the receiver and return it. Not safe for
concurrent mutation.
*/
type UpdateQuery struct {
	upsert
	delta Delta
	where []Condition
}

// Implement `Statement`.
func (self *UpdateQuery) Kind() Kind { return KindUpdate }

// Appends conditions. Conditions are joined by "or".
func (self *UpdateQuery) Where(conds ...Condition) *UpdateQuery {
	self.where = append(self.where, conds...)
	return self
}

// Replaces the "returning" fields. Empty input clears them.
func (self *UpdateQuery) Returning(fields ...string) *UpdateQuery {
	self.setReturning(fields)
	return self
}

// Implement `Statement`.
func (self *UpdateQuery) Compile() (Compiled, error) {
	const while = `compiling update`

	if err := self.validate(while); err != nil {
		return Compiled{}, err
	}
	if len(self.delta) == 0 {
		return Compiled{}, ErrEmptyDelta.while(while)
	}
	if err := validateDelta(self.delta, while); err != nil {
		return Compiled{}, err
	}
	if countPredicates(self.where) == 0 {
		return Compiled{}, ErrEmptyWhere.while(while).becausef(
			`refusing to update every row of %q`, self.table,
		)
	}
	if err := validateConditions(self.where, while); err != nil {
		return Compiled{}, err
	}

	bui := MakeBui(64, len(self.delta)+countPredicates(self.where))
	bui.Str(`UPDATE`)
	bui.Ident(self.table, true)
	bui.Str(`SET`)
	appendAssignments(&bui, self.delta)
	bui.Str(`WHERE`)
	appendDisjunction(&bui, self.where, true)
	self.appendReturning(&bui)
	return bui.Compiled(), nil
}

// Implement `fmt.Stringer` for debug purposes.
func (self *UpdateQuery) String() string {
	out, err := self.Compile()
	if err != nil {
		return fmt.Sprintf(`<%v>`, err)
	}
	return out.Text
}
