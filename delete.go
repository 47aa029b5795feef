package sqlq

import (
	"fmt"
)

/*
Starts a "delete" query. Unlike `Update`, zero conditions are allowed and
match every row.

	sqlq.DeleteFrom(`t`).Where(sqlq.Condition{{`id`, 10}}).Returning(`id`)

Compiles to:

	DELETE FROM "t" WHERE "id" = $1 RETURNING "id"
*/
func DeleteFrom(table string) *DeleteQuery {
	return &DeleteQuery{upsert: newUpsert(table)}
}

// Mutable "delete" query. Setters modify the receiver and return it.
type DeleteQuery struct {
	upsert
	where []Condition
}

// Implement `Statement`.
func (self *DeleteQuery) Kind() Kind { return KindDelete }

// Appends conditions. Conditions are joined by "or".
func (self *DeleteQuery) Where(conds ...Condition) *DeleteQuery {
	self.where = append(self.where, conds...)
	return self
}

// Replaces the "returning" fields. Empty input clears them.
func (self *DeleteQuery) Returning(fields ...string) *DeleteQuery {
	self.setReturning(fields)
	return self
}

// Implement `Statement`.
func (self *DeleteQuery) Compile() (Compiled, error) {
	const while = `compiling delete`

	if err := self.validate(while); err != nil {
		return Compiled{}, err
	}
	if err := validateConditions(self.where, while); err != nil {
		return Compiled{}, err
	}

	bui := MakeBui(64, countPredicates(self.where))
	bui.Str(`DELETE FROM`)
	bui.Ident(self.table, true)

	if countPredicates(self.where) > 0 {
		bui.Str(`WHERE`)
		appendDisjunction(&bui, self.where, true)
	}

	self.appendReturning(&bui)
	return bui.Compiled(), nil
}

// Implement `fmt.Stringer` for debug purposes.
func (self *DeleteQuery) String() string {
	out, err := self.Compile()
	if err != nil {
		return fmt.Sprintf(`<%v>`, err)
	}
	return out.Text
}
