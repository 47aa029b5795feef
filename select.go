package sqlq

import (
	"fmt"
)

/*
Query options. `Order` and `Desc` are mutually exclusive: setting one via
`SelectQuery` clears the other. `Returning` is used only by insert, update and
delete statements.
*/
type Options struct {
	Order     []string `json:"order,omitempty"     yaml:"order,omitempty"     msgpack:"order,omitempty"`
	Desc      []string `json:"desc,omitempty"      yaml:"desc,omitempty"      msgpack:"desc,omitempty"`
	Limit     *int64   `json:"limit,omitempty"     yaml:"limit,omitempty"     msgpack:"limit,omitempty"`
	Offset    *int64   `json:"offset,omitempty"    yaml:"offset,omitempty"    msgpack:"offset,omitempty"`
	Returning []string `json:"returning,omitempty" yaml:"returning,omitempty" msgpack:"returning,omitempty"`
}

// Returns a deep copy.
func (self Options) Clone() Options {
	return Options{
		Order:     copyStrings(self.Order),
		Desc:      copyStrings(self.Desc),
		Limit:     copyInt64(self.Limit),
		Offset:    copyInt64(self.Offset),
		Returning: copyStrings(self.Returning),
	}
}

/*
Starts a "select" query. Empty fields select "*". Configure the query via
chained setters, then call `Compile` or `Execute`:

	rows, err := sqlq.Select(`users`, `id`, `name`).
		Where(sqlq.Condition{{`role`, `admin`}}, sqlq.Condition{{`karma`, `>=100`}}).
		Desc(`karma`).
		Limit(10).
		Execute(ctx, exec)

Compiles to:

	SELECT "id", "name" FROM "users" WHERE "role" = $1 OR "karma" >= $2 ORDER BY "karma" DESC LIMIT 10
*/
func Select(table string, fields ...string) *SelectQuery {
	return &SelectQuery{table: table, fields: copyStrings(fields)}
}

/*
Mutable "select" query. Setters modify the receiver and return it. Not safe for
concurrent mutation. Configuration should not be modified after the first
`Execute`, although nothing enforces this.
*/
type SelectQuery struct {
	table    string
	fields   []string
	where    []Condition
	opts     Options
	unquoted bool
}

// Implement `Statement`.
func (self *SelectQuery) Kind() Kind { return KindSelect }

// Appends conditions. Conditions are joined by "or".
func (self *SelectQuery) Where(conds ...Condition) *SelectQuery {
	self.where = append(self.where, conds...)
	return self
}

// Sets ascending order, clearing any descending order.
func (self *SelectQuery) Order(fields ...string) *SelectQuery {
	self.opts.Order = copyStrings(fields)
	self.opts.Desc = nil
	return self
}

// Sets descending order, clearing any ascending order.
func (self *SelectQuery) Desc(fields ...string) *SelectQuery {
	self.opts.Desc = copyStrings(fields)
	self.opts.Order = nil
	return self
}

// Sets "limit".
func (self *SelectQuery) Limit(val int64) *SelectQuery {
	self.opts.Limit = &val
	return self
}

// Sets "offset".
func (self *SelectQuery) Offset(val int64) *SelectQuery {
	self.opts.Offset = &val
	return self
}

/*
Disables identifier quoting for the table, fields and conditions. Meant only
for querying system catalogs with schema-qualified names such as
"pg_catalog.pg_tables", which would be misinterpreted if quoted as a whole.
*/
func (self *SelectQuery) Unquoted() *SelectQuery {
	self.unquoted = true
	return self
}

// Returns a copy of the current options.
func (self *SelectQuery) Options() Options { return self.opts.Clone() }

// Implement `Statement`.
func (self *SelectQuery) Compile() (Compiled, error) {
	const while = `compiling select`

	if self.table == `` {
		return Compiled{}, ErrInvalidInput.while(while).becausef(`missing table name`)
	}
	if err := validateConditions(self.where, while); err != nil {
		return Compiled{}, err
	}
	if err := validateLimits(self.opts, while); err != nil {
		return Compiled{}, err
	}

	quote := !self.unquoted
	bui := MakeBui(64, countPredicates(self.where))

	bui.Str(`SELECT`)
	if len(self.fields) == 0 {
		bui.Str(`*`)
	} else {
		bui.Idents(self.fields, quote)
	}
	bui.Str(`FROM`)
	bui.Ident(self.table, quote)

	if countPredicates(self.where) > 0 {
		bui.Str(`WHERE`)
		appendDisjunction(&bui, self.where, quote)
	}

	if len(self.opts.Desc) > 0 {
		appendOrderBy(&bui, self.opts.Desc, dirDesc, quote)
	} else {
		appendOrderBy(&bui, self.opts.Order, dirAsc, quote)
	}

	if self.opts.Limit != nil {
		bui.Str(`LIMIT`)
		bui.Int(*self.opts.Limit)
	}
	if self.opts.Offset != nil {
		bui.Str(`OFFSET`)
		bui.Int(*self.opts.Offset)
	}

	return bui.Compiled(), nil
}

// Implement `fmt.Stringer` for debug purposes.
func (self *SelectQuery) String() string {
	out, err := self.Compile()
	if err != nil {
		return fmt.Sprintf(`<%v>`, err)
	}
	return out.Text
}

func validateLimits(opts Options, while string) error {
	if opts.Limit != nil && *opts.Limit < 0 {
		return ErrInvalidInput.while(while).becausef(`negative limit %d`, *opts.Limit)
	}
	if opts.Offset != nil && *opts.Offset < 0 {
		return ErrInvalidInput.while(while).becausef(`negative offset %d`, *opts.Offset)
	}
	return nil
}

func copyInt64(val *int64) *int64 {
	if val == nil {
		return nil
	}
	out := *val
	return &out
}

func cloneConditions(src []Condition) []Condition {
	if src == nil {
		return nil
	}
	out := make([]Condition, len(src))
	for ind, val := range src {
		out[ind] = val.Clone()
	}
	return out
}
