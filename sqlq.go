package sqlq

import (
	"github.com/mitranim/sqlp"
)

/*
Single key-value entry. `Condition` and `Delta` are built from pairs rather
than maps, because the order of keys determines the order of columns and
placeholders in the resulting SQL.
*/
type Pair struct {
	Key string
	Val any
}

/*
Ordered list of predicates joined by "and". Each value is classified by
`InferOp`, which allows operator prefixes and wildcard patterns. Multiple
conditions passed together are joined by "or".
*/
type Condition []Pair

// Appends a pair, returning the resulting condition.
func (self Condition) With(key string, val any) Condition {
	return append(self, Pair{key, val})
}

// True if there are no pairs.
func (self Condition) IsEmpty() bool { return len(self) == 0 }

// Returns a copy that shares no storage with the original.
func (self Condition) Clone() Condition {
	if self == nil {
		return nil
	}
	out := make(Condition, len(self))
	copy(out, self)
	return out
}

/*
Ordered list of column assignments. Used as a record for "insert" and as a
change set for "update".
*/
type Delta []Pair

// Appends a pair, returning the resulting delta.
func (self Delta) With(key string, val any) Delta {
	return append(self, Pair{key, val})
}

// Returns the keys in order.
func (self Delta) Keys() []string {
	out := make([]string, len(self))
	for ind, val := range self {
		out[ind] = val.Key
	}
	return out
}

// Returns the values in order.
func (self Delta) Vals() []any {
	out := make([]any, len(self))
	for ind, val := range self {
		out[ind] = val.Val
	}
	return out
}

// Returns a new delta without the given keys, preserving order.
func (self Delta) Without(keys ...string) Delta {
	out := make(Delta, 0, len(self))
	for _, val := range self {
		if !hasString(keys, val.Key) {
			out = append(out, val)
		}
	}
	return out
}

// Kind of a statement. See `Statement`.
type Kind byte

const (
	KindSelect Kind = iota + 1
	KindInsert
	KindUpdate
	KindDelete
)

// Implement `fmt.Stringer` for debug purposes.
func (self Kind) String() string {
	switch self {
	case KindSelect:
		return `select`
	case KindInsert:
		return `insert`
	case KindUpdate:
		return `update`
	case KindDelete:
		return `delete`
	default:
		return ``
	}
}

/*
Implemented by every query type in this package: `*SelectQuery`,
`*InsertQuery`, `*UpdateQuery`, `*DeleteQuery`. `Compile` must be pure: it
performs no I/O and may be called any amount of times.
*/
type Statement interface {
	Kind() Kind
	Compile() (Compiled, error)
}

// Output of compilation: SQL text and the arguments for its ordinal parameters.
type Compiled struct {
	Text string
	Args []any
}

// Implement `fmt.Stringer` for debug purposes.
func (self Compiled) String() string { return self.Text }

// Shortcut for `self.Text, self.Args`. Go database drivers tend to require
// `string, []any` as inputs for queries.
func (self Compiled) Reify() (string, []any) { return self.Text, self.Args }

/*
Verifies that ordinal parameters in the text are numbered from 1, strictly
increasing and contiguous, and that their count matches the args. Quoted
identifiers and string literals are skipped by the tokenizer.
*/
func (self Compiled) Validate() error {
	tokenizer := sqlp.Tokenizer{Source: self.Text}
	var count int

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		ord, ok := node.(sqlp.NodeOrdinalParam)
		if !ok {
			continue
		}

		count++
		if int(ord) != count {
			return ErrPlaceholder.while(`validating compiled statement`).becausef(
				`expected parameter $%d, found $%d`, count, int(ord),
			)
		}
	}

	if count != len(self.Args) {
		return ErrPlaceholder.while(`validating compiled statement`).becausef(
			`found %d parameters for %d arguments`, count, len(self.Args),
		)
	}
	return nil
}

// Shortcut for compiling an arbitrary statement. Nil is invalid input.
func Compile(stmt Statement) (Compiled, error) {
	if stmt == nil {
		return Compiled{}, ErrInvalidInput.while(`compiling statement`).becausef(`nil statement`)
	}
	return stmt.Compile()
}

func hasString(vals []string, val string) bool {
	for _, elem := range vals {
		if elem == val {
			return true
		}
	}
	return false
}

func copyStrings(val []string) []string {
	if val == nil {
		return nil
	}
	out := make([]string, len(val))
	copy(out, val)
	return out
}
