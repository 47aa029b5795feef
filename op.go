package sqlq

import (
	"strings"
)

// Comparison operator used in a condition predicate.
type Op string

const (
	OpEq   Op = `=`
	OpGte  Op = `>=`
	OpLte  Op = `<=`
	OpNeq  Op = `<>`
	OpGt   Op = `>`
	OpLt   Op = `<`
	OpLike Op = `LIKE`
)

// Two-character operators must precede their one-character prefixes.
var opPrefixes = [...]Op{OpGte, OpLte, OpNeq, OpGt, OpLt}

var wildcardReplacer = strings.NewReplacer(`*`, `%`, `?`, `_`)

/*
Classifies a condition value into an operator and a literal:

	">=5"   -> `>=`, "5"
	"<>x"   -> `<>`, "x"
	"*abc"  -> `LIKE`, "%abc"
	"a?c"   -> `LIKE`, "a_c"
	"plain" -> `=`, "plain"
	5       -> `=`, 5

Only strings are inspected; other values always use equality and are returned
unchanged. Existing "%" and "_" characters in a pattern are not escaped, so
they also act as wildcards.
*/
func InferOp(val any) (Op, any) {
	str, ok := val.(string)
	if !ok {
		return OpEq, val
	}

	for _, op := range opPrefixes {
		if strings.HasPrefix(str, string(op)) {
			return op, str[len(op):]
		}
	}

	if strings.ContainsAny(str, `*?`) {
		return OpLike, wildcardReplacer.Replace(str)
	}
	return OpEq, val
}
