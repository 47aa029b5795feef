package sqlq

// Ordering direction used by `appendOrderBy`.
type dir byte

const (
	dirNone dir = iota
	dirAsc
	dirDesc
)

func (self dir) String() string {
	switch self {
	case dirAsc:
		return `ASC`
	case dirDesc:
		return `DESC`
	default:
		return ``
	}
}

/*
Appends an "order by" clause for the given fields. Ascending order is the SQL
default and is not spelled out. Descending order applies to every field:

	ORDER BY "a", "b"
	ORDER BY "a" DESC, "b" DESC

Empty fields produce nothing.
*/
func appendOrderBy(bui *Bui, fields []string, direction dir, quote bool) {
	if len(fields) == 0 {
		return
	}

	bui.Str(`ORDER BY`)
	for ind, field := range fields {
		if ind > 0 {
			bui.Str(`,`)
		}
		bui.Ident(field, quote)
		if direction == dirDesc {
			bui.Str(direction.String())
		}
	}
}
