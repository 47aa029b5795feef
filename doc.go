/*
SQL Query: parametrized CRUD statement builder for a single table. Oriented
towards Postgres: values are always passed as ordinal parameters such as "$1",
never interpolated into the SQL text, and identifiers are double-quoted.

Key Features

• Conditions are ordered key-value lists. Keys within one `Condition` are
joined with "and"; multiple conditions are joined with "or".

• Condition values may carry an operator prefix such as ">=5" or "<>x", or a
wildcard pattern such as "jo*n?" which becomes "like 'jo%n_'".

• Fluent configuration: every setter returns the same query, and nothing is
sent to the database until `Execute` is called.

• Compilation is pure and synchronous: `Compile` returns the text and
arguments without any I/O, which makes queries easy to test.

• Select queries can be converted to a transportable `Descriptor`, encoded as
JSON, YAML or MessagePack, and reconstructed elsewhere.

• Structs with "db" tags can be converted to deltas via `DeltaOf`.

• Insert queries support "on conflict do nothing" and "on conflict do update".

Placeholders are numbered from 1 and are contiguous across the entire
statement. For example, the "where" clause of an update statement continues
numbering after its "set" clause.

Executing

The package doesn't talk to databases directly. It requires an `Executor`,
which runs SQL text with positional arguments and returns rows. See the
sibling package "pg" for an implementation based on "database/sql".

Examples

See `Select`, `Insert`, `Update` and `DeleteFrom` for examples.
*/
package sqlq
