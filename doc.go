/*
Package sqlexpr renders nested condition trees as SQL boolean expressions and
assembles them, together with other clauses, into complete statements.

Conditions are built from the constructors in the expr package. A condition
compares the ambient identifier with a value, and identifiers are set with
[expr.Scope] or on AND and OR groups:

	cond := expr.And(
		expr.Scope(value.Ident("person", "age"), expr.Gte(18)),
		expr.OrOn(value.Ident("person", "team"), expr.Bare("red"), expr.In([]string{"blue", "green"})),
	)

renders on PostgreSQL as

	"person"."age" >= 18 AND ("person"."team" = 'red' OR "person"."team" IN ('blue', 'green'))

Parentheses are only written where the precedence of AND over OR requires
them. A plain value compares for equality with the ambient identifier.

# Dialects

Values and identifiers are quoted by a [value.Formatter]. The value package
provides formatters for PostgreSQL, SQLite and MySQL. Literals, created with
[value.Literal], are inserted as is and must be trusted.

# Statements

A [Builder] renders conditions with [Builder.Where] and SELECT statements with
[Builder.Select]. Clauses are always written in their SQL order, whatever the
order in which they are supplied:

	b := sqlexpr.MustNew(value.SQLite())
	sql, err := b.Select(statement.SelectQuery{
		Targets: []any{"name"},
		Clauses: statement.Clauses{
			"limit": 10,
			"where": cond,
			"from":  "person",
		},
	})

Other statements are described with a [statement.Spec] and built by a
[statement.Assembler]. The Compiler of a Builder is a [statement.Resolver] and
can render the conditions of those statements.
*/
package sqlexpr
