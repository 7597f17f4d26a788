/*
Package expr builds and renders condition trees.

A condition is a Node. Leaves compare the ambient identifier with a value,
either through an operator (Eq, In, Like, ...) or, for a bare Value, through
equality. And, Or and Not combine conditions. Scope and the identifier of a
Group set the ambient identifier for a subtree:

	expr.OrOn(value.Ident("status"),
		expr.Bare("active"),
		expr.AndOn(value.Ident("trial_end"), expr.Gt(start), expr.Lt(end)),
	)

A Compiler renders a Node as SQL with a Registry of operators and a
value.Formatter. Parentheses are only written around a group nested in a
group of a different combinator, and around a group under NOT.

Each Op holds exactly one operator. Ops are only built through the
constructors of this package and NewOp, which reject malformed conditions.
*/
package expr
