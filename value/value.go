// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package value turns Go values into SQL text. It owns every dialect specific
detail: how string constants are quoted and escaped, how identifiers are
quoted, and how sequences are written.

Two wrapper types let the caller say how a value should be treated:

	value.Ident("users", "email") // "users"."email"
	value.Literal("now()")        // now()

Identifiers are quoted by the Formatter. Literals are inserted verbatim and
must be trusted by the caller.
*/
package value

import "strings"

// Identifier is a reference to a table, column or other named object. It is an
// ordered sequence of name segments, e.g. table and column. Identifiers are not
// escaped until they are formatted.
type Identifier struct {
	Segments []string
}

// Ident returns an Identifier made of the given segments.
func Ident(segments ...string) Identifier {
	return Identifier{Segments: segments}
}

// IsZero reports whether the identifier has no segments.
func (id Identifier) IsZero() bool {
	return len(id.Segments) == 0
}

// String returns the unquoted dotted form of the identifier, for debugging.
func (id Identifier) String() string {
	return strings.Join(id.Segments, ".")
}

// Literal is raw SQL text that will be inserted directly into the generated
// SQL. It is NOT escaped, so make sure that all literal values are safe.
type Literal string

// Formatter formats values into SQL text for a particular dialect.
type Formatter interface {
	// Format returns the SQL text for v. Scalars, times, identifiers,
	// literals and sequences of those are supported.
	Format(v any) (string, error)
	// QuoteIdentifier returns the quoted form of id.
	QuoteIdentifier(id Identifier) string
	// IsFormattable reports whether Format accepts v.
	IsFormattable(v any) bool
}
