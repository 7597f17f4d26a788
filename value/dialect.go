// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package value

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// timeLayout is ISO 8601 with millisecond precision in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Quoting configures how a Dialect quotes constants and identifiers.
type Quoting struct {
	// ConstantQuote delimits string constants, e.g. "'".
	ConstantQuote string
	// ConstantEscape replaces ConstantQuote inside a string constant, e.g. "''".
	ConstantEscape string
	// BackslashEscapes is set for dialects where a backslash inside a string
	// constant starts an escape sequence and must itself be escaped.
	BackslashEscapes bool
	// IdentifierQuote delimits each identifier segment, e.g. `"`.
	IdentifierQuote string
	// IdentifierEscape replaces IdentifierQuote inside a segment, e.g. `""`.
	IdentifierEscape string
	// IdentifierSeparator joins the quoted segments, e.g. ".".
	IdentifierSeparator string
	// QuoteSegments, if set, replaces the quoting described by the
	// Identifier fields.
	QuoteSegments func(segments []string) string
}

// Dialect is a Formatter configured by a Quoting.
type Dialect struct {
	name         string
	q            Quoting
	constEscaper *strings.Replacer
	identEscaper *strings.Replacer
}

var _ Formatter = (*Dialect)(nil)

// NewDialect returns a Dialect with the given name and quoting rules.
func NewDialect(name string, q Quoting) (*Dialect, error) {
	if q.ConstantQuote == "" {
		return nil, fmt.Errorf("dialect %q: constant quote not set", name)
	}
	if q.QuoteSegments == nil && q.IdentifierQuote == "" {
		return nil, fmt.Errorf("dialect %q: identifier quote not set", name)
	}
	var constPairs []string
	if q.BackslashEscapes {
		constPairs = append(constPairs, `\`, `\\`)
	}
	constPairs = append(constPairs, q.ConstantQuote, q.ConstantEscape)
	d := &Dialect{
		name:         name,
		q:            q,
		constEscaper: strings.NewReplacer(constPairs...),
	}
	if q.IdentifierQuote != "" {
		d.identEscaper = strings.NewReplacer(q.IdentifierQuote, q.IdentifierEscape)
	}
	return d, nil
}

func mustDialect(name string, q Quoting) *Dialect {
	d, err := NewDialect(name, q)
	if err != nil {
		panic("internal error: " + err.Error())
	}
	return d
}

// Postgres returns a Formatter for PostgreSQL.
func Postgres() *Dialect {
	return mustDialect("postgres", Quoting{
		ConstantQuote:  "'",
		ConstantEscape: "''",
		QuoteSegments: func(segments []string) string {
			return pgx.Identifier(segments).Sanitize()
		},
	})
}

// SQLite returns a Formatter for SQLite.
func SQLite() *Dialect {
	return mustDialect("sqlite", Quoting{
		ConstantQuote:       "'",
		ConstantEscape:      "''",
		IdentifierQuote:     `"`,
		IdentifierEscape:    `""`,
		IdentifierSeparator: ".",
	})
}

// MySQL returns a Formatter for MySQL.
func MySQL() *Dialect {
	return mustDialect("mysql", Quoting{
		ConstantQuote:       "'",
		ConstantEscape:      `\'`,
		BackslashEscapes:    true,
		IdentifierQuote:     "`",
		IdentifierEscape:    "``",
		IdentifierSeparator: ".",
	})
}

// ByName returns a new Dialect for one of "postgres", "sqlite" or "mysql".
func ByName(name string) (*Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return Postgres(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	case "mysql":
		return MySQL(), nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// Name returns the name of the dialect.
func (d *Dialect) Name() string {
	return d.name
}

// QuoteIdentifier quotes each segment of id and joins them with the
// dialect's separator.
func (d *Dialect) QuoteIdentifier(id Identifier) string {
	if d.q.QuoteSegments != nil {
		return d.q.QuoteSegments(id.Segments)
	}
	quoted := make([]string, len(id.Segments))
	for i, s := range id.Segments {
		quoted[i] = d.q.IdentifierQuote + d.identEscaper.Replace(s) + d.q.IdentifierQuote
	}
	return strings.Join(quoted, d.q.IdentifierSeparator)
}

// quoteConstant escapes str and wraps it in the constant quote.
func (d *Dialect) quoteConstant(str string) string {
	return d.q.ConstantQuote + d.constEscaper.Replace(str) + d.q.ConstantQuote
}

// IsFormattable reports whether Format accepts v.
func (d *Dialect) IsFormattable(v any) bool {
	_, err := d.Format(v)
	return err == nil
}

// Format returns the SQL text for v.
func (d *Dialect) Format(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case Literal:
		return string(v), nil
	case Identifier:
		if v.IsZero() {
			return "", fmt.Errorf("empty identifier")
		}
		return d.QuoteIdentifier(v), nil
	case *Identifier:
		if v == nil {
			return "", fmt.Errorf("nil identifier")
		}
		return d.Format(*v)
	case time.Time:
		return d.quoteConstant(v.UTC().Format(timeLayout)), nil
	case uuid.UUID:
		return d.quoteConstant(v.String()), nil
	case []byte:
		return "", fmt.Errorf("cannot format %T", v)
	}
	return d.formatReflect(reflect.ValueOf(v))
}

func (d *Dialect) formatReflect(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL", nil
		}
		return d.Format(rv.Elem().Interface())
	case reflect.Bool:
		if rv.Bool() {
			return "TRUE", nil
		}
		return "FALSE", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("cannot format non-finite number %v", f)
		}
		return strconv.FormatFloat(f, 'g', -1, rv.Type().Bits()), nil
	case reflect.String:
		return d.quoteConstant(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "()", nil
		}
		var b listBuilder
		for i := 0; i < rv.Len(); i++ {
			s, err := d.Format(rv.Index(i).Interface())
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			b.add(s)
		}
		return b.parenthesized(), nil
	case reflect.Invalid:
		return "NULL", nil
	}
	return "", fmt.Errorf("cannot format %s", rv.Type())
}

// listBuilder accumulates a comma separated list of SQL fragments.
type listBuilder struct {
	buf bytes.Buffer
	n   int
}

func (b *listBuilder) add(s string) {
	if b.n != 0 {
		b.buf.WriteString(", ")
	}
	b.buf.WriteString(s)
	b.n++
}

func (b *listBuilder) parenthesized() string {
	return "(" + b.buf.String() + ")"
}
