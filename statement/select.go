// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package statement

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/canonical/sqlexpr/value"
)

// Direction is the sort direction of an ORDER BY term.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order is a single ORDER BY term. An empty Direction leaves the sort
// direction to the database.
type Order struct {
	// Column is a column name or a value.Identifier.
	Column    any
	Direction Direction
}

// SelectQuery holds the parts of a SELECT statement.
type SelectQuery struct {
	// Targets are the selected expressions. Strings are column names, other
	// values such as value.Literal are written by the formatter.
	Targets  []any
	Distinct bool
	// Clauses holds the arguments of the from, where, groupBy, orderBy, limit
	// and offset clauses. from is required.
	Clauses Clauses
}

// selectClauses lists the clauses of a SELECT statement in order.
var selectClauses = []string{"from", "where", "groupBy", "orderBy", "limit", "offset"}

// Select builds SELECT statements.
type Select struct {
	f   value.Formatter
	asm *Assembler
}

// NewSelect returns a Select writing values with f. The where clause is
// rendered by where, typically an *expr.Compiler. If where is nil the
// statement has no where clause.
func NewSelect(f value.Formatter, where Resolver) (*Select, error) {
	s := &Select{f: f}
	resolvers := map[string]Resolver{
		"from":    Keyword("FROM", MustFunc(s.from)),
		"groupBy": Keyword("GROUP BY", MustFunc(s.groupBy)),
		"orderBy": Keyword("ORDER BY", MustFunc(s.orderBy)),
		"limit":   Keyword("LIMIT", MustFunc(s.count)),
		"offset":  Keyword("OFFSET", MustFunc(s.count)),
	}
	var order []string
	for _, name := range selectClauses {
		if name == "where" {
			if where == nil {
				continue
			}
			resolvers[name] = Keyword("WHERE", where)
		}
		order = append(order, name)
	}
	asm, err := NewAssembler(Spec{
		Required:  []string{"from"},
		Order:     order,
		Resolvers: resolvers,
	})
	if err != nil {
		return nil, err
	}
	s.asm = asm
	return s, nil
}

// Build returns the SELECT statement described by q.
func (s *Select) Build(q SelectQuery) (string, error) {
	targets, err := s.targets(q.Targets)
	if err != nil {
		return "", errors.Wrap(err, "cannot build statement")
	}
	prefix := []string{"SELECT", "", targets}
	if q.Distinct {
		prefix[1] = "DISTINCT"
	}
	return s.asm.Build(prefix, q.Clauses)
}

func (s *Select) targets(targets []any) (string, error) {
	if len(targets) == 0 {
		return "", errors.New("expected one or more targets")
	}
	out := make([]string, len(targets))
	for i, t := range targets {
		switch t := t.(type) {
		case string:
			if t == "*" {
				out[i] = t
				continue
			}
			if t == "" {
				return "", errors.Errorf("target %d: empty column name", i)
			}
			out[i] = s.f.QuoteIdentifier(value.Ident(t))
		default:
			sql, err := s.f.Format(t)
			if err != nil {
				return "", errors.Wrapf(err, "target %d", i)
			}
			out[i] = sql
		}
	}
	return strings.Join(out, ", "), nil
}

// column returns the SQL for a column reference.
func (s *Select) column(col any) (string, error) {
	switch col := col.(type) {
	case string:
		if col == "" {
			return "", errors.New("empty column name")
		}
		return s.f.QuoteIdentifier(value.Ident(col)), nil
	case value.Identifier, value.Literal:
		return s.f.Format(col)
	}
	return "", errors.Errorf("expected column, got %T", col)
}

// from resolves a table name, an identifier or a literal such as a subquery.
func (s *Select) from(table any) (string, error) {
	return s.column(table)
}

func (s *Select) groupBy(columns any) (string, error) {
	var out []string
	err := eachTerm(columns, func(col any) error {
		sql, err := s.column(col)
		if err != nil {
			return err
		}
		out = append(out, sql)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(out, ", "), nil
}

func (s *Select) orderBy(terms any) (string, error) {
	var out []string
	err := eachTerm(terms, func(term any) error {
		sql, err := s.orderTerm(term)
		if err != nil {
			return err
		}
		out = append(out, sql)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(out, ", "), nil
}

func (s *Select) orderTerm(term any) (string, error) {
	o, ok := term.(Order)
	if !ok {
		return s.column(term)
	}
	sql, err := s.column(o.Column)
	if err != nil {
		return "", err
	}
	switch o.Direction {
	case "":
		return sql, nil
	case Asc, Desc:
		return sql + " " + string(o.Direction), nil
	}
	return "", errors.Errorf("invalid direction %q", o.Direction)
}

// count resolves the argument of LIMIT and OFFSET.
func (s *Select) count(n int) (string, error) {
	if n < 0 {
		return "", errors.Errorf("expected non-negative count, got %d", n)
	}
	return strconv.Itoa(n), nil
}

// eachTerm calls fn for terms, or for each of its elements if it is a slice
// or an array.
func eachTerm(terms any, fn func(any) error) error {
	rv := reflect.ValueOf(terms)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fn(terms)
	}
	if rv.Len() == 0 {
		return errors.New("expected one or more columns")
	}
	for i := 0; i < rv.Len(); i++ {
		if err := fn(rv.Index(i).Interface()); err != nil {
			return errors.Wrapf(err, "term %d", i)
		}
	}
	return nil
}
