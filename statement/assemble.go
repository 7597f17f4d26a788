// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package statement assembles SQL statements from a prefix and a set of named
clauses. A Spec lists the clauses a statement accepts, the order in which they
must appear in the SQL and which of them are required. Each clause is rendered
by a Resolver.

Clauses are always written in the order of the Spec, independent of the order
in which the caller supplies them, so that a query such as

	SELECT "a" LIMIT 5 FROM "t";

can never be generated.
*/
package statement

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

// terminator ends every statement.
const terminator = ";"

// Spec describes the clauses of a statement.
type Spec struct {
	// Required lists the clauses that must be supplied. Every required clause
	// must also be in Order.
	Required []string
	// Order lists every clause the statement accepts, in the order they are
	// written.
	Order []string
	// Resolvers holds the resolver of each clause in Order.
	Resolvers map[string]Resolver
}

// Clauses maps clause names to their argument. An argument supplied as a
// slice is spread over the parameters of a resolver taking more than one.
type Clauses map[string]any

// Assembler builds statements following a Spec. It is safe for concurrent
// use.
type Assembler struct {
	required  []string
	order     []string
	position  map[string]int
	resolvers map[string]Resolver
}

// NewAssembler validates spec and returns an Assembler for it.
func NewAssembler(spec Spec) (*Assembler, error) {
	a := &Assembler{
		required:  append([]string(nil), spec.Required...),
		order:     append([]string(nil), spec.Order...),
		position:  make(map[string]int, len(spec.Order)),
		resolvers: make(map[string]Resolver, len(spec.Order)),
	}
	for i, name := range spec.Order {
		if _, ok := a.position[name]; ok {
			return nil, errors.Errorf("clause %s ordered more than once", name)
		}
		r, ok := spec.Resolvers[name]
		if !ok || r == nil {
			return nil, errors.Errorf("no resolver for clause %s", name)
		}
		a.position[name] = i
		a.resolvers[name] = r
	}
	for name := range spec.Resolvers {
		if _, ok := a.position[name]; !ok {
			return nil, errors.Errorf("resolver for clause %s not in order", name)
		}
	}
	seen := make(map[string]bool, len(spec.Required))
	for _, name := range spec.Required {
		if _, ok := a.position[name]; !ok {
			return nil, errors.Errorf("required clause %s not in order", name)
		}
		if seen[name] {
			return nil, errors.Errorf("clause %s required more than once", name)
		}
		seen[name] = true
	}
	return a, nil
}

// Build returns the statement made of the prefix followed by the supplied
// clauses in order. Empty parts are skipped, the rest are joined with single
// spaces and the statement is terminated with a semicolon.
//
// All required clauses must be supplied and every supplied clause must be
// known, otherwise a MissingRequiredClauseError or UnknownClauseError is
// returned. Any error aborts the build.
func (a *Assembler) Build(prefix []string, clauses Clauses) (sql string, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "cannot build statement")
		}
	}()

	var missing []string
	for _, name := range a.required {
		if _, ok := clauses[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingRequiredClauseError{Names: missing}
	}

	var unknown []string
	for name := range clauses {
		if _, ok := a.position[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", &UnknownClauseError{Names: unknown}
	}

	parts := append([]string(nil), prefix...)
	for _, name := range a.order {
		arg, ok := clauses[name]
		if !ok {
			continue
		}
		r := a.resolvers[name]
		args, err := adaptArgs(name, r.Params(), arg)
		if err != nil {
			return "", err
		}
		clauseSQL, err := r.Resolve(args)
		if err != nil {
			return "", errors.Wrapf(err, "clause %s", name)
		}
		parts = append(parts, clauseSQL)
	}
	return joinParts(parts, " ") + terminator, nil
}

// adaptArgs turns the argument supplied for a clause into the arguments of
// its resolver. A resolver with one parameter receives arg as is. For more
// parameters arg must be a slice or array of matching length, which is spread.
func adaptArgs(name string, params int, arg any) ([]any, error) {
	if params == 1 {
		return []any{arg}, nil
	}
	if params == 0 && arg == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &ClauseArgumentError{Name: name, Params: params, Arg: arg}
	}
	if rv.Len() != params {
		return nil, &ClauseArgumentError{Name: name, Params: params, Arg: arg}
	}
	args := make([]any, rv.Len())
	for i := range args {
		args[i] = rv.Index(i).Interface()
	}
	return args, nil
}
