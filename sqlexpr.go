// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlexpr

import (
	"fmt"

	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/statement"
	"github.com/canonical/sqlexpr/value"
)

// Builder renders conditions and statements for a single dialect. A Builder
// is immutable and can be used concurrently.
type Builder struct {
	f        value.Formatter
	compiler *expr.Compiler
	sel      *statement.Select
}

// New returns a Builder using the standard operators and formatting values
// with f.
func New(f value.Formatter) (*Builder, error) {
	return NewWithRegistry(operator.NewStandardRegistry(), f)
}

// MustNew is the same as [New] except that it panics on error.
func MustNew(f value.Formatter) *Builder {
	b, err := New(f)
	if err != nil {
		panic(err)
	}
	return b
}

// NewWithRegistry returns a Builder using the operators in reg and
// formatting values with f.
func NewWithRegistry(reg *operator.Registry, f value.Formatter) (*Builder, error) {
	if reg == nil {
		return nil, fmt.Errorf("no operator registry")
	}
	if f == nil {
		return nil, fmt.Errorf("no formatter")
	}
	compiler := expr.NewCompiler(reg, f)
	sel, err := statement.NewSelect(f, compiler)
	if err != nil {
		return nil, err
	}
	return &Builder{f: f, compiler: compiler, sel: sel}, nil
}

// Where returns the SQL boolean expression for n.
func (b *Builder) Where(n expr.Node) (string, error) {
	return b.compiler.Build(n)
}

// Select returns the SELECT statement described by q.
func (b *Builder) Select(q statement.SelectQuery) (string, error) {
	return b.sel.Build(q)
}

// Compiler returns the condition compiler of the Builder. It can be used as
// the resolver of a clause in a [statement.Spec].
func (b *Builder) Compiler() *expr.Compiler {
	return b.compiler
}

// Formatter returns the formatter of the Builder.
func (b *Builder) Formatter() value.Formatter {
	return b.f
}
