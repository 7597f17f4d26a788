// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

// Compiler renders condition trees into SQL boolean expressions.
//
// The tree is walked in input order. Each element of an AND or OR group is
// rendered with the ambient identifier of the group, unless the element is
// Scoped. Bare values compare for equality with the ambient identifier.
// Nested groups are parenthesized only where the precedence of the enclosing
// operator requires it.
//
// A Compiler holds no mutable state and is safe for concurrent use.
type Compiler struct {
	reg *operator.Registry
	cmp *ComparisonBuilder
}

// NewCompiler returns a Compiler using the operators in reg and formatting
// values with f.
func NewCompiler(reg *operator.Registry, f value.Formatter) *Compiler {
	return &Compiler{reg: reg, cmp: NewComparisonBuilder(reg, f)}
}

// rendered is the SQL for one part of a group. combinator is the operator
// joining the top level of sql, or zero if sql is a single comparison or a
// negation.
type rendered struct {
	sql        string
	combinator operator.Key
}

// Build renders n with no ambient identifier.
func (c *Compiler) Build(n Node) (sql string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot build expression: %w", err)
		}
	}()

	r, err := c.render(n, nil)
	if err != nil {
		return "", err
	}
	return r.sql, nil
}

// BuildGroup renders the conditions of g joined by k, which must be And or Or.
func (c *Compiler) BuildGroup(k operator.Key, g Group) (sql string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot build expression: %w", err)
		}
	}()

	if k != operator.And && k != operator.Or {
		return "", &InvalidOperandError{Key: k, Operand: g, Reason: "groups can only be joined by and or or"}
	}
	r, err := c.renderGroup(k, g, nil)
	if err != nil {
		return "", err
	}
	return r.sql, nil
}

// Params returns the number of arguments taken by Resolve.
func (c *Compiler) Params() int {
	return 1
}

// Resolve renders the Node in args[0]. It lets a Compiler be used as a clause
// resolver.
func (c *Compiler) Resolve(args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected 1 condition, got %d", len(args))
	}
	n, ok := args[0].(Node)
	if !ok {
		return "", fmt.Errorf("expected condition, got %T", args[0])
	}
	return c.Build(n)
}

// render renders a single node with the ambient identifier id. id is nil
// when there is no ambient identifier, an identifier without segments counts
// as none.
func (c *Compiler) render(n Node, id *value.Identifier) (rendered, error) {
	switch n := n.(type) {
	case Scoped:
		scoped := n.Identifier
		return c.render(n.Node, &scoped)
	case Value:
		if id == nil || id.IsZero() {
			return rendered{}, &MissingIdentifierError{Key: operator.Eq, Value: n.V}
		}
		sql, err := c.cmp.Build(*id, operator.Eq, n.V)
		return rendered{sql: sql}, err
	case *Op:
		if n == nil {
			return rendered{}, &MalformedConditionError{}
		}
		switch n.key {
		case operator.Not:
			return c.renderNot(n, id)
		case operator.And, operator.Or:
			g, ok := n.operand.(Group)
			if !ok {
				return rendered{}, &InvalidOperandError{Key: n.key, Operand: n.operand, Reason: "expected a group of conditions"}
			}
			return c.renderGroup(n.key, g, id)
		}
		if id == nil || id.IsZero() {
			return rendered{}, &MissingIdentifierError{Key: n.key, Value: n.operand}
		}
		sql, err := c.cmp.Build(*id, n.key, n.operand)
		return rendered{sql: sql}, err
	case nil:
		return rendered{}, &MalformedConditionError{}
	}
	return rendered{}, fmt.Errorf("unsupported condition type %T", n)
}

// renderNot prefixes the rendered child of n with NOT.
func (c *Compiler) renderNot(n *Op, id *value.Identifier) (rendered, error) {
	def, ok := c.reg.Lookup(operator.Not)
	if !ok {
		return rendered{}, fmt.Errorf("operator %s not registered", operator.Not)
	}
	child, ok := n.operand.(Node)
	if !ok {
		return rendered{}, &InvalidOperandError{Key: operator.Not, Operand: n.operand, Reason: "expected a condition"}
	}
	r, err := c.render(child, id)
	if err != nil {
		return rendered{}, err
	}
	// NOT binds tighter than AND and OR.
	if r.combinator != 0 {
		r.sql = "(" + r.sql + ")"
	}
	return rendered{sql: def.Keyword + " " + r.sql}, nil
}

// renderGroup renders the conditions of g joined by k. The identifier of g,
// if set, replaces id for the conditions of g.
func (c *Compiler) renderGroup(k operator.Key, g Group, id *value.Identifier) (rendered, error) {
	def, ok := c.reg.Lookup(k)
	if !ok {
		return rendered{}, fmt.Errorf("operator %s not registered", k)
	}
	if len(g.Conditions) == 0 {
		return rendered{}, &EmptyGroupError{Key: k}
	}
	if g.Identifier != nil {
		id = g.Identifier
	}

	parts := make([]rendered, 0, len(g.Conditions))
	for _, n := range g.Conditions {
		r, err := c.render(n, id)
		if err != nil {
			return rendered{}, err
		}
		parts = append(parts, r)
	}

	// A group with a single part is transparent, its part keeps its own
	// combinator so that the enclosing group can parenthesize it.
	if len(parts) == 1 {
		return parts[0], nil
	}

	var sb strings.Builder
	joiner := " " + def.Keyword + " "
	for i, p := range parts {
		if i != 0 {
			sb.WriteString(joiner)
		}
		if p.combinator != 0 && p.combinator != k {
			sb.WriteString("(" + p.sql + ")")
		} else {
			sb.WriteString(p.sql)
		}
	}
	return rendered{sql: sb.String(), combinator: k}, nil
}
