// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

// Node is a condition in a condition tree. It is one of Value, *Op or Scoped.
type Node interface {
	// String returns a representation of the node for debugging and
	// testing purposes.
	String() string

	// node is a marker method.
	node()
}

// Value is a bare value. It is sugar for equality against the ambient
// identifier.
type Value struct {
	V any
}

// Bare returns v as a Value node.
func Bare(v any) Value {
	return Value{V: v}
}

func (v Value) String() string {
	return fmt.Sprintf("Value[%v]", v.V)
}

// Marker function for Node.
func (Value) node() {}

// Scoped replaces the ambient identifier with Identifier for Node only.
type Scoped struct {
	Identifier value.Identifier
	Node       Node
}

// Scope returns n with its ambient identifier overridden by id.
func Scope(id value.Identifier, n Node) Scoped {
	return Scoped{Identifier: id, Node: n}
}

func (s Scoped) String() string {
	return fmt.Sprintf("Scoped[%s %s]", s.Identifier, s.Node)
}

// Marker function for Node.
func (Scoped) node() {}

// Group is the payload of an AND or OR operator. Identifier, if set, is the
// ambient identifier of every element of Conditions unless the element
// overrides it.
type Group struct {
	Identifier *value.Identifier
	Conditions []Node
}

func (g Group) String() string {
	parts := make([]string, len(g.Conditions))
	for i, n := range g.Conditions {
		parts[i] = n.String()
	}
	if g.Identifier != nil {
		return fmt.Sprintf("Group[%s %s]", g.Identifier, strings.Join(parts, " "))
	}
	return "Group[" + strings.Join(parts, " ") + "]"
}

// Op is a node holding exactly one operator and its operand. The operand is a
// value for comparison operators, a Group for AND and OR, and a Node for NOT.
// An Op can only be created with the constructors in this package so that the
// single operator invariant holds by construction.
type Op struct {
	key     operator.Key
	operand any
}

// Key returns the operator of the node.
func (o *Op) Key() operator.Key {
	return o.key
}

// Operand returns the operand of the node.
func (o *Op) Operand() any {
	return o.operand
}

func (o *Op) String() string {
	switch operand := o.operand.(type) {
	case Node:
		return fmt.Sprintf("Op[%s %s]", o.key, operand)
	case Group:
		return fmt.Sprintf("Op[%s %s]", o.key, operand)
	}
	return fmt.Sprintf("Op[%s %v]", o.key, o.operand)
}

// Marker function for Node.
func (*Op) node() {}

// NewOp builds an Op from a mapping holding exactly one operator. A mapping
// with zero or several operators is rejected with a MalformedConditionError.
//
// The operand of And and Or must be a Group or a []Node, the operand of Not
// must be a Node. Any other operand is kept as is and is checked when the
// comparison is rendered.
func NewOp(m map[operator.Key]any) (*Op, error) {
	if len(m) != 1 {
		keys := make([]operator.Key, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		return nil, &MalformedConditionError{Keys: keys}
	}
	for k, operand := range m {
		return newOp(k, operand)
	}
	panic("unreachable")
}

func newOp(k operator.Key, operand any) (*Op, error) {
	switch k {
	case operator.And, operator.Or:
		switch operand := operand.(type) {
		case Group:
			return &Op{key: k, operand: operand}, nil
		case *Group:
			if operand == nil {
				break
			}
			return &Op{key: k, operand: *operand}, nil
		case []Node:
			return &Op{key: k, operand: Group{Conditions: operand}}, nil
		}
		return nil, &InvalidOperandError{Key: k, Operand: operand, Reason: "expected a group of conditions"}
	case operator.Not:
		n, ok := operand.(Node)
		if !ok || n == nil {
			return nil, &InvalidOperandError{Key: k, Operand: operand, Reason: "expected a condition"}
		}
		return &Op{key: k, operand: n}, nil
	}
	if _, ok := operand.(Node); ok {
		return nil, &InvalidOperandError{Key: k, Operand: operand, Reason: "expected a value, got a condition"}
	}
	return &Op{key: k, operand: operand}, nil
}

func mustOp(k operator.Key, operand any) *Op {
	op, err := newOp(k, operand)
	if err != nil {
		panic(err)
	}
	return op
}

// Eq returns the condition "= v".
func Eq(v any) *Op { return mustOp(operator.Eq, v) }

// Ne returns the condition "<> v".
func Ne(v any) *Op { return mustOp(operator.Ne, v) }

// Lt returns the condition "< v".
func Lt(v any) *Op { return mustOp(operator.Lt, v) }

// Lte returns the condition "<= v".
func Lte(v any) *Op { return mustOp(operator.Lte, v) }

// Gt returns the condition "> v".
func Gt(v any) *Op { return mustOp(operator.Gt, v) }

// Gte returns the condition ">= v".
func Gte(v any) *Op { return mustOp(operator.Gte, v) }

// Like returns the condition "LIKE pattern".
func Like(pattern any) *Op { return mustOp(operator.Like, pattern) }

// NotLike returns the condition "NOT LIKE pattern".
func NotLike(pattern any) *Op { return mustOp(operator.NotLike, pattern) }

// ILike returns the condition "ILIKE pattern".
func ILike(pattern any) *Op { return mustOp(operator.ILike, pattern) }

// NotILike returns the condition "NOT ILIKE pattern".
func NotILike(pattern any) *Op { return mustOp(operator.NotILike, pattern) }

// SimilarTo returns the condition "SIMILAR TO pattern".
func SimilarTo(pattern any) *Op { return mustOp(operator.SimilarTo, pattern) }

// NotSimilarTo returns the condition "NOT SIMILAR TO pattern".
func NotSimilarTo(pattern any) *Op { return mustOp(operator.NotSimilarTo, pattern) }

// In returns the condition "IN (values...)". values must be a slice or array.
func In(values any) *Op { return mustOp(operator.In, values) }

// NotIn returns the condition "NOT IN (values...)". values must be a slice or
// array.
func NotIn(values any) *Op { return mustOp(operator.NotIn, values) }

// And joins conditions with AND.
func And(conditions ...Node) *Op {
	return &Op{key: operator.And, operand: Group{Conditions: conditions}}
}

// Or joins conditions with OR.
func Or(conditions ...Node) *Op {
	return &Op{key: operator.Or, operand: Group{Conditions: conditions}}
}

// AndOn joins conditions with AND, using id as their ambient identifier.
func AndOn(id value.Identifier, conditions ...Node) *Op {
	return &Op{key: operator.And, operand: Group{Identifier: &id, Conditions: conditions}}
}

// OrOn joins conditions with OR, using id as their ambient identifier.
func OrOn(id value.Identifier, conditions ...Node) *Op {
	return &Op{key: operator.Or, operand: Group{Identifier: &id, Conditions: conditions}}
}

// Not negates n.
func Not(n Node) *Op {
	return mustOp(operator.Not, n)
}
