// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package document decodes conditions and SELECT queries written as YAML or
JSON documents.

A condition is either a plain value, which is compared for equality with the
ambient identifier, or a mapping. A mapping holds exactly one operator, such as

	{gte: 18}
	{in: [1, 2, 3]}
	{not: {like: "a%"}}
	{and: [{gt: 1}, {lt: 5}]}
	{or: {identifier: [person, name], conditions: [Fred, Mary]}}

or sets the identifier of a condition:

	{scope: [person, age], condition: {gte: 18}}

Identifiers and raw SQL are written as {ident: [table, column]} and
{literal: "now()"} wherever a value is expected.
*/
package document

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

// Error is an error at a line of a document.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorAt(n *yaml.Node, err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Line: n.Line, Err: err}
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return errorAt(n, fmt.Errorf(format, args...))
}

// DecodeCondition decodes the condition held in data.
func DecodeCondition(data []byte) (n expr.Node, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot decode condition: %w", err)
		}
	}()
	root, err := parse(data)
	if err != nil {
		return nil, err
	}
	return decodeCondition(root)
}

// parse returns the root node of the single document in data.
func parse(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return resolve(doc.Content[0]), nil
}

// resolve follows aliases.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

type pair struct {
	key   string
	value *yaml.Node
}

func pairs(n *yaml.Node) []pair {
	ps := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		ps = append(ps, pair{key: n.Content[i].Value, value: resolve(n.Content[i+1])})
	}
	return ps
}

func decodeCondition(n *yaml.Node) (expr.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		v, err := decodeScalar(n)
		if err != nil {
			return nil, err
		}
		return expr.Bare(v), nil
	case yaml.MappingNode:
	default:
		return nil, errorf(n, "expected a condition")
	}

	ps := pairs(n)
	if len(ps) == 1 && (ps[0].key == "ident" || ps[0].key == "literal") {
		v, err := decodeOperand(n)
		if err != nil {
			return nil, err
		}
		return expr.Bare(v), nil
	}
	for _, p := range ps {
		if p.key == "scope" {
			return decodeScoped(n, ps)
		}
	}

	ops := make(map[operator.Key]any, len(ps))
	for _, p := range ps {
		k, ok := operator.ParseKey(p.key)
		if !ok {
			return nil, errorf(n, "unknown operator %q", p.key)
		}
		// Decoding into a yaml.Node keeps repeated keys.
		if _, ok := ops[k]; ok {
			return nil, errorAt(n, &expr.MalformedConditionError{Keys: []operator.Key{k, k}})
		}
		var operand any
		var err error
		switch k {
		case operator.And, operator.Or:
			operand, err = decodeGroup(p.value)
		case operator.Not:
			operand, err = decodeCondition(p.value)
		default:
			operand, err = decodeOperand(p.value)
		}
		if err != nil {
			return nil, err
		}
		ops[k] = operand
	}
	op, err := expr.NewOp(ops)
	if err != nil {
		return nil, errorAt(n, err)
	}
	return op, nil
}

func decodeScoped(n *yaml.Node, ps []pair) (expr.Node, error) {
	var id value.Identifier
	var cond expr.Node
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if seen[p.key] {
			return nil, errorf(n, "repeated key %q in scope", p.key)
		}
		seen[p.key] = true
		var err error
		switch p.key {
		case "scope":
			id, err = decodeIdentifier(p.value)
		case "condition":
			cond, err = decodeCondition(p.value)
		default:
			return nil, errorf(n, "unexpected key %q in scope", p.key)
		}
		if err != nil {
			return nil, err
		}
	}
	if cond == nil {
		return nil, errorf(n, "scope without condition")
	}
	return expr.Scope(id, cond), nil
}

// decodeGroup decodes the operand of and and or: either a list of conditions
// or a mapping with an identifier and the conditions.
func decodeGroup(n *yaml.Node) (expr.Group, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		conds, err := decodeConditions(n)
		return expr.Group{Conditions: conds}, err
	case yaml.MappingNode:
		var g expr.Group
		for _, p := range pairs(n) {
			switch p.key {
			case "identifier":
				id, err := decodeIdentifier(p.value)
				if err != nil {
					return expr.Group{}, err
				}
				g.Identifier = &id
			case "conditions":
				if p.value.Kind != yaml.SequenceNode {
					return expr.Group{}, errorf(p.value, "expected a list of conditions")
				}
				conds, err := decodeConditions(p.value)
				if err != nil {
					return expr.Group{}, err
				}
				g.Conditions = conds
			default:
				return expr.Group{}, errorf(n, "unexpected key %q in group", p.key)
			}
		}
		return g, nil
	}
	return expr.Group{}, errorf(n, "expected a list of conditions")
}

func decodeConditions(n *yaml.Node) ([]expr.Node, error) {
	conds := make([]expr.Node, 0, len(n.Content))
	for _, c := range n.Content {
		cond, err := decodeCondition(resolve(c))
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// decodeIdentifier decodes a list of segments, or a single segment.
func decodeIdentifier(n *yaml.Node) (value.Identifier, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return value.Identifier{}, errorf(n, "empty identifier")
		}
		return value.Ident(n.Value), nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return value.Identifier{}, errorf(n, "empty identifier")
		}
		segs := make([]string, len(n.Content))
		for i, c := range n.Content {
			c = resolve(c)
			if c.Kind != yaml.ScalarNode || c.Value == "" {
				return value.Identifier{}, errorf(c, "invalid identifier segment")
			}
			segs[i] = c.Value
		}
		return value.Ident(segs...), nil
	}
	return value.Identifier{}, errorf(n, "expected an identifier")
}

// decodeOperand decodes the right operand of a comparison.
func decodeOperand(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		vs := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := decodeOperand(resolve(c))
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return vs, nil
	case yaml.MappingNode:
		ps := pairs(n)
		if len(ps) == 1 {
			switch ps[0].key {
			case "ident":
				return decodeIdentifier(ps[0].value)
			case "literal":
				if ps[0].value.Kind != yaml.ScalarNode {
					return nil, errorf(ps[0].value, "expected literal SQL text")
				}
				return value.Literal(ps[0].value.Value), nil
			}
		}
	}
	return nil, errorf(n, "expected a value")
}

func decodeScalar(n *yaml.Node) (any, error) {
	if n.ShortTag() == "!!timestamp" {
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, errorAt(n, err)
		}
		return t, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, errorAt(n, err)
	}
	return v, nil
}

// decodeColumn decodes a column name, identifier or literal.
func decodeColumn(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() != "!!str" || n.Value == "" {
			return nil, errorf(n, "expected a column name")
		}
		return n.Value, nil
	}
	v, err := decodeOperand(n)
	if err != nil {
		return nil, err
	}
	if _, ok := v.([]any); ok {
		return nil, errorf(n, "expected a column")
	}
	return v, nil
}
