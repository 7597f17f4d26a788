// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package operator holds the definitions of the SQL operators understood by
sqlexpr. A Registry maps each operator Key to its Definition: the SQL keyword,
the arity class and the kinds of right hand operand it accepts.

A Registry is immutable once constructed and is safe for concurrent use. There
is no package level registry, callers construct one and pass it down.
*/
package operator

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies a single operator.
type Key int

const (
	Eq Key = iota + 1
	Ne
	Lt
	Lte
	Gt
	Gte
	Like
	NotLike
	ILike
	NotILike
	SimilarTo
	NotSimilarTo
	In
	NotIn
	And
	Or
	Not
)

var keyNames = map[Key]string{
	Eq:           "eq",
	Ne:           "ne",
	Lt:           "lt",
	Lte:          "lte",
	Gt:           "gt",
	Gte:          "gte",
	Like:         "like",
	NotLike:      "notLike",
	ILike:        "iLike",
	NotILike:     "notILike",
	SimilarTo:    "similarTo",
	NotSimilarTo: "notSimilarTo",
	In:           "in",
	NotIn:        "notIn",
	And:          "and",
	Or:           "or",
	Not:          "not",
}

// String returns the symbolic name of the key, e.g. "notLike".
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// ParseKey returns the key with the given symbolic name.
func ParseKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// IsCombinator reports whether k joins or modifies sub-expressions rather than
// comparing two values.
func (k Key) IsCombinator() bool {
	return k == And || k == Or || k == Not
}

// Class is the arity class of an operator.
type Class int

const (
	// ScalarComparison operators render "left KEYWORD right" with a single
	// right operand.
	ScalarComparison Class = iota + 1
	// ListMembership operators render "left KEYWORD (a, b, ...)".
	ListMembership
	// LogicalCombinator operators join (AND, OR) or prefix (NOT)
	// sub-expressions.
	LogicalCombinator
)

func (c Class) String() string {
	switch c {
	case ScalarComparison:
		return "scalar comparison"
	case ListMembership:
		return "list membership"
	case LogicalCombinator:
		return "logical combinator"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Kinds is a set of operand kinds.
type Kinds uint16

const (
	KindNull Kinds = 1 << iota
	KindBool
	KindNumber
	KindString
	KindTime
	KindIdentifier
	KindLiteral
	KindSequence
)

const (
	// AnyScalar accepts every single value, NULL included.
	AnyScalar = KindNull | KindBool | KindNumber | KindString | KindTime | KindIdentifier | KindLiteral
	// Ordered accepts values that can be compared with < and >.
	Ordered = KindNumber | KindString | KindTime | KindIdentifier | KindLiteral
	// Textual accepts values usable as a pattern.
	Textual = KindString | KindIdentifier | KindLiteral
)

var kindNames = []struct {
	kind Kinds
	name string
}{
	{KindNull, "null"},
	{KindBool, "bool"},
	{KindNumber, "number"},
	{KindString, "string"},
	{KindTime, "time"},
	{KindIdentifier, "identifier"},
	{KindLiteral, "literal"},
	{KindSequence, "sequence"},
}

// Has reports whether every kind in o is in ks.
func (ks Kinds) Has(o Kinds) bool {
	return o != 0 && ks&o == o
}

func (ks Kinds) String() string {
	var names []string
	for _, kn := range kindNames {
		if ks&kn.kind != 0 {
			names = append(names, kn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Definition describes a single operator.
type Definition struct {
	Key     Key
	Keyword string
	Class   Class
	// Operands is the set of right hand operand kinds the operator accepts.
	// It is empty for logical combinators.
	Operands Kinds
}

// Standard returns the definitions of the standard operators.
func Standard() []Definition {
	return []Definition{
		{Key: Eq, Keyword: "=", Class: ScalarComparison, Operands: AnyScalar},
		{Key: Ne, Keyword: "<>", Class: ScalarComparison, Operands: AnyScalar},
		{Key: Lt, Keyword: "<", Class: ScalarComparison, Operands: Ordered},
		{Key: Lte, Keyword: "<=", Class: ScalarComparison, Operands: Ordered},
		{Key: Gt, Keyword: ">", Class: ScalarComparison, Operands: Ordered},
		{Key: Gte, Keyword: ">=", Class: ScalarComparison, Operands: Ordered},
		{Key: Like, Keyword: "LIKE", Class: ScalarComparison, Operands: Textual},
		{Key: NotLike, Keyword: "NOT LIKE", Class: ScalarComparison, Operands: Textual},
		{Key: ILike, Keyword: "ILIKE", Class: ScalarComparison, Operands: Textual},
		{Key: NotILike, Keyword: "NOT ILIKE", Class: ScalarComparison, Operands: Textual},
		{Key: SimilarTo, Keyword: "SIMILAR TO", Class: ScalarComparison, Operands: Textual},
		{Key: NotSimilarTo, Keyword: "NOT SIMILAR TO", Class: ScalarComparison, Operands: Textual},
		{Key: In, Keyword: "IN", Class: ListMembership, Operands: KindSequence},
		{Key: NotIn, Keyword: "NOT IN", Class: ListMembership, Operands: KindSequence},
		{Key: And, Keyword: "AND", Class: LogicalCombinator},
		{Key: Or, Keyword: "OR", Class: LogicalCombinator},
		{Key: Not, Keyword: "NOT", Class: LogicalCombinator},
	}
}

// DuplicateError is returned by NewRegistry when a key is defined twice.
type DuplicateError struct {
	Key Key
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("operator %s defined more than once", e.Key)
}

// Registry maps operator keys to their definitions.
type Registry struct {
	defs map[Key]Definition
}

// NewRegistry builds a registry holding defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[Key]Definition, len(defs))}
	for _, d := range defs {
		if _, ok := r.defs[d.Key]; ok {
			return nil, &DuplicateError{Key: d.Key}
		}
		if d.Keyword == "" {
			return nil, fmt.Errorf("operator %s has no keyword", d.Key)
		}
		r.defs[d.Key] = d
	}
	return r, nil
}

// NewStandardRegistry builds a registry holding the standard operators.
func NewStandardRegistry() *Registry {
	r, err := NewRegistry(Standard()...)
	if err != nil {
		panic("internal error: " + err.Error())
	}
	return r
}

// Lookup returns the definition registered for key.
func (r *Registry) Lookup(key Key) (Definition, bool) {
	d, ok := r.defs[key]
	return d, ok
}

// Keys returns the registered keys in ascending order.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.defs))
	for k := range r.defs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
