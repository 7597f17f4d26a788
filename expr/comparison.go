// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

// ComparisonBuilder renders a single "left KEYWORD right" comparison. The
// operands are always formatted by the value.Formatter.
type ComparisonBuilder struct {
	reg *operator.Registry
	f   value.Formatter
}

// NewComparisonBuilder returns a ComparisonBuilder using the operators in reg
// and formatting operands with f.
func NewComparisonBuilder(reg *operator.Registry, f value.Formatter) *ComparisonBuilder {
	return &ComparisonBuilder{reg: reg, f: f}
}

// Build renders the comparison of left and right with the operator key. The
// right operand of In and NotIn must be a slice or array, every other
// comparison takes a single value.
func (b *ComparisonBuilder) Build(left any, key operator.Key, right any) (string, error) {
	def, ok := b.reg.Lookup(key)
	if !ok {
		return "", &InvalidOperandError{Key: key, Operand: right, Reason: "operator not registered"}
	}
	if def.Class == operator.LogicalCombinator {
		return "", &InvalidOperandError{Key: key, Operand: right, Reason: "not a comparison operator"}
	}

	kind := operandKind(right)
	if kind == 0 {
		return "", &InvalidOperandError{Key: key, Operand: right, Reason: fmt.Sprintf("unsupported type %T", right)}
	}
	if !def.Operands.Has(kind) {
		return "", &InvalidOperandError{Key: key, Operand: right, Reason: fmt.Sprintf("expected %s, got %s", def.Operands, kind)}
	}

	leftSQL, err := b.f.Format(left)
	if err != nil {
		return "", fmt.Errorf("left operand of %s: %w", key, err)
	}
	rightSQL, err := b.f.Format(right)
	if err != nil {
		return "", &InvalidOperandError{Key: key, Operand: right, Reason: err.Error()}
	}
	return leftSQL + " " + def.Keyword + " " + rightSQL, nil
}

// operandKind classifies v. It returns zero if v is of a type that cannot be
// used as an operand.
func operandKind(v any) operator.Kinds {
	switch v.(type) {
	case nil:
		return operator.KindNull
	case value.Literal:
		return operator.KindLiteral
	case value.Identifier, *value.Identifier:
		return operator.KindIdentifier
	case time.Time:
		return operator.KindTime
	case uuid.UUID:
		return operator.KindString
	case []byte:
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return operator.KindNull
		}
		return operandKind(rv.Elem().Interface())
	case reflect.Bool:
		return operator.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return operator.KindNumber
	case reflect.String:
		return operator.KindString
	case reflect.Slice, reflect.Array:
		return operator.KindSequence
	}
	return 0
}
