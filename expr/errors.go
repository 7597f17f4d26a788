// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlexpr/operator"
)

// MalformedConditionError is returned when a condition mapping does not hold
// exactly one operator.
type MalformedConditionError struct {
	Keys []operator.Key
}

func (e *MalformedConditionError) Error() string {
	if len(e.Keys) == 0 {
		return "expected exactly one operator per condition, got none"
	}
	names := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		names[i] = k.String()
	}
	return fmt.Sprintf("expected exactly one operator per condition, got %s", strings.Join(names, ", "))
}

// MissingIdentifierError is returned when a comparison has no identifier to
// compare against.
type MissingIdentifierError struct {
	Key   operator.Key
	Value any
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("no identifier specified, unable to compare %v with %s", e.Value, e.Key)
}

// InvalidOperandError is returned when an operand does not have the shape an
// operator expects.
type InvalidOperandError struct {
	Key     operator.Key
	Operand any
	Reason  string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand %v for %s: %s", e.Operand, e.Key, e.Reason)
}

// EmptyGroupError is returned when an AND or OR has no conditions.
type EmptyGroupError struct {
	Key operator.Key
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("%s requires at least one condition", e.Key)
}
