// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package statement

import (
	"fmt"
	"strings"
)

// MissingRequiredClauseError is returned when required clauses were not
// supplied. Names lists all of them.
type MissingRequiredClauseError struct {
	Names []string
}

func (e *MissingRequiredClauseError) Error() string {
	return fmt.Sprintf("missing required clauses: %s", strings.Join(e.Names, ", "))
}

// UnknownClauseError is returned when clauses the statement does not know
// were supplied.
type UnknownClauseError struct {
	Names []string
}

func (e *UnknownClauseError) Error() string {
	return fmt.Sprintf("unexpected clauses: %s", strings.Join(e.Names, ", "))
}

// ClauseArgumentError is returned when a clause argument cannot be matched to
// the parameters of its resolver.
type ClauseArgumentError struct {
	Name   string
	Params int
	Arg    any
}

func (e *ClauseArgumentError) Error() string {
	return fmt.Sprintf("clause %s takes %d arguments, got %v", e.Name, e.Params, e.Arg)
}
