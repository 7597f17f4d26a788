// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/statement"
)

// SelectDoc is a decoded SELECT query document:
//
//	targets: [name, {literal: "count(*)"}]
//	distinct: true
//	from: person
//	where: {scope: age, condition: {gte: 18}}
//	groupBy: [name]
//	orderBy: [name, {column: age, direction: desc}]
//	limit: 10
//	offset: 20
type SelectDoc struct {
	Targets  []any
	Distinct bool
	From     any
	Where    expr.Node
	GroupBy  []any
	OrderBy  []statement.Order
	Limit    *int
	Offset   *int
}

type selectYAML struct {
	Targets  []yaml.Node `yaml:"targets"`
	Distinct bool        `yaml:"distinct"`
	From     yaml.Node   `yaml:"from"`
	Where    yaml.Node   `yaml:"where"`
	GroupBy  []yaml.Node `yaml:"groupBy"`
	OrderBy  []yaml.Node `yaml:"orderBy"`
	Limit    *int        `yaml:"limit"`
	Offset   *int        `yaml:"offset"`
}

// DecodeSelect decodes the SELECT query held in data. Unknown keys are
// rejected.
func DecodeSelect(data []byte) (doc *SelectDoc, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot decode select: %w", err)
		}
	}()

	var raw selectYAML
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}

	doc = &SelectDoc{Distinct: raw.Distinct, Limit: raw.Limit, Offset: raw.Offset}
	for i := range raw.Targets {
		n := resolve(&raw.Targets[i])
		var t any
		if n.Kind == yaml.ScalarNode {
			t, err = decodeScalar(n)
		} else {
			t, err = decodeColumn(n)
		}
		if err != nil {
			return nil, err
		}
		doc.Targets = append(doc.Targets, t)
	}
	if raw.From.Kind != 0 {
		if doc.From, err = decodeColumn(resolve(&raw.From)); err != nil {
			return nil, err
		}
	}
	if raw.Where.Kind != 0 {
		if doc.Where, err = decodeCondition(resolve(&raw.Where)); err != nil {
			return nil, err
		}
	}
	for i := range raw.GroupBy {
		col, err := decodeColumn(resolve(&raw.GroupBy[i]))
		if err != nil {
			return nil, err
		}
		doc.GroupBy = append(doc.GroupBy, col)
	}
	for i := range raw.OrderBy {
		o, err := decodeOrder(resolve(&raw.OrderBy[i]))
		if err != nil {
			return nil, err
		}
		doc.OrderBy = append(doc.OrderBy, o)
	}
	return doc, nil
}

// decodeOrder decodes a column or a mapping with a column and a direction.
func decodeOrder(n *yaml.Node) (statement.Order, error) {
	if n.Kind != yaml.MappingNode {
		col, err := decodeColumn(n)
		return statement.Order{Column: col}, err
	}
	ps := pairs(n)
	if len(ps) == 1 && (ps[0].key == "ident" || ps[0].key == "literal") {
		col, err := decodeColumn(n)
		return statement.Order{Column: col}, err
	}
	var o statement.Order
	for _, p := range ps {
		switch p.key {
		case "column":
			col, err := decodeColumn(p.value)
			if err != nil {
				return statement.Order{}, err
			}
			o.Column = col
		case "direction":
			if p.value.Kind != yaml.ScalarNode {
				return statement.Order{}, errorf(p.value, "expected a direction")
			}
			o.Direction = statement.Direction(strings.ToUpper(p.value.Value))
		default:
			return statement.Order{}, errorf(n, "unexpected key %q in order", p.key)
		}
	}
	if o.Column == nil {
		return statement.Order{}, errorf(n, "order without column")
	}
	return o, nil
}

// Query returns the query described by the document.
func (d *SelectDoc) Query() statement.SelectQuery {
	clauses := statement.Clauses{}
	if d.From != nil {
		clauses["from"] = d.From
	}
	if d.Where != nil {
		clauses["where"] = d.Where
	}
	if len(d.GroupBy) > 0 {
		clauses["groupBy"] = d.GroupBy
	}
	if len(d.OrderBy) > 0 {
		clauses["orderBy"] = d.OrderBy
	}
	if d.Limit != nil {
		clauses["limit"] = *d.Limit
	}
	if d.Offset != nil {
		clauses["offset"] = *d.Offset
	}
	return statement.SelectQuery{
		Targets:  d.Targets,
		Distinct: d.Distinct,
		Clauses:  clauses,
	}
}
