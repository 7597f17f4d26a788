package expr_test

import (
	"errors"

	"github.com/google/uuid"
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

type ComparisonSuite struct {
	builder *expr.ComparisonBuilder
}

var _ = Suite(&ComparisonSuite{})

func (s *ComparisonSuite) SetUpTest(c *C) {
	s.builder = expr.NewComparisonBuilder(operator.NewStandardRegistry(), value.Postgres())
}

func (s *ComparisonSuite) TestBuild(c *C) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	count := 3

	var tests = []struct {
		left     any
		key      operator.Key
		right    any
		expected string
	}{
		{value.Ident("t", "a"), operator.Eq, "x", `"t"."a" = 'x'`},
		{value.Ident("a"), operator.Ne, nil, `"a" <> NULL`},
		{value.Ident("a"), operator.Lte, 2.5, `"a" <= 2.5`},
		{value.Ident("a"), operator.Gt, &count, `"a" > 3`},
		{value.Ident("a"), operator.Eq, id, `"a" = '00000000-0000-0000-0000-000000000001'`},
		{value.Ident("a"), operator.In, []uuid.UUID{id}, `"a" IN ('00000000-0000-0000-0000-000000000001')`},
		{value.Ident("a"), operator.In, [3]string{"x", "y", "z"}, `"a" IN ('x', 'y', 'z')`},
		{value.Ident("a"), operator.NotIn, []any{1, "two", nil}, `"a" NOT IN (1, 'two', NULL)`},
		{value.Ident("a"), operator.In, []int{}, `"a" IN ()`},
		{value.Literal("lower(name)"), operator.Like, "b%", `lower(name) LIKE 'b%'`},
		{"left", operator.Eq, value.Ident("right"), `'left' = "right"`},
		{value.Ident("flag"), operator.Eq, true, `"flag" = TRUE`},
	}
	for _, t := range tests {
		got, err := s.builder.Build(t.left, t.key, t.right)
		c.Assert(err, IsNil, Commentf("%v %s %v", t.left, t.key, t.right))
		c.Check(got, Equals, t.expected)
	}
}

func (s *ComparisonSuite) TestBuildErrors(c *C) {
	var tests = []struct {
		key   operator.Key
		right any
		err   string
	}{
		{operator.And, 1, "invalid operand 1 for and: not a comparison operator"},
		{operator.Not, 1, "invalid operand 1 for not: not a comparison operator"},
		{operator.Key(42), 1, `invalid operand 1 for Key\(42\): operator not registered`},
		{operator.In, "abc", "invalid operand abc for in: expected sequence, got string"},
		{operator.NotIn, nil, "invalid operand <nil> for notIn: expected sequence, got null"},
		{operator.Gte, []int{1}, `invalid operand \[1\] for gte: expected number\|string\|time\|identifier\|literal, got sequence`},
		{operator.SimilarTo, nil, `invalid operand <nil> for similarTo: expected string\|identifier\|literal, got null`},
		{operator.Eq, []byte("x"), `invalid operand \[120\] for eq: unsupported type \[\]uint8`},
		{operator.In, []any{struct{}{}}, `invalid operand \[{}\] for in: element 0: cannot format struct {}`},
	}
	for _, t := range tests {
		_, err := s.builder.Build(value.Ident("a"), t.key, t.right)
		c.Check(err, ErrorMatches, t.err)
		var invalid *expr.InvalidOperandError
		c.Check(errors.As(err, &invalid), Equals, true)
	}
}

func (s *ComparisonSuite) TestBadLeftOperand(c *C) {
	_, err := s.builder.Build(value.Ident(), operator.Eq, 1)
	c.Check(err, ErrorMatches, "left operand of eq: empty identifier")
}
