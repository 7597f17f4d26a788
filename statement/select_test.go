package statement_test

import (
	"database/sql"
	"errors"
	"math"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/xwb1989/sqlparser"
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/statement"
	"github.com/canonical/sqlexpr/value"
)

type SelectSuite struct{}

var _ = Suite(&SelectSuite{})

func newSelect(c *C, d *value.Dialect) *statement.Select {
	sel, err := statement.NewSelect(d, expr.NewCompiler(operator.NewStandardRegistry(), d))
	c.Assert(err, IsNil)
	return sel
}

func (s *SelectSuite) TestBuild(c *C) {
	sel := newSelect(c, value.Postgres())
	var tests = []struct {
		summary  string
		query    statement.SelectQuery
		expected string
	}{{
		summary: "from only",
		query: statement.SelectQuery{
			Targets: []any{"*"},
			Clauses: statement.Clauses{"from": "person"},
		},
		expected: `SELECT * FROM "person";`,
	}, {
		summary: "distinct targets",
		query: statement.SelectQuery{
			Targets:  []any{"name", value.Ident("p", "age"), value.Literal("count(*)")},
			Distinct: true,
			Clauses:  statement.Clauses{"from": value.Ident("public", "person")},
		},
		expected: `SELECT DISTINCT "name", "p"."age", count(*) FROM "public"."person";`,
	}, {
		summary: "all clauses in any supply order",
		query: statement.SelectQuery{
			Targets: []any{"name"},
			Clauses: statement.Clauses{
				"offset":  10,
				"limit":   5,
				"orderBy": []any{statement.Order{Column: "age", Direction: statement.Desc}, "name"},
				"groupBy": []string{"name", "age"},
				"where":   expr.Scope(value.Ident("age"), expr.Gte(18)),
				"from":    "person",
			},
		},
		expected: `SELECT "name" FROM "person" WHERE "age" >= 18 GROUP BY "name", "age" ORDER BY "age" DESC, "name" LIMIT 5 OFFSET 10;`,
	}, {
		summary: "single order term",
		query: statement.SelectQuery{
			Targets: []any{"*"},
			Clauses: statement.Clauses{
				"from":    "person",
				"orderBy": statement.Order{Column: value.Ident("p", "name"), Direction: statement.Asc},
			},
		},
		expected: `SELECT * FROM "person" ORDER BY "p"."name" ASC;`,
	}, {
		summary: "literal from",
		query: statement.SelectQuery{
			Targets: []any{1},
			Clauses: statement.Clauses{"from": value.Literal(`(SELECT 1) AS "s"`)},
		},
		expected: `SELECT 1 FROM (SELECT 1) AS "s";`,
	}}
	for _, t := range tests {
		got, err := sel.Build(t.query)
		c.Assert(err, IsNil, Commentf("test %q failed", t.summary))
		c.Check(got, Equals, t.expected, Commentf("test %q failed", t.summary))
	}
}

func (s *SelectSuite) TestBuildErrors(c *C) {
	sel := newSelect(c, value.Postgres())
	var tests = []struct {
		summary string
		query   statement.SelectQuery
		err     string
	}{{
		summary: "no targets",
		query:   statement.SelectQuery{Clauses: statement.Clauses{"from": "t"}},
		err:     "cannot build statement: expected one or more targets",
	}, {
		summary: "bad target",
		query:   statement.SelectQuery{Targets: []any{"a", struct{}{}}, Clauses: statement.Clauses{"from": "t"}},
		err:     `cannot build statement: target 1: cannot format struct {}`,
	}, {
		summary: "no from",
		query:   statement.SelectQuery{Targets: []any{"a"}},
		err:     "cannot build statement: missing required clauses: from",
	}, {
		summary: "bad from",
		query:   statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{"from": 1}},
		err:     "cannot build statement: clause from: expected column, got int",
	}, {
		summary: "negative limit",
		query:   statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{"from": "t", "limit": -1}},
		err:     "cannot build statement: clause limit: expected non-negative count, got -1",
	}, {
		summary: "limit overflows int",
		query:   statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{"from": "t", "limit": uint64(math.MaxUint64)}},
		err:     "cannot build statement: clause limit: argument 0: 18446744073709551615 overflows int",
	}, {
		summary: "bad direction",
		query: statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{
			"from":    "t",
			"orderBy": []statement.Order{{Column: "a", Direction: "UP"}},
		}},
		err: `cannot build statement: clause orderBy: term 0: invalid direction "UP"`,
	}, {
		summary: "empty order",
		query:   statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{"from": "t", "orderBy": []string{}}},
		err:     "cannot build statement: clause orderBy: expected one or more columns",
	}, {
		summary: "unknown clause",
		query:   statement.SelectQuery{Targets: []any{"a"}, Clauses: statement.Clauses{"from": "t", "having": "x"}},
		err:     "cannot build statement: unexpected clauses: having",
	}}
	for _, t := range tests {
		_, err := sel.Build(t.query)
		c.Check(err, ErrorMatches, t.err, Commentf("test %q failed", t.summary))
	}
}

func (s *SelectSuite) TestErrorKindsThroughTargets(c *C) {
	sel := newSelect(c, value.Postgres())
	q := statement.SelectQuery{
		Targets: []any{value.Literal("count(*)")},
		Clauses: statement.Clauses{"from": "t", "where": expr.Eq(1)},
	}
	_, err := sel.Build(q)
	c.Assert(err, ErrorMatches, "cannot build statement: clause where: .*")
	var missing *expr.MissingIdentifierError
	c.Check(errors.As(err, &missing), Equals, true)

	q.Targets = []any{1.5, []byte("x")}
	_, err = sel.Build(q)
	c.Assert(err, ErrorMatches, "cannot build statement: target 1: .*")
	c.Check(errors.As(err, &missing), Equals, false)
}

func (s *SelectSuite) TestNoWhereResolver(c *C) {
	sel, err := statement.NewSelect(value.SQLite(), nil)
	c.Assert(err, IsNil)
	_, err = sel.Build(statement.SelectQuery{
		Targets: []any{"a"},
		Clauses: statement.Clauses{"from": "t", "where": expr.Bare(1)},
	})
	var unknown *statement.UnknownClauseError
	c.Check(errors.As(err, &unknown), Equals, true)
}

func createExampleDB(c *C) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	c.Assert(err, IsNil)
	_, err = db.Exec(`
CREATE TABLE person (
	id integer,
	name text,
	age integer,
	team text
);`)
	c.Assert(err, IsNil)
	inserts := []string{
		`INSERT INTO person VALUES (1, 'Fred', 30, 'red');`,
		`INSERT INTO person VALUES (2, 'Mary', 42, 'blue');`,
		`INSERT INTO person VALUES (3, 'James', 17, 'red');`,
		`INSERT INTO person VALUES (4, 'O''Neil', 25, NULL);`,
	}
	for _, insert := range inserts {
		_, err := db.Exec(insert)
		c.Assert(err, IsNil)
	}
	return db
}

func queryNames(c *C, db *sql.DB, query string) []string {
	rows, err := db.Query(query)
	c.Assert(err, IsNil, Commentf("query %s", query))
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		c.Assert(rows.Scan(&name), IsNil)
		names = append(names, name)
	}
	c.Assert(rows.Err(), IsNil)
	return names
}

func (s *SelectSuite) TestSQLiteExecution(c *C) {
	db := createExampleDB(c)
	defer db.Close()
	sel := newSelect(c, value.SQLite())

	var tests = []struct {
		summary  string
		where    expr.Node
		expected []string
	}{{
		summary:  "equality sugar",
		where:    expr.Scope(value.Ident("name"), expr.Bare("O'Neil")),
		expected: []string{"O'Neil"},
	}, {
		summary: "or of ands",
		where: expr.Or(
			expr.AndOn(value.Ident("team"), expr.Eq("red"), expr.Scope(value.Ident("age"), expr.Gt(18))),
			expr.Scope(value.Ident("age"), expr.Gte(40)),
		),
		expected: []string{"Fred", "Mary"},
	}, {
		summary:  "in",
		where:    expr.Scope(value.Ident("person", "id"), expr.In([]int{2, 3})),
		expected: []string{"Mary", "James"},
	}, {
		summary:  "empty in matches nothing",
		where:    expr.Scope(value.Ident("id"), expr.In([]int{})),
		expected: []string{},
	}, {
		summary:  "empty not in matches everything",
		where:    expr.Scope(value.Ident("id"), expr.NotIn([]int{})),
		expected: []string{"Fred", "Mary", "James", "O'Neil"},
	}, {
		summary:  "not of a group",
		where:    expr.Not(expr.OrOn(value.Ident("name"), expr.Like("M%"), expr.Like("J%"))),
		expected: []string{"Fred", "O'Neil"},
	}, {
		summary:  "equality with null matches nothing",
		where:    expr.Scope(value.Ident("team"), expr.Eq(nil)),
		expected: []string{},
	}}
	for _, t := range tests {
		query, err := sel.Build(statement.SelectQuery{
			Targets: []any{"name"},
			Clauses: statement.Clauses{"from": "person", "where": t.where, "orderBy": "id"},
		})
		c.Assert(err, IsNil, Commentf("test %q failed", t.summary))
		c.Check(queryNames(c, db, query), DeepEquals, t.expected, Commentf("test %q failed: %s", t.summary, query))
	}
}

func (s *SelectSuite) TestSQLiteLimitOffset(c *C) {
	db := createExampleDB(c)
	defer db.Close()
	sel := newSelect(c, value.SQLite())

	query, err := sel.Build(statement.SelectQuery{
		Targets: []any{"name"},
		Clauses: statement.Clauses{
			"from":    "person",
			"orderBy": statement.Order{Column: "age", Direction: statement.Desc},
			"limit":   2,
			"offset":  1,
		},
	})
	c.Assert(err, IsNil)
	c.Check(queryNames(c, db, query), DeepEquals, []string{"Fred", "O'Neil"})
}

func (s *SelectSuite) TestPostgresParses(c *C) {
	sel := newSelect(c, value.Postgres())
	queries := []statement.SelectQuery{{
		Targets: []any{"name", value.Ident("p", "age")},
		Clauses: statement.Clauses{
			"from": value.Ident("public", "person"),
			"where": expr.And(
				expr.Scope(value.Ident("name"), expr.ILike(`it's%`)),
				expr.Not(expr.OrOn(value.Ident("age"), expr.Lt(18), expr.Gt(65))),
				expr.Scope(value.Ident("team"), expr.NotSimilarTo("(a|b)%")),
				expr.Scope(value.Ident("id"), expr.In([]int{1, 2, 3})),
			),
			"orderBy": []any{statement.Order{Column: "age", Direction: statement.Desc}},
			"limit":   10,
			"offset":  20,
		},
	}, {
		Targets:  []any{`we"ird`},
		Distinct: true,
		Clauses: statement.Clauses{
			"from":    "person",
			"where":   expr.Scope(value.Ident("flag"), expr.Ne(true)),
			"groupBy": `we"ird`,
		},
	}}
	for _, q := range queries {
		query, err := sel.Build(q)
		c.Assert(err, IsNil)
		result, err := pg_query.Parse(query)
		c.Assert(err, IsNil, Commentf("query %s", query))
		c.Check(result.Stmts, HasLen, 1)
		_, ok := result.Stmts[0].Stmt.Node.(*pg_query.Node_SelectStmt)
		c.Check(ok, Equals, true)
	}
}

func (s *SelectSuite) TestMySQLParses(c *C) {
	sel := newSelect(c, value.MySQL())
	query, err := sel.Build(statement.SelectQuery{
		Targets:  []any{"name", "age"},
		Distinct: true,
		Clauses: statement.Clauses{
			"from": "person",
			"where": expr.Or(
				expr.Scope(value.Ident("name"), expr.NotLike(`it's\%`)),
				expr.AndOn(value.Ident("age"), expr.Gte(18), expr.Lte(65)),
				expr.Scope(value.Ident("team"), expr.NotIn([]string{"red", "blue"})),
			),
			"orderBy": []any{"name", statement.Order{Column: "age", Direction: statement.Asc}},
			"limit":   3,
		},
	})
	c.Assert(err, IsNil)
	c.Assert(strings.HasSuffix(query, ";"), Equals, true)
	stmt, err := sqlparser.Parse(strings.TrimSuffix(query, ";"))
	c.Assert(err, IsNil, Commentf("query %s", query))
	_, ok := stmt.(*sqlparser.Select)
	c.Check(ok, Equals, true)
}
