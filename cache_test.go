package sqlexpr_test

import (
	"sync"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlexpr"
	"github.com/canonical/sqlexpr/expr"
	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

type CacheSuite struct {
	cache *sqlexpr.Cache
}

var _ = Suite(&CacheSuite{})

func (s *CacheSuite) SetUpTest(c *C) {
	s.cache = sqlexpr.NewCache(operator.NewStandardRegistry())
}

func (s *CacheSuite) TestBuilderReuse(c *C) {
	c.Check(s.cache.Dialects(), HasLen, 0)

	pg, err := s.cache.Builder("postgres")
	c.Assert(err, IsNil)
	pg2, err := s.cache.Builder("PostgreSQL")
	c.Assert(err, IsNil)
	c.Check(pg2, Equals, pg)

	lite, err := s.cache.Builder("sqlite3")
	c.Assert(err, IsNil)
	c.Check(lite, Not(Equals), pg)
	c.Check(s.cache.Dialects(), DeepEquals, []string{"postgres", "sqlite"})
}

func (s *CacheSuite) TestUnknownDialect(c *C) {
	_, err := s.cache.Builder("oracle")
	c.Check(err, ErrorMatches, `unknown dialect "oracle"`)
	c.Check(s.cache.Dialects(), HasLen, 0)
}

func (s *CacheSuite) TestDialectQuoting(c *C) {
	cond := expr.Scope(value.Ident("t", "name"), expr.Eq("it's"))
	var tests = []struct {
		dialect  string
		expected string
	}{
		{"postgres", `"t"."name" = 'it''s'`},
		{"sqlite", `"t"."name" = 'it''s'`},
		{"mysql", "`t`.`name` = 'it\\'s'"},
	}
	for _, t := range tests {
		b, err := s.cache.Builder(t.dialect)
		c.Assert(err, IsNil)
		got, err := b.Where(cond)
		c.Assert(err, IsNil)
		c.Check(got, Equals, t.expected, Commentf("dialect %s", t.dialect))
	}
}

func (s *CacheSuite) TestConcurrentBuilder(c *C) {
	const n = 16
	builders := make([]*sqlexpr.Builder, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := s.cache.Builder("mysql")
			if err == nil {
				builders[i] = b
			}
		}(i)
	}
	wg.Wait()
	c.Assert(builders[0], NotNil)
	for _, b := range builders {
		c.Check(b, Equals, builders[0])
	}
	c.Check(s.cache.Dialects(), DeepEquals, []string{"mysql"})
}
