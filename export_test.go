package sqlexpr

func (c *Cache) Dialects() []string {
	return c.dialects()
}
