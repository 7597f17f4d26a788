// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlexpr

import (
	"sort"
	"sync"

	"github.com/canonical/sqlexpr/operator"
	"github.com/canonical/sqlexpr/value"
)

// Cache holds one Builder per built-in dialect, created on first use. All
// the Builders share the operator registry of the Cache.
//
// The mutex must be locked when accessing builders.
type Cache struct {
	registry *operator.Registry
	builders map[string]*Builder
	mutex    sync.RWMutex
}

// NewCache returns an empty Cache whose Builders use the operators in reg.
func NewCache(reg *operator.Registry) *Cache {
	return &Cache{
		registry: reg,
		builders: map[string]*Builder{},
	}
}

// Builder returns the Builder for the named built-in dialect, one of
// "postgres", "sqlite" or "mysql". The same Builder is returned for every
// name of a dialect.
func (c *Cache) Builder(name string) (*Builder, error) {
	d, err := value.ByName(name)
	if err != nil {
		return nil, err
	}
	key := d.Name()

	c.mutex.RLock()
	b, ok := c.builders[key]
	c.mutex.RUnlock()
	if ok {
		return b, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	// Another caller may have added the Builder since the read lock was
	// released.
	if b, ok := c.builders[key]; ok {
		return b, nil
	}
	b, err = NewWithRegistry(c.registry, d)
	if err != nil {
		return nil, err
	}
	c.builders[key] = b
	return b, nil
}

// dialects returns the sorted names of the dialects in the cache.
func (c *Cache) dialects() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	names := make([]string, 0, len(c.builders))
	for name := range c.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
