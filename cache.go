package digo

import (
	"reflect"
	"sync"
)

// InstanceCache stores already-built instances by interface type. The
// container keeps one for singletons and every Scope owns one.
type InstanceCache struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
}

// NewInstanceCache creates a cache seeded with a copy of initial.
func NewInstanceCache(initial map[reflect.Type]any) *InstanceCache {
	instances := make(map[reflect.Type]any, len(initial))
	for t, v := range initial {
		instances[t] = v
	}
	return &InstanceCache{instances: instances}
}

// Get returns the cached instance for t. The boolean is false when nothing is
// cached; a cached nil instance is still reported as present.
func (c *InstanceCache) Get(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	instance, ok := c.instances[t]
	return instance, ok
}

// Add stores instance for t, replacing any previous value.
func (c *InstanceCache) Add(t reflect.Type, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.instances[t] = instance
}

// Contains reports whether an instance is cached for t.
func (c *InstanceCache) Contains(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.instances[t]
	return ok
}

// Remove drops the cached instance for t.
func (c *InstanceCache) Remove(t reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.instances, t)
}

// Clear drops every cached instance.
func (c *InstanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.instances = make(map[reflect.Type]any)
}

// Len returns the number of cached instances.
func (c *InstanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.instances)
}

// Merge returns a new cache holding the union of c and other. Values from
// other take precedence on key collision. Neither input is modified.
func (c *InstanceCache) Merge(other *InstanceCache) *InstanceCache {
	c.mu.RLock()
	merged := NewInstanceCache(c.instances)
	c.mu.RUnlock()

	if other == nil || other == c {
		return merged
	}

	other.mu.RLock()
	for t, v := range other.instances {
		merged.instances[t] = v
	}
	other.mu.RUnlock()

	return merged
}
