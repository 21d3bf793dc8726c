// Package consent records per-identity grants for destructive operations.
// A destructive operation must have a matching grant recorded before the
// gateway will execute it, which forces callers through an explicit
// grant-then-execute dance instead of an interactive prompt.
package consent

import "sync"

// Key builds the composite grant key for an operation on a resource. An
// operation with no resource concept uses the empty string, collapsing to
// the fixed sentinel "op:". Two resource-less operations therefore share a
// key only if the operation name also matches.
func Key(operation, resource string) string {
	return operation + ":" + resource
}

// Cache is a per-identity set of granted (operation, resource) pairs.
// Grants are not time-limited but are erased when the identity logs out.
type Cache struct {
	mu     sync.RWMutex
	grants map[string]map[string]struct{}
}

// NewCache creates an empty consent cache
func NewCache() *Cache {
	return &Cache{
		grants: make(map[string]map[string]struct{}),
	}
}

// Grant idempotently records consent for the operation on the resource.
func (c *Cache) Grant(identity, operation, resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.grants[identity]; !ok {
		c.grants[identity] = make(map[string]struct{})
	}
	c.grants[identity][Key(operation, resource)] = struct{}{}
}

// Check reports whether consent has been granted for the operation on the
// resource by this identity.
func (c *Cache) Check(identity, operation, resource string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	grants, ok := c.grants[identity]
	if !ok {
		return false
	}
	_, ok = grants[Key(operation, resource)]
	return ok
}

// Clear removes every grant recorded for the identity. Invoked by the
// gateway whenever the identity's session ends.
func (c *Cache) Clear(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.grants, identity)
}
