package schema

import (
	"fmt"

	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

var _ introspection.TypeSystem = (*Catalog)(nil)

func (c *Catalog) own(t introspection.Type) (*schemaType, bool) {
	st, ok := t.(*schemaType)
	if !ok || st == nil {
		return nil, false
	}
	return st, c.types[st.name] == st
}

// DeclaredMembers returns the members declared directly on t
func (c *Catalog) DeclaredMembers(t introspection.Type) ([]*introspection.Member, error) {
	st, ok := c.own(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not belong to this catalog", ErrUnknownType, t.Name())
	}
	return c.members[st], nil
}

// Supertype returns the declared supertype of t, or nil
func (c *Catalog) Supertype(t introspection.Type) introspection.Type {
	st, ok := c.own(t)
	if !ok {
		return nil
	}
	if super := c.supers[st]; super != nil {
		return super
	}
	return nil
}

// Implements reports whether t, one of its supertypes or one of the types
// they implement declares the capability.
func (c *Catalog) Implements(t introspection.Type, capability string) bool {
	st, ok := c.own(t)
	if !ok {
		return false
	}
	seen := make(map[*schemaType]bool)
	queue := []*schemaType{st}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || seen[cur] {
			continue
		}
		seen[cur] = true
		if c.caps[cur][capability] {
			return true
		}
		queue = append(queue, c.supers[cur])
		queue = append(queue, c.ifaces[cur]...)
	}
	return false
}

// InstantiateByName builds a fresh provider from the declaration named
// name. The context type is unused: catalog names are global.
func (c *Catalog) InstantiateByName(_ introspection.Type, name string) (any, error) {
	spec, ok := c.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: no provider named %s", ErrUnknownType, name)
	}
	return c.buildProvider(spec)
}
