// Package progcache caches generated shader programs by paint ID.
//
// Generating WGSL for an entry walks its key and the snippet library, so a
// Context keeps recently used programs in a Cache:
//
//	c := progcache.New[shaders.UniquePaintParamsID, *Program](256)
//	prog, err := c.GetOrCreate(id, func() (*Program, error) { return build(id) })
//
// Entries are evicted least recently used first once the capacity is
// exceeded. Cache is safe for concurrent use and must not be copied after
// creation.
package progcache
