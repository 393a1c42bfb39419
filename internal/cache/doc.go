// Package cache provides a small generic LRU cache.
//
// It backs the shader compile cache in internal/gpu: WGSL lowered to SPIR-V
// is keyed by its source text, so renderers rebuilt for the same tile size
// skip the compiler.
//
//	c := cache.New[string, []uint32](8)
//	words, err := c.GetOrCreate(src, func() ([]uint32, error) { return compile(src) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
