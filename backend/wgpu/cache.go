//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/drape"
)

// pipelineCache shares compiled render pipelines between identical
// descriptors.
//
// Two renderers created on the same backend describe the same two draping
// pipelines; compiling them once saves shader and pipeline creation.
// Entries are reference counted: DestroyPipeline releases one reference
// and the GPU pipeline is destroyed with the last one.
//
// pipelineCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type pipelineCache struct {
	mu      sync.RWMutex
	entries map[uint64]*pipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{entries: make(map[uint64]*pipeline)}
}

// getOrCreate returns the cached pipeline for desc or builds one with create.
// The returned pipeline carries one more reference.
func (c *pipelineCache) getOrCreate(
	desc *drape.PipelineDescriptor,
	create func(*drape.PipelineDescriptor) (*pipeline, error),
) (*pipeline, error) {
	key := hashPipelineDescriptor(desc)

	// Fast path: read lock
	c.mu.RLock()
	if p, ok := c.entries[key]; ok {
		p.refs.Add(1)
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if p, ok := c.entries[key]; ok {
		p.refs.Add(1)
		c.hits.Add(1)
		return p, nil
	}

	p, err := create(desc)
	if err != nil {
		return nil, err
	}
	p.key = key
	p.refs.Store(1)
	c.entries[key] = p
	c.misses.Add(1)
	return p, nil
}

// release drops one reference and reports whether it was the last, in
// which case the entry is removed and the caller destroys the pipeline.
func (c *pipelineCache) release(p *pipeline) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[p.key] != p {
		return false
	}
	if p.refs.Add(-1) > 0 {
		return false
	}
	delete(c.entries, p.key)
	return true
}

// drain removes and returns every cached pipeline.
func (c *pipelineCache) drain() []*pipeline {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*pipeline, 0, len(c.entries))
	for _, p := range c.entries {
		out = append(out, p)
	}
	c.entries = make(map[uint64]*pipeline)
	return out
}

// Stats returns the number of cache hits and misses.
func (c *pipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the number of cached pipelines.
func (c *pipelineCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// hashPipelineDescriptor computes an FNV-1a hash over every field that
// affects the compiled pipeline. The label is included so pipelines keep
// distinct debug names.
func hashPipelineDescriptor(desc *drape.PipelineDescriptor) uint64 {
	h := fnv.New64a()

	hashWriteString(h, desc.Label)
	hashWriteUint32(h, uint32(desc.Program))

	// Vertex layout
	hashWriteUint64(h, desc.Vertex.ArrayStride)
	//nolint:gosec // G115: attribute count is bounded by GPU limits (< 32)
	hashWriteUint32(h, uint32(len(desc.Vertex.Attributes)))
	for i := range desc.Vertex.Attributes {
		attr := &desc.Vertex.Attributes[i]
		hashWriteUint32(h, attr.ShaderLocation)
		hashWriteUint32(h, uint32(attr.Format))
		hashWriteUint64(h, attr.Offset)
	}

	// Primitive state
	hashWriteUint32(h, uint32(desc.Primitive.Topology))
	hashWriteUint32(h, uint32(desc.Primitive.FrontFace))
	hashWriteUint32(h, uint32(desc.Primitive.CullMode))

	// Depth/stencil state
	ds := &desc.DepthStencil
	hashWriteUint32(h, uint32(ds.Format))
	hashWriteBool(h, ds.DepthWriteEnabled)
	hashWriteUint32(h, uint32(ds.DepthCompare))
	for _, face := range []drape.StencilFaceState{ds.StencilFront, ds.StencilBack} {
		hashWriteUint32(h, uint32(face.Compare))
		hashWriteUint32(h, uint32(face.FailOp))
		hashWriteUint32(h, uint32(face.DepthFailOp))
		hashWriteUint32(h, uint32(face.PassOp))
	}
	hashWriteUint32(h, ds.StencilReadMask)
	hashWriteUint32(h, ds.StencilWriteMask)

	// Color target
	hashWriteUint32(h, uint32(desc.ColorFormat))
	hashWriteUint32(h, uint32(desc.ColorWriteMask))
	if desc.Blend != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(desc.Blend.Color.SrcFactor))
		hashWriteUint32(h, uint32(desc.Blend.Color.DstFactor))
		hashWriteUint32(h, uint32(desc.Blend.Color.Operation))
		hashWriteUint32(h, uint32(desc.Blend.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(desc.Blend.Alpha.DstFactor))
		hashWriteUint32(h, uint32(desc.Blend.Alpha.Operation))
	} else {
		hashWriteBool(h, false)
	}

	return h.Sum64()
}

// hashWriteUint32 writes a uint32 to the hash.
func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteUint64 writes a uint64 to the hash.
func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// hashWriteString writes a length-prefixed string to the hash.
//
//nolint:gosec // G115: pipeline labels are short
func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

// hashWriteBool writes a bool to the hash.
func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
