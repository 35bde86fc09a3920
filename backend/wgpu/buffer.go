//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/drape"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// buffer is a GPU vertex or index buffer.
type buffer struct {
	label string
	raw   hal.Buffer
	size  uint64
	owner *Backend
}

func (b *buffer) Size() uint64 { return b.size }

// CreateVertexBuffer implements drape.GraphicsBackend.
func (b *Backend) CreateVertexBuffer(label string, data []byte) (drape.Buffer, error) {
	return b.createBuffer(label, data, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
}

// CreateIndexBuffer implements drape.GraphicsBackend.
func (b *Backend) CreateIndexBuffer(label string, indices []uint32) (drape.Buffer, error) {
	data := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(data[4*i:], idx)
	}
	return b.createBuffer(label, data, gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
}

func (b *Backend) createBuffer(label string, data []byte, usage gputypes.BufferUsage) (*buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	raw, err := b.createAndUploadBuffer(label, data, usage)
	if err != nil {
		return nil, err
	}
	return &buffer{label: label, raw: raw, size: uint64(len(data)), owner: b}, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data. Queue writes
// must be 4-byte aligned, so the buffer is padded.
func (b *Backend) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	size := max((uint64(len(data))+3)&^3, 4)
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if len(data) > 0 {
		if uint64(len(data)) != size {
			padded := make([]byte, size)
			copy(padded, data)
			data = padded
		}
		b.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

// DestroyBuffer implements drape.GraphicsBackend.
func (b *Backend) DestroyBuffer(buf drape.Buffer) {
	wb, ok := buf.(*buffer)
	if !ok || wb.owner != b || wb.raw == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.device.DestroyBuffer(wb.raw)
	}
	wb.raw = nil
}
