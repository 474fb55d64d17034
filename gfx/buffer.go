// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// createAndUploadBuffer creates a buffer sized for data and writes data
// into it through the queue. Sizes are rounded up to 4 bytes as
// WriteBuffer requires.
func createAndUploadBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  align4(uint64(len(data))),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if len(data) > 0 {
		if err := queue.WriteBuffer(buf, 0, pad4(data)); err != nil {
			device.DestroyBuffer(buf)
			return nil, fmt.Errorf("write %s: %w", label, err)
		}
	}
	return buf, nil
}

func align4(n uint64) uint64 { return (n + 3) &^ 3 }

// pad4 returns data, or a copy padded with zeros to a multiple of 4 bytes.
func pad4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, align4(uint64(len(data))))
	copy(out, data)
	return out
}

// dynamicBuffer is a buffer rewritten every frame. It grows to the next
// power of two when the data no longer fits and never shrinks.
type dynamicBuffer struct {
	label string
	usage gputypes.BufferUsage

	buf      hal.Buffer
	capacity uint64

	// used is the byte length of the last Write.
	used uint64
}

const minDynamicBufferSize = 1024

// write uploads data, reallocating when needed.
func (b *dynamicBuffer) write(device hal.Device, queue hal.Queue, data []byte) error {
	size := align4(uint64(len(data)))
	if size > b.capacity || b.buf == nil {
		capacity := uint64(minDynamicBufferSize)
		for capacity < size {
			capacity *= 2
		}
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: b.label,
			Size:  capacity,
			Usage: b.usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", b.label, err)
		}
		b.destroy(device)
		b.buf = buf
		b.capacity = capacity
		primer.Logger().Debug("gfx: buffer grown", "label", b.label, "bytes", capacity)
	}

	b.used = uint64(len(data))
	if len(data) == 0 {
		return nil
	}
	if err := queue.WriteBuffer(b.buf, 0, pad4(data)); err != nil {
		return fmt.Errorf("write %s: %w", b.label, err)
	}
	return nil
}

func (b *dynamicBuffer) destroy(device hal.Device) {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf = nil
		b.capacity = 0
		b.used = 0
	}
}
