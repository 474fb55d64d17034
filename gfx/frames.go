// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// FrameTimeout bounds how long Begin waits for a frame slot to retire.
const FrameTimeout = 5 * time.Second

// pollInterval is the sleep between PollCompleted checks.
const pollInterval = 100 * time.Microsecond

// frameSlot is one entry of the frames-in-flight ring.
type frameSlot struct {
	// encoder is non-nil only while the slot is recording.
	encoder hal.CommandEncoder

	// cmdBuf is the last command buffer submitted from this slot. It is
	// freed once index has completed.
	cmdBuf hal.CommandBuffer

	// index is the queue submission index of cmdBuf; 0 if none.
	index uint64
}

// FrameSync bounds the number of frames the CPU may record ahead of the
// GPU. Each slot remembers the submission index of its last frame; Begin
// blocks until the queue reports that index complete before the slot is
// reused.
//
// Usage per frame:
//
//	enc, err := fs.Begin()
//	// record into enc
//	idx, err := fs.Submit()
type FrameSync struct {
	device hal.Device
	queue  hal.Queue

	slots   []frameSlot
	current int
	timeout time.Duration

	// frame counts submitted frames; last is the most recent submission
	// index.
	frame uint64
	last  uint64
}

// NewFrameSync creates a ring of n slots, clamped to 1..MaxFramesInFlight.
func NewFrameSync(device hal.Device, queue hal.Queue, n int) *FrameSync {
	n = max(1, min(n, primer.MaxFramesInFlight))
	return &FrameSync{
		device:  device,
		queue:   queue,
		slots:   make([]frameSlot, n),
		timeout: FrameTimeout,
	}
}

// Len returns the number of slots.
func (f *FrameSync) Len() int { return len(f.slots) }

// Current returns the slot the next Begin will use.
func (f *FrameSync) Current() int { return f.current }

// Frame returns the number of frames submitted so far.
func (f *FrameSync) Frame() uint64 { return f.frame }

// LastSubmission returns the index of the most recent submission.
func (f *FrameSync) LastSubmission() uint64 { return f.last }

// Completed returns the highest submission index the queue has finished.
func (f *FrameSync) Completed() uint64 {
	if f.queue == nil {
		return f.last
	}
	return f.queue.PollCompleted()
}

// SubmissionIndex returns the submission index last recorded in slot i.
func (f *FrameSync) SubmissionIndex(i int) uint64 { return f.slots[i].index }

// Recording reports whether a frame is between Begin and Submit.
func (f *FrameSync) Recording() bool { return f.slots[f.current].encoder != nil }

// Begin waits for the current slot's previous frame to complete, releases
// its command buffer and returns a new encoder that is already recording.
func (f *FrameSync) Begin() (hal.CommandEncoder, error) {
	if f.device == nil {
		return nil, primer.ErrClosed
	}
	slot := &f.slots[f.current]
	if slot.encoder != nil {
		return slot.encoder, nil
	}

	if err := f.waitFor(slot.index); err != nil {
		return nil, fmt.Errorf("frame slot %d: %w", f.current, err)
	}
	f.release(slot)

	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: fmt.Sprintf("frame_encoder_%d", f.current),
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(fmt.Sprintf("frame_%d", f.frame)); err != nil {
		encoder.Destroy()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	slot.encoder = encoder
	return encoder, nil
}

// Submit ends the current recording, submits it and advances the ring.
// It returns the submission index.
func (f *FrameSync) Submit() (uint64, error) {
	slot := &f.slots[f.current]
	if slot.encoder == nil {
		return 0, ErrNotRecording
	}
	encoder := slot.encoder
	slot.encoder = nil

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return 0, fmt.Errorf("end encoding: %w", err)
	}
	index, err := f.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		f.device.FreeCommandBuffer(cmdBuf)
		return 0, fmt.Errorf("submit: %w", err)
	}

	slot.cmdBuf = cmdBuf
	slot.index = index
	f.last = index
	f.frame++
	f.current = (f.current + 1) % len(f.slots)
	return index, nil
}

// Discard abandons the current recording without submitting it.
func (f *FrameSync) Discard() {
	slot := &f.slots[f.current]
	if slot.encoder == nil {
		return
	}
	slot.encoder.DiscardEncoding()
	slot.encoder.Destroy()
	slot.encoder = nil
}

// Wait blocks until the queue has completed submission index.
func (f *FrameSync) Wait(index uint64) error {
	return f.waitFor(index)
}

// WaitAll blocks until every slot's last frame has completed and releases
// their command buffers.
func (f *FrameSync) WaitAll() error {
	for i := range f.slots {
		if err := f.waitFor(f.slots[i].index); err != nil {
			return fmt.Errorf("frame slot %d: %w", i, err)
		}
		f.release(&f.slots[i])
	}
	return nil
}

// Destroy waits for outstanding frames and releases all slots. Safe to
// call multiple times.
func (f *FrameSync) Destroy() {
	if f.device == nil {
		return
	}
	f.Discard()
	if err := f.WaitAll(); err != nil {
		primer.Logger().Warn("gfx: frame sync destroy", "err", err)
	}
	f.device = nil
	f.queue = nil
}

func (f *FrameSync) waitFor(index uint64) error {
	if index == 0 || f.queue.PollCompleted() >= index {
		return nil
	}
	deadline := time.Now().Add(f.timeout)
	for f.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrFrameTimeout, index, f.timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

func (f *FrameSync) release(slot *frameSlot) {
	if slot.cmdBuf != nil {
		f.device.FreeCommandBuffer(slot.cmdBuf)
		slot.cmdBuf = nil
	}
}
