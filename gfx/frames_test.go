// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// stuckQueue accepts submissions but never completes them.
type stuckQueue struct {
	hal.Queue
	submitted uint64
}

func (q *stuckQueue) Submit([]hal.CommandBuffer) (uint64, error) {
	q.submitted++
	return q.submitted, nil
}

func (q *stuckQueue) PollCompleted() uint64 { return 0 }

func TestNewFrameSyncClamp(t *testing.T) {
	_, dev := openNoop(t)
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{9, primer.MaxFramesInFlight},
	}
	for _, tt := range tests {
		if got := NewFrameSync(dev.HalDevice(), dev.HalQueue(), tt.in).Len(); got != tt.want {
			t.Errorf("NewFrameSync(%d).Len() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFrameSyncRing(t *testing.T) {
	_, dev := openNoop(t)
	fs := NewFrameSync(dev.HalDevice(), dev.HalQueue(), 2)
	defer fs.Destroy()

	var last uint64
	for i := 0; i < 5; i++ {
		if got := fs.Current(); got != i%2 {
			t.Fatalf("frame %d: Current() = %d, want %d", i, got, i%2)
		}
		if _, err := fs.Begin(); err != nil {
			t.Fatalf("frame %d: Begin() error = %v", i, err)
		}
		if !fs.Recording() {
			t.Fatalf("frame %d: not recording after Begin", i)
		}
		idx, err := fs.Submit()
		if err != nil {
			t.Fatalf("frame %d: Submit() error = %v", i, err)
		}
		if idx <= last {
			t.Errorf("frame %d: submission index %d not after %d", i, idx, last)
		}
		if got := fs.SubmissionIndex(i % 2); got != idx {
			t.Errorf("frame %d: slot index = %d, want %d", i, got, idx)
		}
		last = idx
	}

	if fs.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5", fs.Frame())
	}
	if fs.LastSubmission() != last {
		t.Errorf("LastSubmission() = %d, want %d", fs.LastSubmission(), last)
	}
	if fs.Completed() < last {
		t.Errorf("Completed() = %d, noop queue should have finished %d", fs.Completed(), last)
	}
	if err := fs.WaitAll(); err != nil {
		t.Errorf("WaitAll() error = %v", err)
	}
}

func TestFrameSyncSubmitWithoutBegin(t *testing.T) {
	_, dev := openNoop(t)
	fs := NewFrameSync(dev.HalDevice(), dev.HalQueue(), 2)
	defer fs.Destroy()

	if _, err := fs.Submit(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Submit() error = %v, want ErrNotRecording", err)
	}
}

func TestFrameSyncBeginTwice(t *testing.T) {
	_, dev := openNoop(t)
	fs := NewFrameSync(dev.HalDevice(), dev.HalQueue(), 2)
	defer fs.Destroy()

	a, err := fs.Begin()
	if err != nil {
		t.Fatal(err)
	}
	b, err := fs.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Begin while recording should return the same encoder")
	}

	fs.Discard()
	if fs.Recording() {
		t.Error("Discard should end the recording")
	}
	if fs.Current() != 0 || fs.Frame() != 0 {
		t.Errorf("Discard advanced the ring: current %d, frame %d", fs.Current(), fs.Frame())
	}
}

func TestFrameSyncTimeout(t *testing.T) {
	_, dev := openNoop(t)
	q := &stuckQueue{Queue: dev.HalQueue()}
	fs := NewFrameSync(dev.HalDevice(), q, 1)
	fs.timeout = 5 * time.Millisecond

	if _, err := fs.Begin(); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Submit(); err != nil {
		t.Fatal(err)
	}

	// The only slot still holds the first submission.
	if _, err := fs.Begin(); !errors.Is(err, ErrFrameTimeout) {
		t.Errorf("Begin() error = %v, want ErrFrameTimeout", err)
	}
	if err := fs.WaitAll(); !errors.Is(err, ErrFrameTimeout) {
		t.Errorf("WaitAll() error = %v, want ErrFrameTimeout", err)
	}
}

func TestFrameSyncDestroy(t *testing.T) {
	_, dev := openNoop(t)
	fs := NewFrameSync(dev.HalDevice(), dev.HalQueue(), 2)
	if _, err := fs.Begin(); err != nil {
		t.Fatal(err)
	}
	fs.Destroy()
	fs.Destroy()

	if _, err := fs.Begin(); !errors.Is(err, primer.ErrClosed) {
		t.Errorf("Begin after Destroy error = %v, want ErrClosed", err)
	}
}
