package quadrax

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/Stack-Syndicate/quadrax/internal/gpu"
)

// WriteHandle tracks completion of a write or dispatch submission.
//
// Handles are single-use: the first Wait consumes the handle and
// releases its GPU resources, a second Wait fails with
// ErrHandleConsumed. Operations that complete before returning hand
// out trivial handles whose Wait returns immediately.
type WriteHandle struct {
	sub      *gpu.Submission // nil when trivially complete
	consumed bool
}

func newTrivialWriteHandle() *WriteHandle {
	return &WriteHandle{}
}

func newPendingWriteHandle(sub *gpu.Submission) *WriteHandle {
	return &WriteHandle{sub: sub}
}

// Trivial reports whether the handle was already complete when issued.
func (h *WriteHandle) Trivial() bool { return h.sub == nil }

// Wait blocks until the submission completes, bounded by
// gpu.DefaultFenceTimeout. Waiting on a trivial handle returns
// immediately; waiting twice returns ErrHandleConsumed.
func (h *WriteHandle) Wait() error {
	if h.consumed {
		return ErrHandleConsumed
	}
	h.consumed = true
	if h.sub == nil {
		return nil
	}
	if err := h.sub.Wait(gpu.DefaultFenceTimeout); err != nil {
		return fmt.Errorf("quadrax: wait: %w", err)
	}
	return nil
}

// ReadHandle tracks completion of a read and carries its result.
//
// For trivial handles the data is captured at issue time. For pending
// handles the device-to-staging copy is in flight; Wait blocks on the
// fence and then extracts the elements from the readback staging
// buffer. Like WriteHandle, a ReadHandle is single-use.
type ReadHandle struct {
	sub      *gpu.Submission // nil when trivially complete
	consumed bool

	// pending extraction state
	queue   hal.Queue
	staging hal.Buffer
	count   int

	// trivial result
	data []Vec4
}

func newTrivialReadHandle(data []Vec4) *ReadHandle {
	return &ReadHandle{data: data}
}

func newPendingReadHandle(sub *gpu.Submission, queue hal.Queue, staging hal.Buffer, count int) *ReadHandle {
	return &ReadHandle{sub: sub, queue: queue, staging: staging, count: count}
}

// Trivial reports whether the handle was already complete when issued.
func (h *ReadHandle) Trivial() bool { return h.sub == nil }

// Wait blocks until the read completes and returns the elements,
// capacity entries long. Waiting on a trivial handle returns the
// captured data immediately; waiting twice returns ErrHandleConsumed.
func (h *ReadHandle) Wait() ([]Vec4, error) {
	if h.consumed {
		return nil, ErrHandleConsumed
	}
	h.consumed = true
	if h.sub == nil {
		return h.data, nil
	}

	if err := h.sub.Wait(gpu.DefaultFenceTimeout); err != nil {
		return nil, fmt.Errorf("quadrax: wait: %w", err)
	}

	raw := make([]byte, uint64(h.count)*Vec4Size)
	if err := h.queue.ReadBuffer(h.staging, 0, raw); err != nil {
		return nil, fmt.Errorf("quadrax: readback: %w", err)
	}
	data := make([]Vec4, h.count)
	bytesToVec4s(raw, data)
	return data, nil
}
