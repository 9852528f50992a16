// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// DefaultFenceTimeout bounds how long Wait blocks on a submission.
// Transfers and dispatches in this package finish in milliseconds; the
// bound exists so a lost device surfaces as an error instead of a hang.
const DefaultFenceTimeout = 30 * time.Second

// ErrFenceTimeout is returned when a submission does not signal its
// fence within the timeout.
var ErrFenceTimeout = errors.New("gpu: fence wait timed out")

// Submission tracks one in-flight command buffer and the resources that
// must outlive it. Wait blocks until the GPU signals the fence, then
// destroys the fence, frees the command buffer, and releases any
// tracked bind groups and scratch buffers.
//
// A Submission is single-owner: exactly one goroutine calls Wait.
type Submission struct {
	device     hal.Device
	fence      hal.Fence
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
	scratch    []hal.Buffer

	waited bool
	err    error
}

// Submit sends a finished command buffer to the queue behind a fresh
// fence and returns the tracking Submission.
func Submit(device hal.Device, queue hal.Queue, cmdBuf hal.CommandBuffer) (*Submission, error) {
	fence, err := device.CreateFence()
	if err != nil {
		device.FreeCommandBuffer(cmdBuf)
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		device.DestroyFence(fence)
		device.FreeCommandBuffer(cmdBuf)
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	return &Submission{device: device, fence: fence, cmdBuf: cmdBuf}, nil
}

// TrackBindGroup records a bind group to destroy once the fence signals.
func (s *Submission) TrackBindGroup(bg hal.BindGroup) {
	s.bindGroups = append(s.bindGroups, bg)
}

// TrackBuffer records a scratch buffer to destroy once the fence signals.
func (s *Submission) TrackBuffer(buf hal.Buffer) {
	s.scratch = append(s.scratch, buf)
}

// Wait blocks until the submission completes, then releases all tracked
// resources. Subsequent calls return the first result without blocking.
func (s *Submission) Wait(timeout time.Duration) error {
	if s.waited {
		return s.err
	}
	s.waited = true

	ok, err := s.device.Wait(s.fence, 1, timeout)
	switch {
	case err != nil:
		s.err = fmt.Errorf("gpu: wait for fence: %w", err)
	case !ok:
		s.err = fmt.Errorf("%w after %v", ErrFenceTimeout, timeout)
	}
	s.release()
	return s.err
}

// release destroys all tracked per-submission resources.
func (s *Submission) release() {
	if s.fence != nil {
		s.device.DestroyFence(s.fence)
		s.fence = nil
	}
	if s.cmdBuf != nil {
		s.device.FreeCommandBuffer(s.cmdBuf)
		s.cmdBuf = nil
	}
	for _, g := range s.bindGroups {
		s.device.DestroyBindGroup(g)
	}
	s.bindGroups = nil
	for _, b := range s.scratch {
		s.device.DestroyBuffer(b)
	}
	s.scratch = nil
}

// CopyBuffer encodes a buffer-to-buffer copy and submits it.
// The returned Submission completes when the copy is visible.
func CopyBuffer(device hal.Device, queue hal.Queue, label string, src, dst hal.Buffer, regions []hal.BufferCopy) (*Submission, error) {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(src, dst, regions)
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	return Submit(device, queue, cmdBuf)
}

// CopyBufferSync runs CopyBuffer and blocks until the copy completes.
func CopyBufferSync(device hal.Device, queue hal.Queue, label string, src, dst hal.Buffer, regions []hal.BufferCopy) error {
	sub, err := CopyBuffer(device, queue, label, src, dst, regions)
	if err != nil {
		return err
	}
	return sub.Wait(DefaultFenceTimeout)
}
