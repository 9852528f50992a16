// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MinBufferSize is the smallest allocation the HAL accepts.
// Requested sizes below this are rounded up.
const MinBufferSize = 4

// CreateBuffer allocates a GPU buffer with the given usage flags.
func CreateBuffer(device hal.Device, label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if size < MinBufferSize {
		size = MinBufferSize
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	return buf, nil
}

// CreateUploadStaging allocates a host-visible buffer used as the source
// of host-to-device copies. The queue writes into it, which needs
// CopyDst; the copy engine then reads from it.
func CreateUploadStaging(device hal.Device, label string, size uint64) (hal.Buffer, error) {
	return CreateBuffer(device, label, size,
		gputypes.BufferUsageMapWrite|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
}

// CreateReadbackStaging allocates a host-visible buffer used as the
// destination of device-to-host copies. The copy engine writes into it;
// the queue reads from it.
func CreateReadbackStaging(device hal.Device, label string, size uint64) (hal.Buffer, error) {
	return CreateBuffer(device, label, size,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
}

// ZeroFill writes zeros over the first size bytes of a buffer.
// Used on freshly allocated device buffers so reads before the first
// write observe zeroes rather than driver garbage.
func ZeroFill(queue hal.Queue, buf hal.Buffer, size uint64) {
	if size == 0 {
		return
	}
	zeros := make([]byte, size)
	queue.WriteBuffer(buf, 0, zeros)
}

// StagingPair is the persistent staging allocation backing a staged
// buffer: one upload buffer for host-to-device travel and one readback
// buffer for the reverse direction. Both span the full capacity of the
// device buffer they serve, so partial transfers reuse a prefix.
type StagingPair struct {
	Upload   hal.Buffer
	Readback hal.Buffer
}

// CreateStagingPair allocates both halves of a staging pair.
// On error neither buffer leaks.
func CreateStagingPair(device hal.Device, label string, size uint64) (*StagingPair, error) {
	up, err := CreateUploadStaging(device, label+"_upload", size)
	if err != nil {
		return nil, err
	}
	down, err := CreateReadbackStaging(device, label+"_readback", size)
	if err != nil {
		device.DestroyBuffer(up)
		return nil, err
	}
	return &StagingPair{Upload: up, Readback: down}, nil
}

// Destroy releases both staging buffers. Safe to call on a nil pair.
func (p *StagingPair) Destroy(device hal.Device) {
	if p == nil {
		return
	}
	if p.Upload != nil {
		device.DestroyBuffer(p.Upload)
		p.Upload = nil
	}
	if p.Readback != nil {
		device.DestroyBuffer(p.Readback)
		p.Readback = nil
	}
}
