// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// SessionOptions controls backend and adapter selection for Open.
type SessionOptions struct {
	// Backend selects the HAL backend. The zero value selects Vulkan.
	Backend gputypes.Backend

	// AdapterFilter restricts adapter selection. When non-nil, the first
	// enumerated adapter the filter accepts is opened and nil is returned
	// if none match. When nil, discrete GPUs are preferred, then
	// integrated GPUs, then the first adapter enumerated.
	AdapterFilter func(*hal.ExposedAdapter) bool
}

// Session owns the HAL instance, device, and queue for one GPU context.
//
// A Session opened via Open owns its resources and releases them in Close.
// A Session created via Wrap borrows an externally managed device and
// queue; Close leaves them untouched.
type Session struct {
	instance    hal.Instance
	device      hal.Device
	queue       hal.Queue
	adapterName string
	external    bool
}

// Open enumerates adapters on the selected backend and opens a device.
func Open(opts SessionOptions) (*Session, error) {
	backendID := opts.Backend
	if backendID == 0 {
		backendID = gputypes.BackendVulkan
	}
	backend, ok := hal.GetBackend(backendID)
	if !ok {
		return nil, fmt.Errorf("gpu: backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no GPU adapters found")
	}

	selected := selectAdapter(adapters, opts.AdapterFilter)
	if selected == nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no adapter accepted by filter")
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	s := &Session{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}
	slogger().Info("gpu: session opened", "adapter", s.adapterName)
	return s, nil
}

// selectAdapter applies the selection policy. A non-nil filter is
// authoritative; the default prefers discrete over integrated GPUs and
// falls back to the first adapter (typically a software rasterizer).
func selectAdapter(adapters []hal.ExposedAdapter, filter func(*hal.ExposedAdapter) bool) *hal.ExposedAdapter {
	if filter != nil {
		for i := range adapters {
			if filter(&adapters[i]) {
				return &adapters[i]
			}
		}
		return nil
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Wrap builds a Session around an externally managed device and queue.
// Close on the returned Session does not destroy them.
func Wrap(device hal.Device, queue hal.Queue) *Session {
	return &Session{
		device:   device,
		queue:    queue,
		external: true,
	}
}

// Device returns the HAL device.
func (s *Session) Device() hal.Device { return s.device }

// Queue returns the HAL queue.
func (s *Session) Queue() hal.Queue { return s.queue }

// AdapterName returns the name of the opened adapter.
// Empty for wrapped sessions.
func (s *Session) AdapterName() string { return s.adapterName }

// External reports whether the device is externally managed.
func (s *Session) External() bool { return s.external }

// Close releases the device and instance. Borrowed devices (Wrap) are
// left untouched. Close is idempotent.
func (s *Session) Close() {
	if !s.external && s.device != nil {
		s.device.Destroy()
	}
	s.device = nil
	s.queue = nil
	if s.instance != nil {
		s.instance.Destroy()
		s.instance = nil
	}
}
