// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: MIT

package gpushare

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/Stack-Syndicate/quadrax"
)

// Common errors returned when a provider cannot back a context.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpushare: nil DeviceProvider")

	// ErrNoHALAccess is returned when the provider does not expose
	// HalDevice/HalQueue accessors.
	ErrNoHALAccess = errors.New("gpushare: provider does not expose HAL types")

	// ErrBadDeviceHandle is returned when the provider's HAL accessors
	// return values that are not usable wgpu/hal handles.
	ErrBadDeviceHandle = errors.New("gpushare: provider returned unusable HAL handles")
)

// NewContext creates a quadrax context on the provider's GPU device.
//
// The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. Ownership of the device stays
// with the provider: closing the returned context releases quadrax
// state but never destroys the shared device.
func NewContext(provider gpucontext.DeviceProvider) (*quadrax.Context, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}

	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrBadDeviceHandle)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrBadDeviceHandle)
	}

	ctx, err := quadrax.NewContextFromDevice(device, queue)
	if err != nil {
		return nil, fmt.Errorf("gpushare: %w", err)
	}
	return ctx, nil
}
