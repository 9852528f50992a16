// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: MIT

// Package gpushare creates quadrax contexts over GPU devices owned by
// other gogpu-based applications.
//
// A windowing or rendering stack that already opened a HAL device can
// hand it to quadrax instead of paying for a second device. The data
// flow is:
//
//	host application -> gpucontext.DeviceProvider -> quadrax.Context
//
// # Usage
//
// Basic usage with a gogpu application:
//
//	ctx, err := gpushare.NewContext(app.GPUContextProvider())
//	if err != nil {
//		// fall back to quadrax.NewContext() and a dedicated device
//	}
//	defer ctx.Close()
//
// The returned context never destroys the shared device; Close releases
// quadrax state only, and the host application keeps ownership.
//
// # Integration Without Circular Imports
//
// This package asserts optional methods rather than importing the host
// application: providers expose HalDevice() any and HalQueue() any
// returning wgpu/hal types. Providers without HAL access fail with
// ErrNoHALAccess, and callers can open a dedicated device instead.
package gpushare
