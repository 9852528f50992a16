// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu provides the device-facing core of the quadrax library.
//
// This is an internal package used by quadrax for buffer residency and
// compute dispatch. It leverages WebGPU via the gogpu/wgpu Pure Go HAL
// (zero CGO), which supports Vulkan, Metal, and DX12 backends depending
// on the platform.
//
// # Architecture Overview
//
// The package is organized around four concerns:
//
//   - Session: instance/adapter/device bootstrap and teardown
//   - Buffer helpers: usage-flag policy, staging pairs, zero-fill
//   - Submission: fence-tracked command submission for async transfers
//   - Kernel: WGSL compute pipeline for element-wise vector operations
//
// A typical flow:
//
//	Session.Open -> CreateBuffer -> WriteBuffer/CopyBuffer -> Submission.Wait
//	                             -> Kernel.Dispatch ----------^
//
// # Data Movement
//
// Host-visible buffers (MapRead/MapWrite usage) move data through
// queue.WriteBuffer and queue.ReadBuffer directly. Device-local buffers
// travel through persistent staging buffers and CopyBufferToBuffer,
// tracked by a fence so callers can overlap CPU work with the transfer.
//
// # Memory Accounting
//
// An Accountant tracks bytes of live GPU allocations against an optional
// budget. Unlike a cache it never evicts: exceeding the budget fails the
// allocation and the caller decides what to free.
//
// # Thread Safety
//
// Session and Kernel are safe for concurrent use after initialization.
// Submission is single-owner: exactly one goroutine calls Wait.
//
// # Requirements
//
//   - Go 1.25+
//   - gogpu/wgpu module (github.com/gogpu/wgpu)
//   - A GPU that supports Vulkan, Metal, or DX12 (for actual execution)
//
// # Related Packages
//
//   - github.com/Stack-Syndicate/quadrax: public buffer and dispatch API
//   - github.com/gogpu/wgpu: Pure Go WebGPU implementation
//   - github.com/gogpu/naga: WGSL to SPIR-V shader translation
package gpu
