// Package quadrax provides GPU-resident vector buffers and compute
// dispatch for batches of 4-component float vectors.
//
// # Overview
//
// quadrax is a Pure Go library for moving arrays of Vec4 values between
// host and GPU memory and running element-wise arithmetic on them with
// compute shaders. It builds on the GoGPU ecosystem (gogpu/wgpu, zero
// CGO) and supports Vulkan, Metal, and DX12 backends depending on the
// platform.
//
// # Quick Start
//
//	import "github.com/Stack-Syndicate/quadrax"
//
//	ctx, err := quadrax.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	a, _ := ctx.CreateStagedBuffer([]quadrax.Vec4{{1, 1, 1, 1}})
//	b, _ := ctx.CreateStagedBuffer([]quadrax.Vec4{{1, 1, 1, 1}})
//	out, _ := ctx.CreateBufferSized(quadrax.BufferKindStaged, 1)
//	defer a.Destroy()
//	defer b.Destroy()
//	defer out.Destroy()
//
//	d, _ := quadrax.NewDispatcher(ctx)
//	defer d.Destroy()
//
//	handle, _ := d.Dispatch(quadrax.OpAdd, a, b, out, 1)
//	_ = handle.Wait()
//
//	read, _ := out.Read()
//	sum, _ := read.Wait() // [(2, 2, 2, 2)]
//
// # Buffer Variants
//
// Buffers declare a residency intent at creation and never change it:
//
//   - Dynamic: host-visible memory, synchronous mapped reads and writes,
//     no command submission. Best for small, frequently changed data.
//   - Static: device-local memory, synchronous reads and writes through
//     an ephemeral staging buffer per call. Simple, good for set-once
//     data.
//   - Staged: device-local memory with a persistent staging pair.
//     Reads and writes return completion handles so transfers overlap
//     host work. Best for large or frequently updated data, and the
//     variant the Dispatcher operates on.
//
// All variants share the same contract: fixed capacity in elements,
// prefix writes leave the tail unchanged, oversized writes fail before
// any transfer.
//
// # Completion Handles
//
// Asynchronous operations return a WriteHandle or ReadHandle. Wait
// blocks until the GPU signals completion and releases the resources
// tracked by the submission. A handle is consumed by its first Wait;
// waiting twice is an error. Synchronous operations return
// trivially-complete handles so call sites stay uniform.
//
// # Compute Dispatch
//
// A Dispatcher runs element-wise operations over three staged buffers:
// out[i] = op(a[i], b[i]). Six operations are supported: Add, Sub, Dot,
// Mul (component-wise), Cross (xyz lanes), and Distance. Scalar-valued
// operations broadcast their result across all four output lanes.
//
// # Device Sharing
//
// By default NewContext opens its own Vulkan device. Applications that
// already run a gogpu window share their device instead via
// integration/gpushare, avoiding a second device and enabling zero-copy
// interop.
//
// # Logging
//
// quadrax produces no log output by default. Call SetLogger with a
// *slog.Logger to enable structured diagnostics.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Context, Buffer, WriteHandle, ReadHandle, Dispatcher
//   - Internal: gpu (HAL session, transfers, kernel), gpu/vecops (CPU
//     reference semantics)
//   - Integration: gpushare (gogpu device adoption)
package quadrax

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
