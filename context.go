package quadrax

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Stack-Syndicate/quadrax/internal/gpu"
)

// ContextOptions controls device selection and memory accounting for
// NewContextWithOptions.
type ContextOptions struct {
	// Backend selects the HAL backend. The zero value selects Vulkan.
	Backend gputypes.Backend

	// AdapterFilter restricts adapter selection. When non-nil, the
	// first enumerated adapter the filter accepts is opened. When nil,
	// discrete GPUs are preferred, then integrated GPUs, then the
	// first adapter enumerated.
	AdapterFilter func(*hal.ExposedAdapter) bool

	// MemoryBudget caps the total bytes of live buffer allocations.
	// Zero disables the cap. Exceeding the budget fails the allocation
	// before any device call; nothing is evicted.
	MemoryBudget uint64
}

// Context owns the GPU device session shared by every buffer and
// dispatcher created from it.
//
// A Context from NewContext owns its device and releases it in Close.
// A Context from NewContextFromDevice borrows the device; Close leaves
// it untouched. Either way, destroy buffers and dispatchers before
// closing the context that created them.
//
// Context methods are safe for concurrent use. Individual buffers are
// not: each Buffer is owned by one goroutine at a time.
type Context struct {
	session *gpu.Session
	mem     *gpu.Accountant
	closed  atomic.Bool
}

// NewContext opens a GPU context with default options: Vulkan backend,
// discrete-GPU-first adapter selection, no memory budget.
func NewContext() (*Context, error) {
	return NewContextWithOptions(ContextOptions{})
}

// NewContextWithOptions opens a GPU context with explicit options.
func NewContextWithOptions(opts ContextOptions) (*Context, error) {
	session, err := gpu.Open(gpu.SessionOptions{
		Backend:       opts.Backend,
		AdapterFilter: opts.AdapterFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("quadrax: open GPU session: %w", err)
	}
	return &Context{
		session: session,
		mem:     gpu.NewAccountant(opts.MemoryBudget),
	}, nil
}

// NewContextFromDevice builds a Context around an externally managed
// device and queue, typically shared out of a host application. Close
// on the returned Context does not destroy them.
func NewContextFromDevice(device hal.Device, queue hal.Queue) (*Context, error) {
	if device == nil {
		return nil, fmt.Errorf("quadrax: device is nil")
	}
	if queue == nil {
		return nil, fmt.Errorf("quadrax: queue is nil")
	}
	return &Context{
		session: gpu.Wrap(device, queue),
		mem:     gpu.NewAccountant(0),
	}, nil
}

// Device returns the underlying HAL device.
// Returns nil after Close.
func (c *Context) Device() hal.Device {
	if c.closed.Load() {
		return nil
	}
	return c.session.Device()
}

// Queue returns the underlying HAL queue.
// Returns nil after Close.
func (c *Context) Queue() hal.Queue {
	if c.closed.Load() {
		return nil
	}
	return c.session.Queue()
}

// AdapterName returns the name of the opened adapter.
// Empty for adopted devices.
func (c *Context) AdapterName() string {
	return c.session.AdapterName()
}

// MemoryStats contains buffer allocation statistics for a Context.
// See the field documentation in the internal accountant; the zero
// value means no allocations yet.
type MemoryStats = gpu.MemoryStats

// MemoryStats returns a snapshot of buffer allocation accounting.
func (c *Context) MemoryStats() MemoryStats {
	return c.mem.Stats()
}

// Close releases the GPU session. Borrowed devices are left untouched.
// Close is idempotent - multiple calls are safe.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.session.Close()
	slogger().Debug("quadrax: context closed")
	return nil
}

// isClosed reports whether Close has been called.
func (c *Context) isClosed() bool {
	return c.closed.Load()
}
