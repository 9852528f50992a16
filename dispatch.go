package quadrax

import (
	"fmt"

	"github.com/Stack-Syndicate/quadrax/internal/gpu"
)

// OpCode selects the element-wise operation a dispatch performs.
type OpCode uint32

const (
	// OpAdd computes out[i] = a[i] + b[i] per lane.
	OpAdd OpCode = iota
	// OpSub computes out[i] = a[i] - b[i] per lane.
	OpSub
	// OpDot computes the 4-component dot product of a[i] and b[i] and
	// broadcasts it to all four lanes of out[i].
	OpDot
	// OpMul computes out[i] = a[i] * b[i] per lane.
	OpMul
	// OpCross computes the cross product of the xyz lanes; the w lane
	// of out[i] is zero.
	OpCross
	// OpDistance computes the euclidean distance between a[i] and b[i]
	// over all four lanes and broadcasts it to all four lanes of out[i].
	OpDistance

	opCodeCount
)

// String returns the operation name.
func (op OpCode) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpDot:
		return "dot"
	case OpMul:
		return "mul"
	case OpCross:
		return "cross"
	case OpDistance:
		return "distance"
	default:
		return "unknown"
	}
}

// Valid reports whether op names a supported operation.
func (op OpCode) Valid() bool { return op < opCodeCount }

// Dispatcher runs element-wise Vec4 operations on the GPU.
//
// A Dispatcher owns one compiled compute pipeline shared by all its
// dispatches. It operates on staged buffers only: inputs and output
// must all be BufferKindStaged with equal capacities.
//
// Dispatch submits without waiting and returns a pending WriteHandle;
// results land in the output buffer once the handle's Wait returns.
// Multiple dispatches may be in flight at once as long as they touch
// disjoint output buffers.
type Dispatcher struct {
	ctx    *Context
	kernel *gpu.Kernel
}

// NewDispatcher compiles the vector-ops pipeline on the context's
// device. The caller owns the returned Dispatcher and must Destroy it.
func NewDispatcher(ctx *Context) (*Dispatcher, error) {
	if ctx == nil || ctx.isClosed() {
		return nil, ErrContextClosed
	}
	kernel, err := gpu.NewKernel(ctx.session.Device(), ctx.session.Queue())
	if err != nil {
		return nil, fmt.Errorf("quadrax: create dispatcher: %w", err)
	}
	return &Dispatcher{ctx: ctx, kernel: kernel}, nil
}

// Dispatch runs op over the first count elements of a and b, storing
// results in the first count elements of out. Elements of out beyond
// count keep their prior values.
//
// All three buffers must be staged, share one capacity, and be alive;
// count must satisfy 0 < count <= capacity. Every argument is
// validated before any GPU resource is created, so a failed Dispatch
// leaves no work in flight.
func (d *Dispatcher) Dispatch(op OpCode, a, b, out *Buffer, count int) (*WriteHandle, error) {
	if d.kernel == nil || d.ctx.isClosed() {
		return nil, ErrContextClosed
	}
	if a == nil || b == nil || out == nil {
		return nil, ErrNilBuffer
	}
	for _, buf := range []*Buffer{a, b, out} {
		if buf.destroyed {
			return nil, ErrBufferDestroyed
		}
		if buf.kind != BufferKindStaged {
			return nil, fmt.Errorf("%w: got %s", ErrKindMismatch, buf.kind)
		}
	}
	if a.capacity != b.capacity || a.capacity != out.capacity {
		return nil, fmt.Errorf("%w: %d, %d, %d",
			ErrCapacityMismatch, a.capacity, b.capacity, out.capacity)
	}
	if count <= 0 || count > a.capacity {
		return nil, fmt.Errorf("%w: count %d, capacity %d",
			ErrCountOutOfRange, count, a.capacity)
	}
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOpCode, uint32(op))
	}

	sub, err := d.kernel.Dispatch(a.buf, b.buf, out.buf, gpu.KernelParams{
		Op:    uint32(op),
		Count: uint32(count),
	})
	if err != nil {
		return nil, fmt.Errorf("quadrax: dispatch %s: %w", op, err)
	}
	return newPendingWriteHandle(sub), nil
}

// Destroy releases the compute pipeline. Destroy is idempotent -
// multiple calls are safe. In-flight dispatches must be waited on
// before destroying the dispatcher.
func (d *Dispatcher) Destroy() {
	if d.kernel == nil {
		return
	}
	if !d.ctx.isClosed() {
		d.kernel.Destroy()
	}
	d.kernel = nil
}
