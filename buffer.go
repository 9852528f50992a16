package quadrax

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/Stack-Syndicate/quadrax/internal/gpu"
)

// Buffer is one GPU allocation holding a fixed number of Vec4 elements.
//
// A Buffer's kind decides where the data lives and how it travels; the
// contract is otherwise identical across kinds: capacity is fixed at
// creation, writes shorter than capacity update only a prefix, writes
// longer than capacity fail before any transfer.
//
// A Buffer is owned by one goroutine at a time. Callers that share a
// Buffer across goroutines serialize access themselves, waiting on
// outstanding handles before issuing dependent operations.
type Buffer struct {
	ctx      *Context
	kind     BufferKind
	capacity int

	device hal.Device
	queue  hal.Queue

	buf      hal.Buffer       // authoritative device allocation
	staging  *gpu.StagingPair // staged kind only
	reserved uint64           // bytes registered with the accountant

	destroyed bool
}

// kindLabel returns the HAL debug label prefix for a kind.
func kindLabel(kind BufferKind) string {
	switch kind {
	case BufferKindDynamic:
		return "vec4_dynamic"
	case BufferKindStatic:
		return "vec4_static"
	default:
		return "vec4_staged"
	}
}

// CreateBuffer allocates a buffer of the given kind sized and filled
// from data. Capacity is fixed to len(data); the initial contents go
// through the kind's own write path and are fully resident when
// CreateBuffer returns.
func (c *Context) CreateBuffer(kind BufferKind, data []Vec4) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	b, err := c.newBuffer(kind, len(data))
	if err != nil {
		return nil, err
	}

	h, err := b.Write(data)
	if err != nil {
		b.Destroy()
		return nil, err
	}
	if err := h.Wait(); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// CreateBufferSized allocates a zero-filled buffer of the given kind
// and capacity. Reading it before the first write yields zero vectors.
func (c *Context) CreateBufferSized(kind BufferKind, capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrEmptyData
	}
	b, err := c.newBuffer(kind, capacity)
	if err != nil {
		return nil, err
	}
	gpu.ZeroFill(c.session.Queue(), b.buf, b.SizeBytes())
	return b, nil
}

// CreateDynamicBuffer is shorthand for CreateBuffer(BufferKindDynamic, data).
func (c *Context) CreateDynamicBuffer(data []Vec4) (*Buffer, error) {
	return c.CreateBuffer(BufferKindDynamic, data)
}

// CreateStaticBuffer is shorthand for CreateBuffer(BufferKindStatic, data).
func (c *Context) CreateStaticBuffer(data []Vec4) (*Buffer, error) {
	return c.CreateBuffer(BufferKindStatic, data)
}

// CreateStagedBuffer is shorthand for CreateBuffer(BufferKindStaged, data).
func (c *Context) CreateStagedBuffer(data []Vec4) (*Buffer, error) {
	return c.CreateBuffer(BufferKindStaged, data)
}

// newBuffer allocates the device memory and, for staged buffers, the
// persistent staging pair. Contents are uninitialized; callers fill or
// zero them before handing the buffer out.
func (c *Context) newBuffer(kind BufferKind, capacity int) (*Buffer, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("quadrax: invalid buffer kind %d", int(kind))
	}
	if c.isClosed() {
		return nil, ErrContextClosed
	}

	sizeBytes := uint64(capacity) * Vec4Size

	// Staged buffers carry their staging pair in the accounting: the
	// pair is persistent GPU memory, not a transient.
	reserve := sizeBytes
	if kind == BufferKindStaged {
		reserve = 3 * sizeBytes
	}
	if err := c.mem.Reserve(reserve); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMemoryBudget, err)
	}

	label := kindLabel(kind)
	device := c.session.Device()
	queue := c.session.Queue()

	buf, err := gpu.CreateBuffer(device, label, sizeBytes, kind.deviceUsage())
	if err != nil {
		c.mem.Release(reserve)
		return nil, fmt.Errorf("quadrax: %w", err)
	}

	var staging *gpu.StagingPair
	if kind == BufferKindStaged {
		staging, err = gpu.CreateStagingPair(device, label, sizeBytes)
		if err != nil {
			device.DestroyBuffer(buf)
			c.mem.Release(reserve)
			return nil, fmt.Errorf("quadrax: %w", err)
		}
	}

	slogger().Debug("quadrax: buffer created",
		"kind", kind.String(),
		"capacity", capacity,
		"size_bytes", sizeBytes)

	return &Buffer{
		ctx:      c,
		kind:     kind,
		capacity: capacity,
		device:   device,
		queue:    queue,
		buf:      buf,
		staging:  staging,
		reserved: reserve,
	}, nil
}

// Kind returns the buffer's residency kind.
func (b *Buffer) Kind() BufferKind { return b.kind }

// Capacity returns the fixed element count the buffer was created with.
func (b *Buffer) Capacity() int { return b.capacity }

// SizeBytes returns the byte size of the authoritative allocation.
func (b *Buffer) SizeBytes() uint64 { return uint64(b.capacity) * Vec4Size }

// Write stores data into the buffer starting at element zero.
//
// Writing fewer elements than capacity updates only that prefix;
// trailing elements keep their prior values. Writing more elements than
// capacity fails with ErrCapacityExceeded before any transfer.
//
// Dynamic and Static writes complete before returning and yield a
// trivially-complete handle. Staged writes return a pending handle;
// the data is on the GPU once its Wait returns.
func (b *Buffer) Write(data []Vec4) (*WriteHandle, error) {
	if b.destroyed {
		return nil, ErrBufferDestroyed
	}
	if b.ctx.isClosed() {
		return nil, ErrContextClosed
	}
	if len(data) > b.capacity {
		return nil, fmt.Errorf("%w: %d elements into capacity %d",
			ErrCapacityExceeded, len(data), b.capacity)
	}
	if len(data) == 0 {
		return newTrivialWriteHandle(), nil
	}

	bytes := vec4sToBytes(data)

	switch b.kind {
	case BufferKindDynamic:
		// Host-visible memory: the queue write is the whole transfer.
		b.queue.WriteBuffer(b.buf, 0, bytes)
		return newTrivialWriteHandle(), nil

	case BufferKindStatic:
		return b.staticWrite(bytes)

	default: // BufferKindStaged
		return b.stagedWrite(bytes)
	}
}

// staticWrite moves bytes through an ephemeral upload staging buffer
// and blocks until the copy lands.
func (b *Buffer) staticWrite(bytes []byte) (*WriteHandle, error) {
	up, err := gpu.CreateUploadStaging(b.device, "vec4_static_upload", uint64(len(bytes)))
	if err != nil {
		return nil, fmt.Errorf("quadrax: %w", err)
	}
	b.queue.WriteBuffer(up, 0, bytes)

	sub, err := gpu.CopyBuffer(b.device, b.queue, "static_write", up, b.buf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(len(bytes))},
	})
	if err != nil {
		b.device.DestroyBuffer(up)
		return nil, fmt.Errorf("quadrax: %w", err)
	}
	sub.TrackBuffer(up)

	if err := sub.Wait(gpu.DefaultFenceTimeout); err != nil {
		return nil, fmt.Errorf("quadrax: %w", err)
	}
	return newTrivialWriteHandle(), nil
}

// stagedWrite copies the prefix into the persistent upload staging
// buffer and submits the staging-to-device copy without waiting.
func (b *Buffer) stagedWrite(bytes []byte) (*WriteHandle, error) {
	b.queue.WriteBuffer(b.staging.Upload, 0, bytes)

	sub, err := gpu.CopyBuffer(b.device, b.queue, "staged_write", b.staging.Upload, b.buf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(len(bytes))},
	})
	if err != nil {
		return nil, fmt.Errorf("quadrax: %w", err)
	}
	return newPendingWriteHandle(sub), nil
}

// Read retrieves the buffer's full contents, capacity elements long.
//
// Dynamic and Static reads complete before returning and yield a
// trivially-complete handle carrying the data. Staged reads return a
// pending handle; extraction from the readback staging buffer happens
// inside its Wait, after the device copy signals.
func (b *Buffer) Read() (*ReadHandle, error) {
	if b.destroyed {
		return nil, ErrBufferDestroyed
	}
	if b.ctx.isClosed() {
		return nil, ErrContextClosed
	}

	switch b.kind {
	case BufferKindDynamic:
		// Host-visible memory: the queue read is the whole transfer.
		raw := make([]byte, b.SizeBytes())
		if err := b.queue.ReadBuffer(b.buf, 0, raw); err != nil {
			return nil, fmt.Errorf("quadrax: read buffer: %w", err)
		}
		data := make([]Vec4, b.capacity)
		bytesToVec4s(raw, data)
		return newTrivialReadHandle(data), nil

	case BufferKindStatic:
		return b.staticRead()

	default: // BufferKindStaged
		return b.stagedRead()
	}
}

// staticRead copies the device contents into an ephemeral readback
// staging buffer, blocks on the fence, and extracts before returning.
func (b *Buffer) staticRead() (*ReadHandle, error) {
	size := b.SizeBytes()
	down, err := gpu.CreateReadbackStaging(b.device, "vec4_static_readback", size)
	if err != nil {
		return nil, fmt.Errorf("quadrax: %w", err)
	}

	err = gpu.CopyBufferSync(b.device, b.queue, "static_read", b.buf, down, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	if err != nil {
		b.device.DestroyBuffer(down)
		return nil, fmt.Errorf("quadrax: %w", err)
	}

	raw := make([]byte, size)
	if err := b.queue.ReadBuffer(down, 0, raw); err != nil {
		b.device.DestroyBuffer(down)
		return nil, fmt.Errorf("quadrax: readback: %w", err)
	}
	b.device.DestroyBuffer(down)

	data := make([]Vec4, b.capacity)
	bytesToVec4s(raw, data)
	return newTrivialReadHandle(data), nil
}

// stagedRead submits the device-to-readback copy and defers extraction
// to the handle's Wait.
func (b *Buffer) stagedRead() (*ReadHandle, error) {
	size := b.SizeBytes()
	sub, err := gpu.CopyBuffer(b.device, b.queue, "staged_read", b.buf, b.staging.Readback, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	if err != nil {
		return nil, fmt.Errorf("quadrax: %w", err)
	}
	return newPendingReadHandle(sub, b.queue, b.staging.Readback, b.capacity), nil
}

// Destroy releases the device allocation and any staging pair.
// Destroy is idempotent - multiple calls are safe. Outstanding handles
// over this buffer must be waited on before destroying it.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true

	// After Close the owned device is gone; releasing the HAL handles
	// would touch freed driver state. The accounting is still settled.
	if !b.ctx.isClosed() {
		b.device.DestroyBuffer(b.buf)
		b.staging.Destroy(b.device)
	}
	b.buf = nil
	b.staging = nil
	b.ctx.mem.Release(b.reserved)
}
