package quadrax

import "errors"

// Common errors returned by quadrax operations.
var (
	// ErrEmptyData is returned when creating a buffer with no elements.
	// Capacity comes from the initial data or an explicit size; a
	// zero-element buffer cannot be sized.
	ErrEmptyData = errors.New("quadrax: buffer requires at least one element")

	// ErrCapacityExceeded is returned when write data is longer than the
	// buffer's fixed capacity. The buffer's contents are left untouched.
	ErrCapacityExceeded = errors.New("quadrax: data exceeds buffer capacity")

	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("quadrax: buffer has been destroyed")

	// ErrContextClosed is returned when operating on a closed context.
	ErrContextClosed = errors.New("quadrax: context is closed")

	// ErrHandleConsumed is returned when waiting on a handle twice.
	// A handle is consumed by its first Wait.
	ErrHandleConsumed = errors.New("quadrax: completion handle already consumed")

	// ErrKindMismatch is returned when a dispatch binds a buffer that is
	// not BufferKindStaged. The dispatcher operates on staged buffers
	// only.
	ErrKindMismatch = errors.New("quadrax: dispatch requires staged buffers")

	// ErrCapacityMismatch is returned when the three dispatch buffers
	// disagree in capacity.
	ErrCapacityMismatch = errors.New("quadrax: dispatch buffers must have equal capacities")

	// ErrCountOutOfRange is returned when a dispatch element count is
	// not in [1, capacity].
	ErrCountOutOfRange = errors.New("quadrax: dispatch count out of range")

	// ErrInvalidOpCode is returned for operation codes outside the
	// kernel set.
	ErrInvalidOpCode = errors.New("quadrax: invalid operation code")

	// ErrNilBuffer is returned when a dispatch receives a nil buffer.
	ErrNilBuffer = errors.New("quadrax: buffer is nil")

	// ErrMemoryBudget is returned when an allocation would exceed the
	// context's configured memory budget. No device call is made.
	ErrMemoryBudget = errors.New("quadrax: memory budget exceeded")
)
