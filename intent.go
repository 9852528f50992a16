package quadrax

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Intent declares a buffer's residency and access policy. It is fixed
// at creation and never changes for the lifetime of the buffer.
type Intent int

const (
	// IntentStatic prefers device-local memory with no direct host
	// access. Data travels through copy commands only.
	IntentStatic Intent = iota

	// IntentDynamic prefers host-visible memory. Data moves through
	// direct mapped access with no command submission.
	IntentDynamic
)

// String returns the string representation of an Intent.
func (i Intent) String() string {
	switch i {
	case IntentStatic:
		return "Static"
	case IntentDynamic:
		return "Dynamic"
	default:
		return fmt.Sprintf("Unknown(%d)", int(i))
	}
}

// usage returns the base HAL usage flags an intent grants. Dynamic
// keeps CopyDst because queue writes stage through a transfer even on
// host-visible memory.
func (i Intent) usage() gputypes.BufferUsage {
	if i == IntentDynamic {
		return gputypes.BufferUsageMapRead |
			gputypes.BufferUsageMapWrite |
			gputypes.BufferUsageCopyDst |
			gputypes.BufferUsageUniform
	}
	return gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
}

// BufferKind identifies the residency strategy of a Buffer. The two
// static-intent kinds differ only in how data travels: Static moves it
// synchronously through ephemeral staging, Staged asynchronously
// through a persistent staging pair.
type BufferKind int

const (
	// BufferKindDynamic is host-visible with synchronous mapped access.
	BufferKindDynamic BufferKind = iota

	// BufferKindStatic is device-local with synchronous staged access.
	BufferKindStatic

	// BufferKindStaged is device-local with asynchronous handle-based
	// access through a persistent staging pair.
	BufferKindStaged
)

// String returns the string representation of a BufferKind.
func (k BufferKind) String() string {
	switch k {
	case BufferKindDynamic:
		return "Dynamic"
	case BufferKindStatic:
		return "Static"
	case BufferKindStaged:
		return "Staged"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Intent returns the residency intent the kind realizes.
func (k BufferKind) Intent() Intent {
	if k == BufferKindDynamic {
		return IntentDynamic
	}
	return IntentStatic
}

// valid reports whether k names one of the three buffer kinds.
func (k BufferKind) valid() bool {
	return k == BufferKindDynamic || k == BufferKindStatic || k == BufferKindStaged
}

// deviceUsage returns the HAL usage flags for a kind's device
// allocation. Every kind adds Storage so its buffer can be bound to
// the compute kernel.
func (k BufferKind) deviceUsage() gputypes.BufferUsage {
	return k.Intent().usage() | gputypes.BufferUsageStorage
}
