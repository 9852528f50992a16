package quadrax

import (
	"errors"
	"testing"

	"github.com/Stack-Syndicate/quadrax/internal/gpu"
)

var allKinds = []BufferKind{BufferKindDynamic, BufferKindStatic, BufferKindStaged}

func seqVec4s(n int) []Vec4 {
	data := make([]Vec4, n)
	for i := range data {
		data[i] = V4(float32(i), float32(i)+1, float32(i)+2, float32(i)+3)
	}
	return data
}

func TestCreateBufferEmptyData(t *testing.T) {
	ctx := newNoopContext(t)

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			if _, err := ctx.CreateBuffer(kind, nil); err != ErrEmptyData {
				t.Errorf("CreateBuffer(nil) = %v, want ErrEmptyData", err)
			}
			if _, err := ctx.CreateBuffer(kind, []Vec4{}); err != ErrEmptyData {
				t.Errorf("CreateBuffer(empty) = %v, want ErrEmptyData", err)
			}
		})
	}
}

func TestCreateBufferInvalidKind(t *testing.T) {
	ctx := newNoopContext(t)

	if _, err := ctx.CreateBuffer(BufferKind(7), seqVec4s(4)); err == nil {
		t.Error("CreateBuffer with invalid kind should fail")
	}
}

func TestCreateBufferProperties(t *testing.T) {
	ctx := newNoopContext(t)

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBuffer(kind, seqVec4s(16))
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}
			defer buf.Destroy()

			if buf.Kind() != kind {
				t.Errorf("Kind() = %v, want %v", buf.Kind(), kind)
			}
			if buf.Capacity() != 16 {
				t.Errorf("Capacity() = %d, want 16", buf.Capacity())
			}
			if buf.SizeBytes() != 16*Vec4Size {
				t.Errorf("SizeBytes() = %d, want %d", buf.SizeBytes(), 16*Vec4Size)
			}
		})
	}
}

func TestCreateBufferSized(t *testing.T) {
	ctx := newNoopContext(t)

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBufferSized(kind, 32)
			if err != nil {
				t.Fatalf("CreateBufferSized = %v", err)
			}
			defer buf.Destroy()

			if buf.Capacity() != 32 {
				t.Errorf("Capacity() = %d, want 32", buf.Capacity())
			}
		})
	}

	if _, err := ctx.CreateBufferSized(BufferKindDynamic, 0); err != ErrEmptyData {
		t.Errorf("CreateBufferSized(0) = %v, want ErrEmptyData", err)
	}
	if _, err := ctx.CreateBufferSized(BufferKindDynamic, -3); err != ErrEmptyData {
		t.Errorf("CreateBufferSized(-3) = %v, want ErrEmptyData", err)
	}
}

func TestCreateBufferShorthands(t *testing.T) {
	ctx := newNoopContext(t)
	data := seqVec4s(4)

	dyn, err := ctx.CreateDynamicBuffer(data)
	if err != nil {
		t.Fatalf("CreateDynamicBuffer = %v", err)
	}
	defer dyn.Destroy()
	if dyn.Kind() != BufferKindDynamic {
		t.Errorf("Kind() = %v, want Dynamic", dyn.Kind())
	}

	st, err := ctx.CreateStaticBuffer(data)
	if err != nil {
		t.Fatalf("CreateStaticBuffer = %v", err)
	}
	defer st.Destroy()
	if st.Kind() != BufferKindStatic {
		t.Errorf("Kind() = %v, want Static", st.Kind())
	}

	sg, err := ctx.CreateStagedBuffer(data)
	if err != nil {
		t.Fatalf("CreateStagedBuffer = %v", err)
	}
	defer sg.Destroy()
	if sg.Kind() != BufferKindStaged {
		t.Errorf("Kind() = %v, want Staged", sg.Kind())
	}
}

func TestWriteHandleTriviality(t *testing.T) {
	ctx := newNoopContext(t)
	data := seqVec4s(8)

	tests := []struct {
		kind    BufferKind
		trivial bool
	}{
		// Dynamic and static writes complete before returning.
		{BufferKindDynamic, true},
		{BufferKindStatic, true},
		// Staged writes stay in flight until waited.
		{BufferKindStaged, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBuffer(tt.kind, data)
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}
			defer buf.Destroy()

			h, err := buf.Write(data[:4])
			if err != nil {
				t.Fatalf("Write = %v", err)
			}
			if h.Trivial() != tt.trivial {
				t.Errorf("Trivial() = %v, want %v", h.Trivial(), tt.trivial)
			}
			if err := h.Wait(); err != nil {
				t.Errorf("Wait() = %v", err)
			}
		})
	}
}

func TestReadHandleTriviality(t *testing.T) {
	ctx := newNoopContext(t)
	data := seqVec4s(8)

	tests := []struct {
		kind    BufferKind
		trivial bool
	}{
		{BufferKindDynamic, true},
		{BufferKindStatic, true},
		{BufferKindStaged, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBuffer(tt.kind, data)
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}
			defer buf.Destroy()

			h, err := buf.Read()
			if err != nil {
				t.Fatalf("Read = %v", err)
			}
			if h.Trivial() != tt.trivial {
				t.Errorf("Trivial() = %v, want %v", h.Trivial(), tt.trivial)
			}
			out, err := h.Wait()
			if err != nil {
				t.Fatalf("Wait() = %v", err)
			}
			if len(out) != buf.Capacity() {
				t.Errorf("len(out) = %d, want %d", len(out), buf.Capacity())
			}
		})
	}
}

func TestWriteZeroLength(t *testing.T) {
	ctx := newNoopContext(t)

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBuffer(kind, seqVec4s(4))
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}
			defer buf.Destroy()

			h, err := buf.Write(nil)
			if err != nil {
				t.Fatalf("Write(nil) = %v", err)
			}
			if !h.Trivial() {
				t.Error("zero-length write should yield a trivial handle")
			}
			if err := h.Wait(); err != nil {
				t.Errorf("Wait() = %v", err)
			}
		})
	}
}

func TestWriteCapacityExceeded(t *testing.T) {
	ctx := newNoopContext(t)

	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			buf, err := ctx.CreateBuffer(kind, seqVec4s(4))
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}
			defer buf.Destroy()

			_, err = buf.Write(seqVec4s(5))
			if !errors.Is(err, ErrCapacityExceeded) {
				t.Errorf("Write(5 into 4) = %v, want ErrCapacityExceeded", err)
			}
		})
	}
}

func TestBufferDestroyIdempotent(t *testing.T) {
	ctx := newNoopContext(t)

	buf, err := ctx.CreateBuffer(BufferKindStaged, seqVec4s(4))
	if err != nil {
		t.Fatalf("CreateBuffer = %v", err)
	}

	buf.Destroy()
	buf.Destroy()

	if _, err := buf.Write(seqVec4s(1)); err != ErrBufferDestroyed {
		t.Errorf("Write after Destroy = %v, want ErrBufferDestroyed", err)
	}
	if _, err := buf.Read(); err != ErrBufferDestroyed {
		t.Errorf("Read after Destroy = %v, want ErrBufferDestroyed", err)
	}
}

func TestBufferOpsAfterContextClose(t *testing.T) {
	ctx := newNoopContext(t)

	buf, err := ctx.CreateBuffer(BufferKindDynamic, seqVec4s(4))
	if err != nil {
		t.Fatalf("CreateBuffer = %v", err)
	}

	ctx.Close()

	if _, err := buf.Write(seqVec4s(1)); err != ErrContextClosed {
		t.Errorf("Write after context Close = %v, want ErrContextClosed", err)
	}
	if _, err := buf.Read(); err != ErrContextClosed {
		t.Errorf("Read after context Close = %v, want ErrContextClosed", err)
	}

	// Destroy after Close must not touch the device, only settle
	// accounting.
	buf.Destroy()

	if used := ctx.MemoryStats().UsedBytes; used != 0 {
		t.Errorf("UsedBytes after Destroy = %d, want 0", used)
	}
}

func TestBufferMemoryAccounting(t *testing.T) {
	ctx := newNoopContext(t)

	// Dynamic and static account the device allocation alone; staged
	// carries its persistent staging pair too.
	tests := []struct {
		kind   BufferKind
		expect uint64
	}{
		{BufferKindDynamic, 8 * Vec4Size},
		{BufferKindStatic, 8 * Vec4Size},
		{BufferKindStaged, 3 * 8 * Vec4Size},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			before := ctx.MemoryStats().UsedBytes

			buf, err := ctx.CreateBuffer(tt.kind, seqVec4s(8))
			if err != nil {
				t.Fatalf("CreateBuffer = %v", err)
			}

			if used := ctx.MemoryStats().UsedBytes - before; used != tt.expect {
				t.Errorf("used delta = %d, want %d", used, tt.expect)
			}

			buf.Destroy()
			if used := ctx.MemoryStats().UsedBytes; used != before {
				t.Errorf("UsedBytes after Destroy = %d, want %d", used, before)
			}
		})
	}
}

func TestBufferMemoryBudget(t *testing.T) {
	ctx := newNoopContext(t)
	// 8 elements of dynamic fit exactly; staged needs triple.
	ctx.mem = gpu.NewAccountant(8 * Vec4Size)

	buf, err := ctx.CreateBuffer(BufferKindDynamic, seqVec4s(8))
	if err != nil {
		t.Fatalf("CreateBuffer within budget = %v", err)
	}

	if _, err := ctx.CreateBuffer(BufferKindDynamic, seqVec4s(1)); !errors.Is(err, ErrMemoryBudget) {
		t.Errorf("CreateBuffer over budget = %v, want ErrMemoryBudget", err)
	}

	buf.Destroy()

	// Freed budget is reusable, but a staged buffer of the same element
	// count reserves triple and must still fail.
	if _, err := ctx.CreateBuffer(BufferKindStaged, seqVec4s(8)); !errors.Is(err, ErrMemoryBudget) {
		t.Errorf("staged CreateBuffer over budget = %v, want ErrMemoryBudget", err)
	}
	if _, err := ctx.CreateBuffer(BufferKindStaged, seqVec4s(2)); err != nil {
		t.Errorf("staged CreateBuffer within budget = %v", err)
	}
}

func TestWriteHandleConsumedOnce(t *testing.T) {
	ctx := newNoopContext(t)

	buf, err := ctx.CreateBuffer(BufferKindStaged, seqVec4s(4))
	if err != nil {
		t.Fatalf("CreateBuffer = %v", err)
	}
	defer buf.Destroy()

	h, err := buf.Write(seqVec4s(4))
	if err != nil {
		t.Fatalf("Write = %v", err)
	}
	if err := h.Wait(); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}
	if err := h.Wait(); err != ErrHandleConsumed {
		t.Errorf("second Wait() = %v, want ErrHandleConsumed", err)
	}
}

func TestReadHandleConsumedOnce(t *testing.T) {
	ctx := newNoopContext(t)

	buf, err := ctx.CreateBuffer(BufferKindStaged, seqVec4s(4))
	if err != nil {
		t.Fatalf("CreateBuffer = %v", err)
	}
	defer buf.Destroy()

	h, err := buf.Read()
	if err != nil {
		t.Fatalf("Read = %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}
	if _, err := h.Wait(); err != ErrHandleConsumed {
		t.Errorf("second Wait() = %v, want ErrHandleConsumed", err)
	}
}

func TestTrivialHandleConsumedOnce(t *testing.T) {
	ctx := newNoopContext(t)

	buf, err := ctx.CreateBuffer(BufferKindDynamic, seqVec4s(4))
	if err != nil {
		t.Fatalf("CreateBuffer = %v", err)
	}
	defer buf.Destroy()

	wh, err := buf.Write(seqVec4s(2))
	if err != nil {
		t.Fatalf("Write = %v", err)
	}
	if err := wh.Wait(); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}
	if err := wh.Wait(); err != ErrHandleConsumed {
		t.Errorf("second Wait() = %v, want ErrHandleConsumed", err)
	}

	rh, err := buf.Read()
	if err != nil {
		t.Fatalf("Read = %v", err)
	}
	if _, err := rh.Wait(); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}
	if _, err := rh.Wait(); err != ErrHandleConsumed {
		t.Errorf("second Wait() = %v, want ErrHandleConsumed", err)
	}
}
