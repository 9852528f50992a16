// Command quadbench measures quadrax transfer and dispatch throughput
// on the local GPU, with a CPU baseline for the compute operations.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Stack-Syndicate/quadrax"
	"github.com/Stack-Syndicate/quadrax/internal/gpu/vecops"
)

var opsByName = map[string]quadrax.OpCode{
	"add":      quadrax.OpAdd,
	"sub":      quadrax.OpSub,
	"dot":      quadrax.OpDot,
	"mul":      quadrax.OpMul,
	"cross":    quadrax.OpCross,
	"distance": quadrax.OpDistance,
}

func main() {
	var (
		n         = flag.Int("n", 1<<20, "elements per buffer")
		iters     = flag.Int("iters", 20, "timed iterations per measurement")
		opsFlag   = flag.String("ops", "add,sub,dot,mul,cross,distance", "comma-separated operations to benchmark")
		transfers = flag.Bool("transfers", true, "benchmark write/read per buffer kind")
		baseline  = flag.Bool("cpu", true, "include CPU baseline per operation")
	)
	flag.Parse()

	ops := make([]quadrax.OpCode, 0, len(opsByName))
	for _, name := range strings.Split(*opsFlag, ",") {
		op, ok := opsByName[strings.TrimSpace(name)]
		if !ok {
			log.Fatalf("Unknown operation %q", name)
		}
		ops = append(ops, op)
	}

	ctx, err := quadrax.NewContext()
	if err != nil {
		log.Fatalf("Failed to open GPU context: %v", err)
	}
	defer ctx.Close()

	bytes := uint64(*n) * quadrax.Vec4Size
	fmt.Printf("quadbench: %s\n", ctx.AdapterName())
	fmt.Printf("elements: %d (%.1f MiB per buffer), iterations: %d\n\n", *n, float64(bytes)/(1<<20), *iters)

	data := make([]quadrax.Vec4, *n)
	for i := range data {
		data[i] = quadrax.V4(float32(i%17), float32(i%13)+1, float32(i%7), 1)
	}

	if *transfers {
		benchTransfers(ctx, data, *iters)
	}
	benchDispatch(ctx, data, ops, *iters, *baseline)
}

// benchTransfers times full-buffer write and read for each kind.
func benchTransfers(ctx *quadrax.Context, data []quadrax.Vec4, iters int) {
	bytes := uint64(len(data)) * quadrax.Vec4Size
	kinds := []quadrax.BufferKind{
		quadrax.BufferKindDynamic,
		quadrax.BufferKindStatic,
		quadrax.BufferKindStaged,
	}

	fmt.Println("transfers:")
	for _, kind := range kinds {
		buf, err := ctx.CreateBuffer(kind, data)
		if err != nil {
			log.Fatalf("Failed to create %s buffer: %v", kind, err)
		}

		start := time.Now()
		for range iters {
			h, err := buf.Write(data)
			if err != nil {
				log.Fatalf("%s write: %v", kind, err)
			}
			if err := h.Wait(); err != nil {
				log.Fatalf("%s write wait: %v", kind, err)
			}
		}
		writePer := time.Since(start) / time.Duration(iters)

		start = time.Now()
		for range iters {
			h, err := buf.Read()
			if err != nil {
				log.Fatalf("%s read: %v", kind, err)
			}
			if _, err := h.Wait(); err != nil {
				log.Fatalf("%s read wait: %v", kind, err)
			}
		}
		readPer := time.Since(start) / time.Duration(iters)

		fmt.Printf("  %-8s write %10v (%8.1f MiB/s)   read %10v (%8.1f MiB/s)\n",
			kind, writePer, throughput(bytes, writePer), readPer, throughput(bytes, readPer))
		buf.Destroy()
	}
	fmt.Println()
}

// benchDispatch times each operation end to end, dispatch through
// fence, and optionally the CPU reference loop over the same data.
func benchDispatch(ctx *quadrax.Context, data []quadrax.Vec4, ops []quadrax.OpCode, iters int, baseline bool) {
	n := len(data)
	bytes := uint64(n) * quadrax.Vec4Size

	a, err := ctx.CreateStagedBuffer(data)
	if err != nil {
		log.Fatalf("Failed to create buffer: %v", err)
	}
	defer a.Destroy()
	b, err := ctx.CreateStagedBuffer(data)
	if err != nil {
		log.Fatalf("Failed to create buffer: %v", err)
	}
	defer b.Destroy()
	out, err := ctx.CreateBufferSized(quadrax.BufferKindStaged, n)
	if err != nil {
		log.Fatalf("Failed to create output buffer: %v", err)
	}
	defer out.Destroy()

	d, err := quadrax.NewDispatcher(ctx)
	if err != nil {
		log.Fatalf("Failed to create dispatcher: %v", err)
	}
	defer d.Destroy()

	// CPU baseline works on flat float32 slices.
	var flatA, flatB, flatOut []float32
	if baseline {
		flatA = flatten(data)
		flatB = flatten(data)
		flatOut = make([]float32, n*4)
	}

	fmt.Println("dispatch:")
	for _, op := range ops {
		// Warm up so pipeline and descriptor setup stay out of the timing.
		if err := dispatchOnce(d, op, a, b, out, n); err != nil {
			log.Fatalf("%s warmup: %v", op, err)
		}

		start := time.Now()
		for range iters {
			if err := dispatchOnce(d, op, a, b, out, n); err != nil {
				log.Fatalf("%s dispatch: %v", op, err)
			}
		}
		gpuPer := time.Since(start) / time.Duration(iters)

		line := fmt.Sprintf("  %-8s gpu %10v (%8.1f MiB/s)", op, gpuPer, throughput(bytes, gpuPer))
		if baseline {
			start = time.Now()
			for range iters {
				if err := vecops.Apply(uint32(op), flatA, flatB, flatOut); err != nil {
					log.Fatalf("%s cpu: %v", op, err)
				}
			}
			cpuPer := time.Since(start) / time.Duration(iters)
			line += fmt.Sprintf("   cpu %10v (%.2fx)", cpuPer, float64(cpuPer)/float64(gpuPer))
		}
		fmt.Println(line)
	}
}

func dispatchOnce(d *quadrax.Dispatcher, op quadrax.OpCode, a, b, out *quadrax.Buffer, n int) error {
	h, err := d.Dispatch(op, a, b, out, n)
	if err != nil {
		return err
	}
	return h.Wait()
}

func flatten(src []quadrax.Vec4) []float32 {
	out := make([]float32, 0, len(src)*4)
	for _, v := range src {
		out = append(out, v.X, v.Y, v.Z, v.W)
	}
	return out
}

func throughput(bytes uint64, per time.Duration) float64 {
	if per <= 0 {
		return 0
	}
	return float64(bytes) / per.Seconds() / (1 << 20)
}
