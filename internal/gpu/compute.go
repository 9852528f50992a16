// Copyright 2026 The Quadrax Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// KernelWorkgroupSize is the thread count per workgroup in
// vector_ops.wgsl. Dispatch grids are sized as ceil(count / 64).
const KernelWorkgroupSize = 64

// Embedded WGSL shader sources.
// These are compiled at build time using go:embed directives.

//go:embed shaders/vector_ops.wgsl
var vectorOpsShaderSource string

// VectorOpsShaderSource returns the WGSL source of the element-wise
// vector operation kernel. Exposed for diagnostics and tests.
func VectorOpsShaderSource() string { return vectorOpsShaderSource }

// CompileShaderToSPIRV compiles WGSL source to a SPIR-V word slice.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// paramsSize is the byte size of the params uniform block.
// Sixteen bytes to satisfy uniform buffer alignment.
const paramsSize = 16

// KernelParams is the uniform block consumed by vector_ops.wgsl.
type KernelParams struct {
	Op    uint32
	Count uint32
}

// toBytes serializes the params block in shader layout.
func (p KernelParams) toBytes() []byte {
	buf := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.Op)
	le.PutUint32(buf[4:8], p.Count)
	// buf[8:16] is explicit padding.
	return buf
}

// WorkgroupCount returns the dispatch grid width for count elements.
func WorkgroupCount(count uint32) uint32 {
	return (count + KernelWorkgroupSize - 1) / KernelWorkgroupSize
}

// Kernel is the compiled element-wise vector operation pipeline.
//
// The pipeline reads two vec4 arrays at bindings 0 and 1, writes
// results at binding 2, and reads an op/count uniform at binding 3.
// One Kernel serves any number of dispatches; per-dispatch state
// (params buffer, bind group) lives in the returned Submission and is
// released when its Wait returns.
type Kernel struct {
	device hal.Device
	queue  hal.Queue

	shaderModule   hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline
}

// NewKernel compiles the shader and builds the compute pipeline.
func NewKernel(device hal.Device, queue hal.Queue) (*Kernel, error) {
	spirv, err := CompileShaderToSPIRV(vectorOpsShaderSource)
	if err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "vector_ops",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module: %w", err)
	}

	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}

	// @binding(0) storage(read) input_a
	// @binding(1) storage(read) input_b
	// @binding(2) storage(read_write) output
	// @binding(3) uniform params
	bgLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "vector_ops_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			storageRO(0),
			storageRO(1),
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "vector_ops_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		device.DestroyBindGroupLayout(bgLayout)
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "vector_ops",
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		device.DestroyPipelineLayout(pipelineLayout)
		device.DestroyBindGroupLayout(bgLayout)
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("gpu: create compute pipeline: %w", err)
	}

	slogger().Debug("gpu: vector ops pipeline created",
		"workgroup_size", KernelWorkgroupSize,
		"shader_bytes", len(vectorOpsShaderSource))

	return &Kernel{
		device:         device,
		queue:          queue,
		shaderModule:   module,
		bgLayout:       bgLayout,
		pipelineLayout: pipelineLayout,
		pipeline:       pipeline,
	}, nil
}

// Dispatch encodes one kernel run and submits it.
//
// a and b are read as vec4 arrays, results land in out. The returned
// Submission owns the per-dispatch params buffer and bind group.
func (k *Kernel) Dispatch(a, b, out hal.Buffer, params KernelParams) (*Submission, error) {
	paramsBuf, err := CreateBuffer(k.device, "vector_ops_params", paramsSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	k.queue.WriteBuffer(paramsBuf, 0, params.toBytes())

	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}

	bg, err := k.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "vector_ops_bg",
		Layout: k.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			entry(0, a),
			entry(1, b),
			entry(2, out),
			entry(3, paramsBuf),
		},
	})
	if err != nil {
		k.device.DestroyBuffer(paramsBuf)
		return nil, fmt.Errorf("gpu: create bind group: %w", err)
	}

	encoder, err := k.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "vector_ops",
	})
	if err != nil {
		k.device.DestroyBindGroup(bg)
		k.device.DestroyBuffer(paramsBuf)
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vector_ops"); err != nil {
		k.device.DestroyBindGroup(bg)
		k.device.DestroyBuffer(paramsBuf)
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	wgCount := WorkgroupCount(params.Count)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "vector_ops",
	})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(wgCount, 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		k.device.DestroyBindGroup(bg)
		k.device.DestroyBuffer(paramsBuf)
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}

	sub, err := Submit(k.device, k.queue, cmdBuf)
	if err != nil {
		k.device.DestroyBindGroup(bg)
		k.device.DestroyBuffer(paramsBuf)
		return nil, err
	}
	sub.TrackBindGroup(bg)
	sub.TrackBuffer(paramsBuf)

	slogger().Debug("gpu: vector op dispatched",
		"op", params.Op,
		"elements", params.Count,
		"workgroups", wgCount)
	return sub, nil
}

// Destroy releases the pipeline, layouts, and shader module.
func (k *Kernel) Destroy() {
	if k.pipeline != nil {
		k.device.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.pipelineLayout != nil {
		k.device.DestroyPipelineLayout(k.pipelineLayout)
		k.pipelineLayout = nil
	}
	if k.bgLayout != nil {
		k.device.DestroyBindGroupLayout(k.bgLayout)
		k.bgLayout = nil
	}
	if k.shaderModule != nil {
		k.device.DestroyShaderModule(k.shaderModule)
		k.shaderModule = nil
	}
}
