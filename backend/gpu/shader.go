package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// fillShaderSource composites a single premultiplied color over a
// rectangle of the pixel buffer. op selects the operator: 0 clear,
// 1 source, 2 over. The shader body is loop-free; one invocation per
// pixel.
const fillShaderSource = `
struct Params {
    color: vec4<f32>,
    rect: vec4<u32>,
    size: vec2<u32>,
    op: u32,
    _pad: u32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read_write> pixels: array<u32>;

fn unpack_color(v: u32) -> vec4<f32> {
    return vec4<f32>(
        f32(v & 0xffu),
        f32((v >> 8u) & 0xffu),
        f32((v >> 16u) & 0xffu),
        f32((v >> 24u) & 0xffu)
    ) / 255.0;
}

fn pack_color(c: vec4<f32>) -> u32 {
    let s = clamp(c, vec4<f32>(0.0), vec4<f32>(1.0)) * 255.0 + vec4<f32>(0.5);
    return u32(s.x) | (u32(s.y) << 8u) | (u32(s.z) << 16u) | (u32(s.w) << 24u);
}

@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let x = gid.x + params.rect.x;
    let y = gid.y + params.rect.y;
    if (x >= params.rect.z || y >= params.rect.w) {
        return;
    }
    let idx = y * params.size.x + x;
    var out: vec4<f32>;
    if (params.op == 0u) {
        out = vec4<f32>(0.0);
    } else if (params.op == 1u) {
        out = params.color;
    } else {
        let dst = unpack_color(pixels[idx]);
        out = params.color + dst * (1.0 - params.color.a);
    }
    pixels[idx] = pack_color(out);
}
`

// Operator codes understood by the fill shader.
const (
	shaderOpClear  = 0
	shaderOpSource = 1
	shaderOpOver   = 2
)

// pipeline holds the compiled fill pipeline and its layouts.
type pipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
}

// compileWGSL compiles WGSL to the SPIR-V words HAL shader modules
// consume.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// newPipeline builds the fill pipeline on the given device.
func newPipeline(device hal.Device) (*pipeline, error) {
	words, err := compileWGSL(fillShaderSource)
	if err != nil {
		return nil, err
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "vg_fill",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module: %w", err)
	}

	p := &pipeline{shader: shader}
	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "vg_fill_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "vg_fill_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	p.compute, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "vg_fill_pipeline",
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	return p, nil
}

func (p *pipeline) destroy(device hal.Device) {
	if p.compute != nil {
		device.DestroyComputePipeline(p.compute)
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
	}
}
