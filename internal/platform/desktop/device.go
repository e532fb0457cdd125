//go:build gl

package desktop

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/resource"
)

var _ gpu.Device = (*Device)(nil)

const overlayVertex = `#version 410 core
uniform vec4 rect;
out vec2 uv;
void main() {
	vec2 corner = vec2(gl_VertexID & 1, gl_VertexID >> 1);
	uv = vec2(corner.x, 1.0 - corner.y);
	gl_Position = vec4(mix(rect.xy, rect.zw, corner), 0.0, 1.0);
}
`

const overlayFragment = `#version 410 core
in vec2 uv;
uniform vec4 color;
uniform bool textured;
uniform sampler2D image;
out vec4 fragColor;
void main() {
	fragColor = textured ? texture(image, uv) * color : color;
}
`

// Device renders through OpenGL 4.1 core. It must only be used on the thread
// owning the context.
type Device struct {
	logger log.Log

	overlay *program
	empty   uint32 // vertex array for attribute-less overlay quads
}

func newDevice(logger log.Log) (*Device, error) {
	d := &Device{logger: logger}
	overlay, err := d.compile(gpu.ShaderSource{Name: "overlay", Vertex: overlayVertex, Fragment: overlayFragment})
	if err != nil {
		return nil, err
	}
	d.overlay = overlay
	gl.GenVertexArrays(1, &d.empty)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	return d, nil
}

func (d *Device) release() {
	if d.overlay != nil {
		gl.DeleteProgram(d.overlay.handle)
		d.overlay = nil
	}
	gl.DeleteVertexArrays(1, &d.empty)
}

type program struct {
	name      string
	handle    uint32
	locations map[uint64]int32
}

func (p *program) Name() string { return p.name }

// location caches uniform lookups; unknown names resolve to -1, which GL
// ignores.
func (p *program) location(name string) int32 {
	key := xxhash.Sum64String(name)
	if loc, ok := p.locations[key]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
	p.locations[key] = loc
	return loc
}

func (p *program) SetMat4(name string, m mgl32.Mat4) {
	gl.ProgramUniformMatrix4fv(p.handle, p.location(name), 1, false, &m[0])
}

func (p *program) SetVec3(name string, v mgl32.Vec3) {
	gl.ProgramUniform3f(p.handle, p.location(name), v[0], v[1], v[2])
}

func (p *program) SetVec4(name string, v mgl32.Vec4) {
	gl.ProgramUniform4f(p.handle, p.location(name), v[0], v[1], v[2], v[3])
}

func (p *program) SetFloat(name string, f float32) {
	gl.ProgramUniform1f(p.handle, p.location(name), f)
}

func (p *program) SetInt(name string, i int32) {
	gl.ProgramUniform1i(p.handle, p.location(name), i)
}

func (p *program) SetBool(name string, b bool) {
	var v int32
	if b {
		v = 1
	}
	gl.ProgramUniform1i(p.handle, p.location(name), v)
}

func (d *Device) CompileProgram(src gpu.ShaderSource) (gpu.Program, error) {
	return d.compile(src)
}

func (d *Device) compile(src gpu.ShaderSource) (*program, error) {
	vs, err := compileShader(src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s vertex: %w", src.Name, err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s fragment: %w", src.Name, err)
	}
	defer gl.DeleteShader(fs)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &length)
		msg := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(handle, length, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("%s link: %s: %w", src.Name, strings.TrimRight(msg, "\x00"), gpu.ErrCompile)
	}
	d.logger.Debug("program linked", log.String("program", src.Name))
	return &program{name: src.Name, handle: handle, locations: make(map[uint64]int32)}, nil
}

func compileShader(source string, kind uint32) (uint32, error) {
	handle := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &length)
		msg := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(handle, length, nil, gl.Str(msg))
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("%s: %w", strings.TrimRight(msg, "\x00"), gpu.ErrCompile)
	}
	return handle, nil
}

func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(p.(*program).handle)
}

type depthTarget struct {
	size        int
	framebuffer uint32
	texture     uint32
}

func (t *depthTarget) Size() int { return t.size }

func (t *depthTarget) Release() {
	gl.DeleteFramebuffers(1, &t.framebuffer)
	gl.DeleteTextures(1, &t.texture)
}

func (d *Device) NewDepthTarget(size int) (gpu.DepthTarget, error) {
	t := &depthTarget{size: size}
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])

	gl.GenFramebuffers(1, &t.framebuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.framebuffer)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Release()
		return nil, fmt.Errorf("depth target %d: status 0x%x: %w", size, status, gpu.ErrIncompleteTarget)
	}
	return t, nil
}

func (d *Device) BindDepthTarget(t gpu.DepthTarget) {
	if t == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.(*depthTarget).framebuffer)
}

func (d *Device) BindShadowMap(unit int, t gpu.DepthTarget) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.(*depthTarget).texture)
}

func (d *Device) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) ClearDepth() { gl.Clear(gl.DEPTH_BUFFER_BIT) }

func (d *Device) Clear() { gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT) }

type mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func (m *mesh) Release() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
}

// UploadMesh stores g interleaved: position at location 0, normal at 1 and
// uv at 2.
func (d *Device) UploadMesh(g *resource.Geometry) (gpu.Mesh, error) {
	if len(g.Positions) == 0 || len(g.Indices) == 0 {
		return nil, fmt.Errorf("upload %s: empty geometry", g.Name)
	}
	data := g.Interleaved()
	m := &mesh{count: int32(len(g.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)

	stride := int32(resource.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)
	return m, nil
}

type texture struct {
	handle        uint32
	width, height int
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }
func (t *texture) Release()    { gl.DeleteTextures(1, &t.handle) }

func (d *Device) UploadTexture(img image.Image) (gpu.Texture, error) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	t := &texture{width: b.Dx(), height: b.Dy()}
	gl.GenTextures(1, &t.handle)
	gl.BindTexture(gl.TEXTURE_2D, t.handle)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(t.width), int32(t.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return t, nil
}

func (d *Device) BindTexture(t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + gpu.MaterialTextureUnit)
	if t == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.(*texture).handle)
}

func (d *Device) DrawMesh(m gpu.Mesh) {
	mm := m.(*mesh)
	gl.BindVertexArray(mm.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, mm.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// DrawQuad draws over everything with alpha blending and restores the
// depth state afterwards.
func (d *Device) DrawQuad(q gpu.Quad, t gpu.Texture) {
	p := d.overlay
	gl.UseProgram(p.handle)
	p.SetVec4("rect", mgl32.Vec4{q.Min[0], q.Min[1], q.Max[0], q.Max[1]})
	p.SetVec4("color", q.Color)
	p.SetBool("textured", t != nil)
	p.SetInt("image", gpu.MaterialTextureUnit)
	d.BindTexture(t)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BindVertexArray(d.empty)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
}
