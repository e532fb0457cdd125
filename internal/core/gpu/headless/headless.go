// Package headless is a recording gpu backend. It performs no rasterization;
// it records programs, targets, uniforms and draws so the render pipeline can
// run without a display and be inspected in tests.
package headless

import (
	"fmt"
	"image"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/resource"
)

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Surface = (*Surface)(nil)
)

// DefaultTarget is the Target index recorded for draws to the default
// framebuffer.
const DefaultTarget = -1

// Draw is one recorded mesh draw with the uniforms in effect at that time.
type Draw struct {
	Program  string
	Target   int
	Mesh     string
	Textured bool
	Uniforms map[string]any
}

// OverlayDraw is one recorded DrawQuad call.
type OverlayDraw struct {
	Quad     gpu.Quad
	Textured bool
}

type Program struct {
	name     string
	uniforms map[string]any
}

func (p *Program) Name() string                        { return p.name }
func (p *Program) SetMat4(name string, m mgl32.Mat4)   { p.uniforms[name] = m }
func (p *Program) SetVec3(name string, v mgl32.Vec3)   { p.uniforms[name] = v }
func (p *Program) SetVec4(name string, v mgl32.Vec4)   { p.uniforms[name] = v }
func (p *Program) SetFloat(name string, f float32)     { p.uniforms[name] = f }
func (p *Program) SetInt(name string, i int32)         { p.uniforms[name] = i }
func (p *Program) SetBool(name string, b bool)         { p.uniforms[name] = b }

type DepthTarget struct {
	index    int
	size     int
	released bool
}

func (t *DepthTarget) Size() int { return t.size }
func (t *DepthTarget) Release()  { t.released = true }

type Mesh struct {
	name      string
	triangles int
}

func (m *Mesh) Release() {}

type Texture struct {
	w, h int
}

func (t *Texture) Width() int  { return t.w }
func (t *Texture) Height() int { return t.h }
func (t *Texture) Release()    {}

// Device records every call made through the gpu.Device interface.
type Device struct {
	mu sync.Mutex

	programs    map[string]*Program
	current     *Program
	target      *DepthTarget
	texture     *Texture
	targets     []*DepthTarget
	meshes      int
	textures    int
	draws       []Draw
	overlays    []OverlayDraw
	clears      int
	depthClears int
	shadowUnits map[int]int

	failCompile map[string]error
}

func NewDevice() *Device {
	return &Device{
		programs:    make(map[string]*Program),
		shadowUnits: make(map[int]int),
		failCompile: make(map[string]error),
	}
}

// FailCompile makes CompileProgram fail for the named program.
func (d *Device) FailCompile(name string, err error) {
	d.mu.Lock()
	d.failCompile[name] = err
	d.mu.Unlock()
}

func (d *Device) CompileProgram(src gpu.ShaderSource) (gpu.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failCompile[src.Name]; ok {
		return nil, fmt.Errorf("program %s: %w: %w", src.Name, gpu.ErrCompile, err)
	}
	if src.Vertex == "" || src.Fragment == "" {
		return nil, fmt.Errorf("program %s: %w: empty source", src.Name, gpu.ErrCompile)
	}
	p := &Program{name: src.Name, uniforms: make(map[string]any)}
	d.programs[src.Name] = p
	return p, nil
}

func (d *Device) UseProgram(p gpu.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, _ := p.(*Program)
	d.current = prog
}

func (d *Device) NewDepthTarget(size int) (gpu.DepthTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if size <= 0 {
		return nil, fmt.Errorf("depth target size %d: %w", size, gpu.ErrIncompleteTarget)
	}
	t := &DepthTarget{index: len(d.targets), size: size}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *Device) BindDepthTarget(t gpu.DepthTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, _ := t.(*DepthTarget)
	d.target = target
}

func (d *Device) BindShadowMap(unit int, t gpu.DepthTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if target, ok := t.(*DepthTarget); ok {
		d.shadowUnits[unit] = target.index
	}
}

func (d *Device) SetViewport(int, int) {}

func (d *Device) ClearDepth() {
	d.mu.Lock()
	d.depthClears++
	d.mu.Unlock()
}

func (d *Device) Clear() {
	d.mu.Lock()
	d.clears++
	d.mu.Unlock()
}

func (d *Device) UploadMesh(g *resource.Geometry) (gpu.Mesh, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meshes++
	return &Mesh{name: g.Name, triangles: len(g.Indices) / 3}, nil
}

func (d *Device) UploadTexture(img image.Image) (gpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures++
	b := img.Bounds()
	return &Texture{w: b.Dx(), h: b.Dy()}, nil
}

func (d *Device) BindTexture(t gpu.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tex, _ := t.(*Texture)
	d.texture = tex
}

func (d *Device) DrawMesh(m gpu.Mesh) {
	d.mu.Lock()
	defer d.mu.Unlock()
	draw := Draw{Target: DefaultTarget, Textured: d.texture != nil}
	if mesh, ok := m.(*Mesh); ok {
		draw.Mesh = mesh.name
	}
	if d.current != nil {
		draw.Program = d.current.name
		draw.Uniforms = maps.Clone(d.current.uniforms)
	}
	if d.target != nil {
		draw.Target = d.target.index
	}
	d.draws = append(d.draws, draw)
}

func (d *Device) DrawQuad(q gpu.Quad, t gpu.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlays = append(d.overlays, OverlayDraw{Quad: q, Textured: t != nil})
}

// Draws returns the mesh draws recorded since the last Reset.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// Overlays returns the quad draws recorded since the last Reset.
func (d *Device) Overlays() []OverlayDraw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]OverlayDraw(nil), d.overlays...)
}

// DepthTargets returns how many depth targets were ever allocated.
func (d *Device) DepthTargets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.targets)
}

// DepthTargetSize returns the edge length of target i.
func (d *Device) DepthTargetSize(i int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targets[i].size
}

// Programs returns the names of compiled programs.
func (d *Device) Programs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.programs))
	for name := range d.programs {
		out = append(out, name)
	}
	return out
}

// Uniform returns the last value set for a uniform on program.
func (d *Device) Uniform(program, name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[program]
	if !ok {
		return nil, false
	}
	v, ok := p.uniforms[name]
	return v, ok
}

// Clears returns the number of full clears.
func (d *Device) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// MeshUploads returns the number of UploadMesh calls.
func (d *Device) MeshUploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.meshes
}

// Reset forgets recorded draws and overlays; programs and targets remain.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = nil
	d.overlays = nil
}

// Surface is an offscreen gpu.Surface backed by a recording Device.
type Surface struct {
	width, height int
	device        *Device
	source        input.Source

	captured   atomic.Bool
	closeReq   atomic.Bool
	destroyed  atomic.Bool
	presents   atomic.Int64
	closeAfter int64
}

type Option func(*Surface)

// WithCloseAfter requests close once n frames were presented.
func WithCloseAfter(n int) Option {
	return func(s *Surface) { s.closeAfter = int64(n) }
}

// WithInput attaches a raw key source.
func WithInput(src input.Source) Option {
	return func(s *Surface) { s.source = src }
}

func NewSurface(width, height int, opts ...Option) *Surface {
	s := &Surface{width: width, height: height, device: NewDevice()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Opener returns a gpu.Opener handing out s.
func Opener(s *Surface) gpu.Opener {
	return func() (gpu.Surface, error) { return s, nil }
}

func (s *Surface) Size() (int, int)                { return s.width, s.height }
func (s *Surface) Device() gpu.Device              { return s.device }
func (s *Surface) Recorder() *Device               { return s.device }
func (s *Surface) Input() input.Source             { return s.source }
func (s *Surface) CloseRequested() bool            { return s.closeReq.Load() }
func (s *Surface) SetPointerCaptured(capture bool) { s.captured.Store(capture) }
func (s *Surface) PointerCaptured() bool           { return s.captured.Load() }
func (s *Surface) PollEvents()                     {}
func (s *Surface) Presents() int                   { return int(s.presents.Load()) }
func (s *Surface) Destroyed() bool                 { return s.destroyed.Load() }

// RequestClose behaves like the user closing the window.
func (s *Surface) RequestClose() { s.closeReq.Store(true) }

func (s *Surface) Present() {
	n := s.presents.Add(1)
	if s.closeAfter > 0 && n >= s.closeAfter {
		s.closeReq.Store(true)
	}
}

func (s *Surface) Destroy() { s.destroyed.Store(true) }
