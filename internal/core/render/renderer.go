package render

import (
	"embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/gui"
	"github.com/zeusync/lightengine/internal/core/modules/camera"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/resource"
	"github.com/zeusync/lightengine/pkg/mathx"
)

const (
	// MaxLights is the size of the per-light uniform arrays in the lighting
	// program. Each light may use one shadow map unit.
	MaxLights = gpu.MaterialTextureUnit

	ProgramLighting = "lighting"
	ProgramShadow   = "shadowMap"

	materialUnit = gpu.MaterialTextureUnit

	// Spot light shadow frusta are capped just below a half turn.
	maxShadowHalfAngle = math.Pi/2 - 0.01
	minShadowHalfAngle = 0.01
)

var ErrNotInstalled = errors.New("renderer programs not installed")

//go:embed shaders/*.glsl
var shaderFS embed.FS

// Settings are the render options read from the engine config.
type Settings struct {
	ShadowResolution int
	RenderDistance   float32
	FieldOfView      float32
	Monochrome       bool
}

func DefaultSettings() Settings {
	return Settings{
		ShadowResolution: 4096,
		RenderDistance:   1000,
		FieldOfView:      70,
	}
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Lights     int
	Meshes     int
	ShadowMaps int
	Overlays   int
	LitPass    bool
}

// Renderer executes render queues on a gpu.Device. Every method except
// SetMonochrome, Monochrome and Stats must be called from the render
// goroutine.
type Renderer struct {
	device   gpu.Device
	library  resource.Library
	settings Settings
	logger   log.Log

	lighting gpu.Program
	shadow   gpu.Program

	shadowMaps     []gpu.DepthTarget
	shadowsReady   bool
	overflowWarned bool

	meshes   map[uint64]gpu.Mesh
	textures map[uint64]gpu.Texture
	missing  map[uint64]struct{}

	monochrome atomic.Bool

	statsMu sync.Mutex
	stats   FrameStats
}

// New creates a renderer. It draws nothing until Install binds a device.
func New(library resource.Library, settings Settings, logger log.Log) *Renderer {
	settings.ShadowResolution = max(settings.ShadowResolution, 1)
	if settings.RenderDistance <= 0 {
		settings.RenderDistance = DefaultSettings().RenderDistance
	}
	r := &Renderer{
		library:  library,
		settings: settings,
		logger:   logger.With(log.Component("renderer")),
		meshes:   make(map[uint64]gpu.Mesh),
		textures: make(map[uint64]gpu.Texture),
		missing:  make(map[uint64]struct{}),
	}
	r.monochrome.Store(settings.Monochrome)
	return r
}

// Install binds the device and compiles the lighting and shadow map
// programs.
func (r *Renderer) Install(device gpu.Device) error {
	r.device = device
	lighting, err := r.compile(ProgramLighting, "shaders/lighting.vert.glsl", "shaders/lighting.frag.glsl")
	if err != nil {
		return err
	}
	shadow, err := r.compile(ProgramShadow, "shaders/shadow.vert.glsl", "shaders/shadow.frag.glsl")
	if err != nil {
		return err
	}
	r.lighting, r.shadow = lighting, shadow
	r.logger.Info("shader programs installed", log.Int("shadow_resolution", r.settings.ShadowResolution))
	return nil
}

func (r *Renderer) compile(name, vertexPath, fragmentPath string) (gpu.Program, error) {
	vertex, err := shaderFS.ReadFile(vertexPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", vertexPath, err)
	}
	fragment, err := shaderFS.ReadFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fragmentPath, err)
	}
	p, err := r.device.CompileProgram(gpu.ShaderSource{Name: name, Vertex: string(vertex), Fragment: string(fragment)})
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", name, err)
	}
	return p, nil
}

func (r *Renderer) SetMonochrome(on bool) { r.monochrome.Store(on) }
func (r *Renderer) Monochrome() bool      { return r.monochrome.Load() }

// ShadowTargets returns the number of allocated shadow maps.
func (r *Renderer) ShadowTargets() int { return len(r.shadowMaps) }

func (r *Renderer) Stats() FrameStats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.stats
}

// RenderScene runs the shadow pass and the lit pass for q, then draws its GUI
// elements. Without a camera only the shadow pass and the overlays run.
func (r *Renderer) RenderScene(q *Queue, width, height int) error {
	if r.lighting == nil || r.shadow == nil {
		return ErrNotInstalled
	}
	if err := r.ensureShadowMaps(len(q.Lights)); err != nil {
		return err
	}

	lights := q.Lights
	if len(lights) > MaxLights {
		lights = lights[:MaxLights]
	}
	if len(q.Lights) > len(r.shadowMaps) && !r.overflowWarned {
		r.overflowWarned = true
		r.logger.Warn("more lights than shadow maps, extra lights render without shadows",
			log.Int("lights", len(q.Lights)),
			log.Int("shadow_maps", len(r.shadowMaps)),
		)
	}

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	models := make([]mgl32.Mat4, len(q.Meshes))
	for i, m := range q.Meshes {
		models[i] = mathx.ModelMatrix(m.Position, m.Rotation)
	}

	lightVP := r.shadowPass(q, lights, models, aspect, width, height)

	stats := FrameStats{Lights: len(q.Lights), Meshes: len(q.Meshes), ShadowMaps: len(r.shadowMaps)}
	if q.Camera == nil {
		r.logger.Debug("no camera in queue, lit pass skipped")
	} else {
		r.litPass(q, lights, models, lightVP, aspect)
		stats.LitPass = true
	}

	stats.Overlays = r.DrawOverlay(q.GUI, width, height)
	r.statsMu.Lock()
	r.stats = stats
	r.statsMu.Unlock()
	return nil
}

// ensureShadowMaps allocates the shadow maps on the first frame. The count
// never changes afterwards.
func (r *Renderer) ensureShadowMaps(lights int) error {
	if r.shadowsReady {
		return nil
	}
	n := min(lights, MaxLights)
	maps := make([]gpu.DepthTarget, 0, n)
	for i := 0; i < n; i++ {
		t, err := r.device.NewDepthTarget(r.settings.ShadowResolution)
		if err != nil {
			for _, m := range maps {
				m.Release()
			}
			return fmt.Errorf("allocate shadow map %d: %w", i, err)
		}
		maps = append(maps, t)
	}
	r.shadowMaps = maps
	r.shadowsReady = true
	r.logger.Debug("shadow maps allocated", log.Int("count", n))
	return nil
}

func (r *Renderer) shadowPass(q *Queue, lights []LightItem, models []mgl32.Mat4, aspect float32, width, height int) []mgl32.Mat4 {
	vps := make([]mgl32.Mat4, len(lights))
	for i, l := range lights {
		vps[i] = lightViewProjection(l, aspect, width, height, r.settings.RenderDistance)
	}

	r.device.UseProgram(r.shadow)
	r.shadow.SetFloat("renderDistance", r.settings.RenderDistance)
	for i := range lights {
		if i >= len(r.shadowMaps) || !lights[i].CastsShadow {
			continue
		}
		r.shadow.SetMat4("viewProjectionMatrix", vps[i])
		r.shadow.SetVec3("lightPosition", lights[i].Position)

		r.device.BindDepthTarget(r.shadowMaps[i])
		size := r.shadowMaps[i].Size()
		r.device.SetViewport(size, size)
		r.device.ClearDepth()
		for j, m := range q.Meshes {
			gm, ok := r.mesh(m.Geometry)
			if !ok {
				continue
			}
			r.shadow.SetMat4("modelMatrix", models[j])
			r.shadow.SetVec3("modelPosition", m.Position)
			r.device.DrawMesh(gm)
		}
	}
	r.device.BindDepthTarget(nil)
	r.device.SetViewport(width, height)
	return vps
}

func (r *Renderer) litPass(q *Queue, lights []LightItem, models []mgl32.Mat4, lightVP []mgl32.Mat4, aspect float32) {
	p := r.lighting
	mono := r.Monochrome()
	cam := q.Camera.State

	r.device.UseProgram(p)
	p.SetFloat("renderDistance", r.settings.RenderDistance)
	p.SetMat4("viewProjectionMatrix", cam.ViewProjection(r.settings.FieldOfView, aspect, r.settings.RenderDistance))
	p.SetVec3("cameraPosition", cam.Eye())
	p.SetInt("lightSourceCount", int32(len(lights)))

	for i, l := range lights {
		idx := "[" + strconv.Itoa(i) + "]"
		shadowed := i < len(r.shadowMaps) && l.CastsShadow
		color := l.Color.Vec3()
		if mono {
			color = mgl32.Vec3{1, 1, 1}
		}
		p.SetVec3("lightPositions"+idx, l.Position)
		p.SetVec3("lightDirections"+idx, l.Direction)
		p.SetVec3("lightColors"+idx, color)
		p.SetFloat("lightStrengths"+idx, l.Color.W())
		p.SetInt("lightSourceTypes"+idx, int32(l.Kind))
		p.SetFloat("lightAngles"+idx, l.Angle)
		p.SetFloat("transitions"+idx, l.Transition)
		p.SetBool("specularLighting"+idx, l.Specular)
		p.SetBool("shadowThrowing"+idx, shadowed)
		p.SetMat4("shadowMapCoordinates"+idx, lightVP[i])
		if i < len(r.shadowMaps) {
			r.device.BindShadowMap(i, r.shadowMaps[i])
			p.SetInt("shadowMap"+strconv.Itoa(i), int32(i))
		}
	}
	p.SetInt("materialTexture", materialUnit)

	for j, m := range q.Meshes {
		gm, ok := r.mesh(m.Geometry)
		if !ok {
			continue
		}
		mat := m.Material
		color := mat.Color
		if mono {
			color = mgl32.Vec4{1, 1, 1, color.W()}
		}
		tex := r.texture(mat.Texture)

		p.SetMat4("modelMatrix", models[j])
		p.SetVec3("modelPosition", m.Position)
		p.SetVec4("materialColor", color)
		p.SetFloat("materialReflectivity", mat.Reflectivity)
		p.SetFloat("materialShininess", mat.Shininess)
		p.SetFloat("materialTransparency", mat.Transparency)
		p.SetFloat("emissiveLightStrength", mathx.Clamp(mat.Emissive, 0, 1))
		p.SetBool("textured", tex != nil)
		r.device.BindTexture(tex)
		r.device.DrawMesh(gm)
	}
	r.device.BindTexture(nil)
}

// lightViewProjection is perspective for spot lights, with the spot angle
// as the half field of view, and an orthographic box of a
// width/8 by height/8 half extent otherwise.
func lightViewProjection(l LightItem, aspect float32, width, height int, renderDistance float32) mgl32.Mat4 {
	var projection mgl32.Mat4
	if l.Kind == light.KindSpot {
		half := mathx.Clamp(l.Angle, minShadowHalfAngle, maxShadowHalfAngle)
		projection = mgl32.Perspective(2*half, aspect, camera.NearPlane, renderDistance)
	} else {
		hw, hh := float32(width)/8, float32(height)/8
		projection = mgl32.Ortho(-hw, hw, -hh, hh, camera.NearPlane, renderDistance)
	}
	return projection.Mul4(mathx.ViewMatrix(l.Position, l.Rotation))
}

// DrawOverlay draws elements in order as screen-space quads and returns the
// number of quads drawn.
func (r *Renderer) DrawOverlay(elements []gui.Element, width, height int) int {
	if len(elements) == 0 {
		return 0
	}
	v := gui.Viewport{Width: width, Height: height, TextureSize: r.textureSize}
	n := 0
	for _, el := range elements {
		for _, d := range el.Draws(v) {
			r.device.DrawQuad(d.Quad, r.texture(d.Texture))
			n++
		}
	}
	return n
}

func (r *Renderer) textureSize(name string) (int, int, bool) {
	t := r.texture(name)
	if t == nil {
		return 0, 0, false
	}
	return t.Width(), t.Height(), true
}

// mesh returns the uploaded geometry for name, uploading it on first use.
func (r *Renderer) mesh(name string) (gpu.Mesh, bool) {
	key := xxhash.Sum64String(name)
	if m, ok := r.meshes[key]; ok {
		return m, true
	}
	if r.reportedMissing("geometry:" + name) {
		return nil, false
	}
	g, ok := r.library.Geometry(name)
	if !ok {
		r.markMissing("geometry:"+name, "geometry not found")
		return nil, false
	}
	m, err := r.device.UploadMesh(g)
	if err != nil {
		r.markMissing("geometry:"+name, "geometry upload failed", log.Error(err))
		return nil, false
	}
	r.meshes[key] = m
	return m, true
}

// texture returns the uploaded texture for name or nil when there is none.
func (r *Renderer) texture(name string) gpu.Texture {
	if name == "" {
		return nil
	}
	key := xxhash.Sum64String(name)
	if t, ok := r.textures[key]; ok {
		return t
	}
	if r.reportedMissing("texture:" + name) {
		return nil
	}
	img, ok := r.library.Texture(name)
	if !ok {
		r.markMissing("texture:"+name, "texture not found, drawing untextured")
		return nil
	}
	t, err := r.device.UploadTexture(img)
	if err != nil {
		r.markMissing("texture:"+name, "texture upload failed", log.Error(err))
		return nil
	}
	r.textures[key] = t
	return t
}

func (r *Renderer) reportedMissing(name string) bool {
	_, ok := r.missing[xxhash.Sum64String(name)]
	return ok
}

func (r *Renderer) markMissing(name, msg string, fields ...log.Field) {
	r.missing[xxhash.Sum64String(name)] = struct{}{}
	r.logger.Debug(msg, append(fields, log.String("name", name))...)
}

// Release frees every GPU object the renderer created.
func (r *Renderer) Release() {
	for _, t := range r.shadowMaps {
		t.Release()
	}
	r.shadowMaps = nil
	for k, m := range r.meshes {
		m.Release()
		delete(r.meshes, k)
	}
	for k, t := range r.textures {
		t.Release()
		delete(r.textures, k)
	}
}
