// Package gpu is the contract between the renderer and a graphics backend.
// All Device and Program methods must be called from the render goroutine.
package gpu

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/resource"
)

var (
	ErrCompile          = errors.New("shader compile failed")
	ErrIncompleteTarget = errors.New("incomplete render target")
	ErrSurfaceClosed    = errors.New("surface closed")
)

// MaterialTextureUnit is the texture unit BindTexture binds to. Shadow maps
// use the units below it.
const MaterialTextureUnit = 8

// ShaderSource is a named vertex/fragment pair.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// Program is a linked shader program. Setting a uniform the program does not
// declare is a no-op.
type Program interface {
	Name() string
	SetMat4(name string, m mgl32.Mat4)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetFloat(name string, f float32)
	SetInt(name string, i int32)
	SetBool(name string, b bool)
}

// DepthTarget is an offscreen square depth-only render target whose depth
// texture can be sampled as a shadow map.
type DepthTarget interface {
	Size() int
	Release()
}

// Mesh is geometry uploaded to the device.
type Mesh interface {
	Release()
}

// Texture is an uploaded RGBA image.
type Texture interface {
	Width() int
	Height() int
	Release()
}

// Quad is a screen-space rectangle in normalized device coordinates.
type Quad struct {
	Min, Max mgl32.Vec2
	Color    mgl32.Vec4
}

type Device interface {
	CompileProgram(src ShaderSource) (Program, error)
	UseProgram(p Program)

	NewDepthTarget(size int) (DepthTarget, error)
	// BindDepthTarget redirects drawing to t; nil binds the default target.
	BindDepthTarget(t DepthTarget)
	BindShadowMap(unit int, t DepthTarget)
	SetViewport(width, height int)
	ClearDepth()
	Clear()

	UploadMesh(g *resource.Geometry) (Mesh, error)
	UploadTexture(img image.Image) (Texture, error)
	// BindTexture binds the material texture at MaterialTextureUnit; nil
	// unbinds.
	BindTexture(t Texture)
	DrawMesh(m Mesh)
	// DrawQuad draws an overlay rectangle, textured when t is non-nil.
	DrawQuad(q Quad, t Texture)
}

// Surface is the window (or offscreen stand-in) the render loop presents to.
type Surface interface {
	Size() (width, height int)
	Device() Device
	// Input returns the raw key source, or nil when the surface has none.
	Input() input.Source
	// CloseRequested may be called from any goroutine.
	CloseRequested() bool
	// SetPointerCaptured may be called from any goroutine; backends apply it
	// on the next PollEvents.
	SetPointerCaptured(captured bool)
	PollEvents()
	Present()
	Destroy()
}

// Opener creates the surface. It is called on the render goroutine.
type Opener func() (Surface, error)
