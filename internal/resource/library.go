// Package resource provides named geometry and textures to the renderer.
package resource

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrNotFound = errors.New("resource not found")

// Library resolves resources by name. Lookups never fail hard; callers
// degrade when a name is unknown.
type Library interface {
	Geometry(name string) (*Geometry, bool)
	Texture(name string) (image.Image, bool)
}

var _ Library = (*Store)(nil)

// Store is an in-memory Library.
type Store struct {
	mu       sync.RWMutex
	geometry map[string]*Geometry
	textures map[string]image.Image
}

func NewStore() *Store {
	return &Store{
		geometry: make(map[string]*Geometry),
		textures: make(map[string]image.Image),
	}
}

// Builtin returns a store holding the procedural meshes used by the demo
// scenes and the default loading screen background.
func Builtin() *Store {
	s := NewStore()
	s.AddGeometry(Plane("plane", 10))
	s.AddGeometry(Plane("bigPlane", 200))
	s.AddGeometry(Cube("cube", 1))
	s.AddGeometry(Sphere("sphere", 0.5, 16, 24))
	s.AddGeometry(Sphere("sphere2", 0.25, 12, 16))
	s.AddGeometry(Merge("monkey",
		[]*Geometry{Sphere("head", 1, 10, 14), Sphere("ear", 0.35, 6, 8), Sphere("ear", 0.35, 6, 8)},
		[]mgl32.Vec3{{}, {-1, 0.7, 0}, {1, 0.7, 0}},
	))
	s.AddTexture("loadingScreen", gradient(512, 256, color.RGBA{R: 20, G: 24, B: 32, A: 255}, color.RGBA{R: 70, G: 90, B: 120, A: 255}))
	return s
}

func (s *Store) AddGeometry(g *Geometry) {
	s.mu.Lock()
	s.geometry[g.Name] = g
	s.mu.Unlock()
}

func (s *Store) AddTexture(name string, img image.Image) {
	s.mu.Lock()
	s.textures[name] = img
	s.mu.Unlock()
}

func (s *Store) Geometry(name string) (*Geometry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.geometry[name]
	return g, ok
}

func (s *Store) Texture(name string) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.textures[name]
	return img, ok
}

// LoadTextures decodes every .png file in dir of fsys and registers it under
// its base name without extension.
func (s *Store) LoadTextures(fsys fs.FS, dir string) (int, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("read texture dir %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".png") {
			continue
		}
		img, err := decodePNG(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return loaded, err
		}
		s.AddTexture(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())), img)
		loaded++
	}
	return loaded, nil
}

func decodePNG(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", name, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", name, err)
	}
	return img, nil
}

func gradient(w, h int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float32(y) / float32(h-1)
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func lerp(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}
