package resource

import (
	"github.com/cespare/xxhash/v2"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the number of floats per interleaved vertex:
// position (3), normal (3), uv (2).
const VertexStride = 8

// Geometry is an indexed triangle mesh.
type Geometry struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// Key identifies the geometry in GPU caches.
func (g *Geometry) Key() uint64 {
	return xxhash.Sum64String(g.Name)
}

func (g *Geometry) VertexCount() int { return len(g.Positions) }

// Interleaved packs the vertex attributes in VertexStride layout.
func (g *Geometry) Interleaved() []float32 {
	out := make([]float32, 0, len(g.Positions)*VertexStride)
	for i, p := range g.Positions {
		var n mgl32.Vec3
		if i < len(g.Normals) {
			n = g.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(g.UVs) {
			uv = g.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Plane returns a square of the given edge length in the XZ plane facing +Y.
func Plane(name string, size float32) *Geometry {
	h := size / 2
	return &Geometry{
		Name:      name,
		Positions: []mgl32.Vec3{{-h, 0, -h}, {h, 0, -h}, {h, 0, h}, {-h, 0, h}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
	}
}

// Cube returns an axis-aligned cube with per-face normals.
func Cube(name string, size float32) *Geometry {
	h := size / 2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	g := &Geometry{Name: name}
	for _, f := range faces {
		base := uint32(len(g.Positions))
		center := f.normal.Mul(h)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, f.normal)
			g.UVs = append(g.UVs, mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Sphere returns a UV sphere. rings and segments are clamped to at least 3.
func Sphere(name string, radius float32, rings, segments int) *Geometry {
	rings = max(rings, 3)
	segments = max(segments, 3)

	g := &Geometry{Name: name}
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := v * math32.Pi
		st, ct := math32.Sincos(theta)
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := u * 2 * math32.Pi
			sp, cp := math32.Sincos(phi)
			n := mgl32.Vec3{st * cp, ct, st * sp}
			g.Positions = append(g.Positions, n.Mul(radius))
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl32.Vec2{u, v})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			g.Indices = append(g.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return g
}

// Merge concatenates parts, translating each by its offset.
func Merge(name string, parts []*Geometry, offsets []mgl32.Vec3) *Geometry {
	g := &Geometry{Name: name}
	for i, part := range parts {
		var off mgl32.Vec3
		if i < len(offsets) {
			off = offsets[i]
		}
		base := uint32(len(g.Positions))
		for _, p := range part.Positions {
			g.Positions = append(g.Positions, p.Add(off))
		}
		g.Normals = append(g.Normals, part.Normals...)
		g.UVs = append(g.UVs, part.UVs...)
		for _, idx := range part.Indices {
			g.Indices = append(g.Indices, base+idx)
		}
	}
	return g
}
