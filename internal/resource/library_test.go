package resource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinNames(t *testing.T) {
	s := Builtin()
	for _, name := range []string{"plane", "bigPlane", "cube", "sphere", "sphere2", "monkey"} {
		g, ok := s.Geometry(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, g.Indices, name)
		assert.Zero(t, len(g.Indices)%3, name)
		assert.Len(t, g.Normals, g.VertexCount(), name)
		for _, idx := range g.Indices {
			require.Less(t, int(idx), g.VertexCount(), name)
		}
	}

	_, ok := s.Geometry("missing")
	assert.False(t, ok)

	img, ok := s.Texture("loadingScreen")
	require.True(t, ok)
	assert.Equal(t, 512, img.Bounds().Dx())
}

func TestInterleavedLayout(t *testing.T) {
	g := Plane("p", 2)
	data := g.Interleaved()
	require.Len(t, data, 4*VertexStride)
	assert.Equal(t, []float32{-1, 0, -1, 0, 1, 0, 0, 0}, data[:VertexStride])
}

func TestKeyStable(t *testing.T) {
	assert.Equal(t, Cube("cube", 1).Key(), Cube("cube", 2).Key())
	assert.NotEqual(t, Cube("cube", 1).Key(), Cube("box", 1).Key())
}

func TestLoadTextures(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(&buf, img))

	fsys := fstest.MapFS{
		"textures/wall.png":  {Data: buf.Bytes()},
		"textures/notes.txt": {Data: []byte("skip")},
		"textures/sub/x.png": {Data: buf.Bytes()},
	}

	s := NewStore()
	n, err := s.LoadTextures(fsys, "textures")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok := s.Texture("wall")
	require.True(t, ok)
	assert.Equal(t, 4, got.Bounds().Dx())

	_, err = s.LoadTextures(fsys, "nope")
	assert.Error(t, err)
}

func TestLoadTexturesRejectsCorruptFile(t *testing.T) {
	fsys := fstest.MapFS{"t/bad.png": {Data: []byte("not a png")}}
	_, err := NewStore().LoadTextures(fsys, "t")
	assert.Error(t, err)
}
