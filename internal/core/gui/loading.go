package gui

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/scene"
)

// LoadingScreen is shown between loadingStarted and loadingStopped and is
// drawn on top of everything else. After loading stops it fades out over
// the fade duration instead of disappearing at once.
type LoadingScreen struct {
	*Screen
	background *background

	mu     sync.Mutex
	fade   time.Duration
	alpha  float32
	fading bool
}

func NewLoadingScreen(texture string, fade time.Duration) *LoadingScreen {
	l := &LoadingScreen{
		Screen: NewScreen(true),
		fade:   fade,
		alpha:  1,
	}
	l.background = &background{texture: texture, owner: l}
	return l
}

// Bind follows the loading lifecycle events.
func (l *LoadingScreen) Bind(b bus.EventBus) error {
	return l.bind(b,
		bus.EventLoadingStarted, func(bus.Event) error { l.Start(); return nil },
		bus.EventLoadingStopped, func(bus.Event) error { l.Stop(); return nil },
	)
}

// Start shows the screen fully opaque.
func (l *LoadingScreen) Start() {
	l.mu.Lock()
	l.alpha = 1
	l.fading = false
	l.mu.Unlock()
	l.Show()
}

// Stop begins the fade out, or hides at once without a fade duration.
func (l *LoadingScreen) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fade <= 0 {
		l.alpha = 0
		l.Hide()
		return
	}
	l.fading = true
}

// Advance progresses the fade by the frame time.
func (l *LoadingScreen) Advance(dt time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.fading {
		return
	}
	l.alpha -= float32(dt) / float32(l.fade)
	if l.alpha <= 0 {
		l.alpha = 0
		l.fading = false
		l.Hide()
	}
}

func (l *LoadingScreen) Alpha() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alpha
}

// Items returns the background followed by the added elements.
func (l *LoadingScreen) Items() []Element {
	return append([]Element{l.background}, l.Screen.Items()...)
}

func (l *LoadingScreen) Elements() []scene.Module {
	return append([]scene.Module{l.background}, l.Screen.Elements()...)
}

// background is the centered loading image, drawn at its pixel size, or a
// full-screen dark quad when the texture is unknown.
type background struct {
	Widget
	texture string
	owner   *LoadingScreen
}

func (b *background) Draws(v Viewport) []Draw {
	alpha := b.owner.Alpha()
	if v.TextureSize != nil && v.Width > 0 && v.Height > 0 {
		if w, h, ok := v.TextureSize(b.texture); ok {
			ox := float32(w) / float32(v.Width)
			oy := float32(h) / float32(v.Height)
			return []Draw{
				{Quad: gpu.Quad{Min: mgl32.Vec2{-1, -1}, Max: mgl32.Vec2{1, 1}, Color: mgl32.Vec4{0, 0, 0, alpha}}},
				{Quad: gpu.Quad{Min: mgl32.Vec2{-ox, -oy}, Max: mgl32.Vec2{ox, oy}, Color: mgl32.Vec4{1, 1, 1, alpha}}, Texture: b.texture},
			}
		}
	}
	return []Draw{{Quad: gpu.Quad{Min: mgl32.Vec2{-1, -1}, Max: mgl32.Vec2{1, 1}, Color: mgl32.Vec4{0.08, 0.09, 0.12, alpha}}}}
}
