package content

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/script"
)

func countLights(reg *scene.Registry) map[light.Kind]int {
	out := map[light.Kind]int{}
	for _, e := range reg.Entities() {
		if m, ok := e.Module(scene.CapLight); ok {
			out[m.(light.Source).Params().Kind]++
		}
	}
	return out
}

func TestBuildDefaultScene(t *testing.T) {
	reg := scene.NewRegistry()
	n, err := Build(reg, DefaultOptions(), Deps{})
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Zero(t, reg.Len(), "nothing is live before the flush")

	require.NoError(t, reg.FlushAdds())
	assert.Equal(t, n, reg.Len())
	assert.Equal(t, 4, countLights(reg)[light.KindSpot])

	_, ok := reg.Focus()
	assert.True(t, ok, "the player controller is the focus")
}

func TestLightCountsClamped(t *testing.T) {
	reg := scene.NewRegistry()
	_, err := Build(reg, Options{SpotLights: 20, DirectionalLights: 5, ColorLights: -1}, Deps{})
	require.NoError(t, err)
	require.NoError(t, reg.FlushAdds())

	lights := countLights(reg)
	assert.Equal(t, MaxSpotLights, lights[light.KindSpot])
	assert.Equal(t, MaxDirectionalLights, lights[light.KindDirectional])
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions([]byte(`
spot_lights: 12
spot_angle: 30
color_lights: 2
seed: 7
scripted:
  - script: bob
    key: b
    position: [1, 2, 3]
`), config.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, MaxSpotLights, opts.SpotLights)
	assert.Equal(t, float32(30), opts.SpotAngle)
	assert.Equal(t, 2, opts.ColorLights)
	require.Len(t, opts.Scripted, 1)
	assert.Equal(t, [3]float32{1, 2, 3}, opts.Scripted[0].Position)

	opts, err = ParseOptions([]byte("directional_lights = 9\nmonkeys = 4\n"), config.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, MaxDirectionalLights, opts.DirectionalLights)
	assert.Equal(t, 4, opts.Monkeys)

	_, err = ParseOptions([]byte("lasers: 3\n"), config.FormatYAML)
	assert.Error(t, err)
}

func TestBindingsIncludeScriptedKeys(t *testing.T) {
	keys := Bindings(Options{Scripted: []ScriptedObject{{Script: "bob", Event: "bob", Key: "b"}}})
	assert.Equal(t, []input.Key{"Z"}, keys[EventZoom])
	assert.Equal(t, []input.Key{"B"}, keys["bob"])

	keys = Bindings(Options{Scripted: []ScriptedObject{
		{Script: "bob", Key: "b"},
		{Script: "alice", Event: "wave", Key: "w"},
	}})
	assert.Equal(t, []input.Key{"B"}, keys["bob"], "event defaults to the script name")
	assert.Equal(t, []input.Key{"W"}, keys["wave"])
	assert.NotContains(t, keys, "alice")
}

func TestScriptedObjectNeedsLibrary(t *testing.T) {
	opts := Options{Scripted: []ScriptedObject{{Script: "bob"}}}
	_, err := Build(scene.NewRegistry(), opts, Deps{})
	assert.ErrorIs(t, err, ErrNoScripts)

	lib := script.NewLibrary(log.NewNop())
	n, err := Build(scene.NewRegistry(), opts, Deps{Scripts: lib})
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func run(t *testing.T, b interface {
	Advance(*scene.Entity, float32) (bool, error)
}, e *scene.Entity) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		done, err := b.Advance(e, 0.01)
		require.NoError(t, err)
		if done {
			return
		}
	}
	t.Fatal("behavior did not finish")
}

func TestZoomReturnsToStartAngle(t *testing.T) {
	spot := light.NewSpot(light.White(1), colorAngle, 0)
	start := spot.Angle()
	run(t, Zoom(spot), &scene.Entity{})
	assert.InDelta(t, start, spot.Angle(), 1e-3)
}

func TestMoveAndRotateReturnHome(t *testing.T) {
	e := &scene.Entity{}
	e.Transform.Position = mgl32.Vec3{1, 2, 3}

	run(t, Move(), e)
	assert.InDelta(t, 1, e.Transform.Position.X(), 1e-3)
	assert.InDelta(t, 2, e.Transform.Position.Y(), 1e-3)
	assert.InDelta(t, 3, e.Transform.Position.Z(), 1e-3)

	run(t, Rotate(), e)
	assert.InDelta(t, 0, e.Transform.Rotation.Y(), 1e-3)
	assert.InDelta(t, 360, e.Transform.Rotation.Z(), 0.05)
}

type pauser struct{ paused bool }

func (p *pauser) Paused() bool { return p.paused }
func (p *pauser) Pause()       { p.paused = true }
func (p *pauser) Resume()      { p.paused = false }

type mono struct{ on bool }

func (m *mono) Monochrome() bool      { return m.on }
func (m *mono) SetMonochrome(on bool) { m.on = on }

func TestScreensFollowEvents(t *testing.T) {
	reg := scene.NewRegistry()
	b := bus.New()
	defer b.Close()

	s, err := SetupScreens(reg, ScreenDeps{
		Bus:            b,
		State:          &pauser{},
		Renderer:       &mono{},
		LoadingTexture: "loadingScreen",
		LoadingFade:    100 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Len(t, reg.Screens(), 3)
	assert.Same(t, s.Loading, reg.LoadingScreen())

	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGamePaused, "test", nil)))
	assert.True(t, s.Menu.Visible())
	assert.False(t, s.InGame.Visible())
	assert.True(t, s.Always.Visible())

	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGameResumed, "test", nil)))
	assert.False(t, s.Menu.Visible())
	assert.True(t, s.InGame.Visible())

	s.Unbind()
	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGamePaused, "test", nil)))
	assert.False(t, s.Menu.Visible(), "unbound screens ignore events")
}

func TestAlwaysScreenTogglesPauseAndMonochrome(t *testing.T) {
	reg := scene.NewRegistry()
	b := bus.New()
	defer b.Close()
	p, m := &pauser{}, &mono{}
	_, err := SetupScreens(reg, ScreenDeps{Bus: b, State: p, Renderer: m})
	require.NoError(t, err)

	in := input.NewMapper()
	input.DefaultBindings(in, nil)
	in.Press(input.PauseGame)
	in.Press(input.Mono)
	in.Advance()
	reg.Update(scene.Tick{Input: in})

	assert.True(t, p.paused)
	assert.True(t, m.on)
}
