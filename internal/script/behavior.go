package script

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"

	"github.com/zeusync/lightengine/internal/core/modules/camera"
	"github.com/zeusync/lightengine/internal/core/modules/interaction"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

var ErrNoAdvance = errors.New("script defines no advance function")

const (
	entityType = "entity"

	// API_VERSION global seen by scripts.
	apiVersion = 1
)

// Behavior runs a script as an interaction. The script defines
//
//	function advance(entity, dt) return done end
//	function reset() end -- optional
//
// Each Behavior owns its own VM and must only be used from the simulation
// goroutine.
type Behavior struct {
	lib    *Library
	name   string
	logger log.Log

	vm      *lua.LState
	version uint64
}

var _ interaction.Behavior = (*Behavior)(nil)

func NewBehavior(lib *Library, name string, logger log.Log) *Behavior {
	return &Behavior{
		lib:    lib,
		name:   name,
		logger: logger.With(log.Component("script"), log.String("script", name)),
	}
}

// Advance calls advance(entity, dt). A runtime error ends the run; whatever
// the script already applied to the entity stays.
func (b *Behavior) Advance(e *scene.Entity, dt float32) (bool, error) {
	if err := b.ensure(); err != nil {
		return true, err
	}
	fn := b.vm.GetGlobal("advance")
	if fn.Type() != lua.LTFunction {
		return true, fmt.Errorf("%s: %w", b.name, ErrNoAdvance)
	}

	ud := b.vm.NewUserData()
	ud.Value = e
	b.vm.SetMetatable(ud, b.vm.GetTypeMetatable(entityType))

	if err := b.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, ud, lua.LNumber(dt)); err != nil {
		return true, fmt.Errorf("run %s: %w", b.name, err)
	}
	ret := b.vm.Get(-1)
	b.vm.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Reset picks up a reloaded script and calls its reset function.
func (b *Behavior) Reset() {
	if err := b.ensure(); err != nil {
		b.logger.Warn("script unavailable", log.Error(err))
		return
	}
	fn := b.vm.GetGlobal("reset")
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := b.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		b.logger.Warn("script reset failed", log.Error(err))
	}
}

// Close releases the VM.
func (b *Behavior) Close() {
	if b.vm != nil {
		b.vm.Close()
		b.vm = nil
	}
}

// ensure loads the script into a fresh VM when none exists yet or the
// library holds a newer version.
func (b *Behavior) ensure() error {
	s, ok := b.lib.Get(b.name)
	if !ok {
		return fmt.Errorf("%s: %w", b.name, ErrUnknownScript)
	}
	if b.vm != nil && s.Version == b.version {
		return nil
	}

	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(apiVersion))
	vm.SetGlobal("log", vm.NewFunction(b.luaLog))
	registerEntity(vm)

	vm.Push(vm.NewFunctionFromProto(s.proto))
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return fmt.Errorf("load %s: %w", b.name, err)
	}

	b.Close()
	b.vm = vm
	b.version = s.Version
	b.logger.Debug("script loaded", log.Uint64("version", s.Version))
	return nil
}

func (b *Behavior) luaLog(L *lua.LState) int {
	b.logger.Info(L.CheckString(1))
	return 0
}

func registerEntity(L *lua.LState) {
	mt := L.NewTypeMetatable(entityType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), entityMethods))
}

var entityMethods = map[string]lua.LGFunction{
	"id":              entityID,
	"position":        entityPosition,
	"set_position":    entitySetPosition,
	"move":            entityMove,
	"rotation":        entityRotation,
	"set_rotation":    entitySetRotation,
	"rotate":          entityRotate,
	"zoom":            entityZoom,
	"set_zoom":        entitySetZoom,
	"spot_angle":      entitySpotAngle,
	"set_spot_angle":  entitySetSpotAngle,
	"light_strength":  entityLightStrength,
	"set_light_color": entitySetLightColor,
}

func checkEntity(L *lua.LState) *scene.Entity {
	ud := L.CheckUserData(1)
	if e, ok := ud.Value.(*scene.Entity); ok {
		return e
	}
	L.ArgError(1, "entity expected")
	return nil
}

func checkVec(L *lua.LState, from int) [3]float32 {
	return [3]float32{
		float32(L.CheckNumber(from)),
		float32(L.CheckNumber(from + 1)),
		float32(L.CheckNumber(from + 2)),
	}
}

func pushVec(L *lua.LState, v [3]float32) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}

func entityID(L *lua.LState) int {
	L.Push(lua.LNumber(checkEntity(L).ID()))
	return 1
}

func entityPosition(L *lua.LState) int {
	return pushVec(L, checkEntity(L).Transform.Position)
}

func entitySetPosition(L *lua.LState) int {
	e := checkEntity(L)
	e.Transform.Position = checkVec(L, 2)
	return 0
}

func entityMove(L *lua.LState) int {
	e := checkEntity(L)
	e.Transform.Position = e.Transform.Position.Add(checkVec(L, 2))
	return 0
}

func entityRotation(L *lua.LState) int {
	return pushVec(L, checkEntity(L).Transform.Rotation)
}

func entitySetRotation(L *lua.LState) int {
	e := checkEntity(L)
	e.Transform.Rotation = checkVec(L, 2)
	e.Transform.DeriveLook()
	return 0
}

func entityRotate(L *lua.LState) int {
	e := checkEntity(L)
	e.Transform.Rotation = e.Transform.Rotation.Add(checkVec(L, 2))
	e.Transform.DeriveLook()
	return 0
}

func cameraOf(L *lua.LState) *camera.Camera {
	e := checkEntity(L)
	if m, ok := e.Module(scene.CapCamera); ok {
		if c, ok := m.(*camera.Camera); ok {
			return c
		}
	}
	L.RaiseError("entity %d has no camera", e.ID())
	return nil
}

func entityZoom(L *lua.LState) int {
	L.Push(lua.LNumber(cameraOf(L).Zoom))
	return 1
}

func entitySetZoom(L *lua.LState) int {
	c := cameraOf(L)
	c.Zoom = float32(L.CheckNumber(2))
	return 0
}

func lightOf(L *lua.LState) light.Source {
	e := checkEntity(L)
	if m, ok := e.Module(scene.CapLight); ok {
		if s, ok := m.(light.Source); ok {
			return s
		}
	}
	L.RaiseError("entity %d has no light", e.ID())
	return nil
}

func spotOf(L *lua.LState) *light.Spot {
	s, ok := lightOf(L).(*light.Spot)
	if !ok {
		L.RaiseError("light is not a spot light")
	}
	return s
}

// spot_angle returns the spot's edge angle in degrees.
func entitySpotAngle(L *lua.LState) int {
	L.Push(lua.LNumber(mathx.Degrees(spotOf(L).Angle())))
	return 1
}

func entitySetSpotAngle(L *lua.LState) int {
	s := spotOf(L)
	s.SetAngleDegrees(float32(L.CheckNumber(2)))
	return 0
}

func entityLightStrength(L *lua.LState) int {
	L.Push(lua.LNumber(lightOf(L).Params().Color.W()))
	return 1
}

// set_light_color(r, g, b [, strength]) keeps the strength when omitted.
func entitySetLightColor(L *lua.LState) int {
	s, ok := lightOf(L).(interface {
		Color() mgl32.Vec4
		SetColor(c mgl32.Vec4)
	})
	if !ok {
		L.RaiseError("light color is read-only")
		return 0
	}
	rgb := checkVec(L, 2)
	strength := float32(L.OptNumber(5, lua.LNumber(s.Color()[3])))
	s.SetColor(mgl32.Vec4{rgb[0], rgb[1], rgb[2], strength})
	return 0
}
