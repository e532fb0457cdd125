//go:build gl

package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/zeusync/lightengine/internal/core/input"
)

// keys maps binding names to GLFW keys. Letters and digits are added by init.
var keys = map[input.Key]glfw.Key{
	"SPACE":         glfw.KeySpace,
	"ESCAPE":        glfw.KeyEscape,
	"ENTER":         glfw.KeyEnter,
	"TAB":           glfw.KeyTab,
	"BACKSPACE":     glfw.KeyBackspace,
	"LEFT_SHIFT":    glfw.KeyLeftShift,
	"RIGHT_SHIFT":   glfw.KeyRightShift,
	"LEFT_CONTROL":  glfw.KeyLeftControl,
	"RIGHT_CONTROL": glfw.KeyRightControl,
	"LEFT_ALT":      glfw.KeyLeftAlt,
	"RIGHT_ALT":     glfw.KeyRightAlt,
	"UP":            glfw.KeyUp,
	"DOWN":          glfw.KeyDown,
	"LEFT":          glfw.KeyLeft,
	"RIGHT":         glfw.KeyRight,
	"F1":            glfw.KeyF1,
	"F2":            glfw.KeyF2,
	"F3":            glfw.KeyF3,
	"F4":            glfw.KeyF4,
	"F5":            glfw.KeyF5,
	"F6":            glfw.KeyF6,
	"F7":            glfw.KeyF7,
	"F8":            glfw.KeyF8,
	"F9":            glfw.KeyF9,
	"F10":           glfw.KeyF10,
	"F11":           glfw.KeyF11,
	"F12":           glfw.KeyF12,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		keys[input.Key(string(c))] = glfw.KeyA + glfw.Key(c-'A')
	}
	for c := '0'; c <= '9'; c++ {
		keys[input.Key(string(c))] = glfw.Key0 + glfw.Key(c-'0')
	}
}
