package input

// Named input events used by the built-in modules.
const (
	Forward   = "forward"
	Backward  = "backward"
	Left      = "left"
	Right     = "right"
	Down      = "down"
	Up        = "up"
	Jump      = "jump"
	Sprint    = "sprint"
	Sneak     = "sneak"
	PauseGame = "pauseGame"
	Mono      = "monochrome"
)

// DefaultBindings installs the standard keyboard layout on m. Extra maps
// event names to keys and overrides the defaults.
func DefaultBindings(m *Mapper, extra map[string][]Key) {
	m.Bind(Forward, "W")
	m.Bind(Backward, "S")
	m.Bind(Left, "A")
	m.Bind(Right, "D")
	m.Bind(Down, "LEFT_SHIFT")
	m.Bind(Up, "SPACE")
	m.Bind(Jump, "SPACE")
	m.Bind(Sprint, "LEFT_CONTROL")
	m.Bind(Sneak, "C")
	m.Bind(PauseGame, "ESCAPE")
	m.Bind(Mono, "F3")
	for event, keys := range extra {
		m.Bind(event, keys...)
	}
}
