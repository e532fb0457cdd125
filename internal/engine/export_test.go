package engine

// Load exposes the scene load step to the external tests.
func (e *Engine) Load() error { return e.load() }
