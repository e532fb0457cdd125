package bus

// Engine lifecycle event types.
const (
	EventInitialized    = "initialized"
	EventLoadingStarted = "loadingStarted"
	EventLoadingStopped = "loadingStopped"
	EventGamePaused     = "gamePaused"
	EventGameResumed    = "gameResumed"
	EventGameStopped    = "gameStopped"
)
