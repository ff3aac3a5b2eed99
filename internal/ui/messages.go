package ui

// Message types for async overlay events. The fetch coordinator and
// renderer run off the bubbletea goroutine; their callbacks hand events
// to the program via Send rather than touching the model directly.

// overlayFrameMsg is sent after the overlay surface drew a new frame.
type overlayFrameMsg struct{}

// loadingChangedMsg is sent when a forecast fetch starts or finishes.
type loadingChangedMsg struct {
	loading bool
}

// overlayErrorMsg carries a user-visible fetch message; empty clears it.
type overlayErrorMsg struct {
	message string
}

// dataCommittedMsg is sent when new samples or a new water mask landed.
type dataCommittedMsg struct{}

// RefreshMsg asks the overlay to re-fetch the current view. The periodic
// refresh job sends it from outside the ui package.
type RefreshMsg struct{}
