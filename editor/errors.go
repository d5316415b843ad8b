package editor

import "errors"

// Sentinel errors for editing gestures.
var (
	// ErrNoStaff indicates no staff could be associated with a symbol location.
	ErrNoStaff = errors.New("editor: no staff")

	// ErrUnexpectedEditor indicates an object editor the controller cannot apply.
	ErrUnexpectedEditor = errors.New("editor: unexpected object editor")

	// ErrGestureFailed wraps a panic recovered while a gesture was running.
	ErrGestureFailed = errors.New("editor: gesture failed")

	// ErrBadArgument indicates inters unsuitable for the requested operation.
	ErrBadArgument = errors.New("editor: bad argument")

	// ErrAlreadyRunning indicates Run was called on a running controller.
	ErrAlreadyRunning = errors.New("editor: controller already running")
)
