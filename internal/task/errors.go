package task

import "errors"

// ErrModeNotFound is returned (wrapped) when a mode slug does not
// resolve in the registry.
var ErrModeNotFound = errors.New("mode not found")

// ErrConflict is returned (wrapped) when an operation's precondition on
// task state is violated (e.g. switching mode or completing a task that
// is already terminal).
var ErrConflict = errors.New("conflict")

// ErrTaskNotFound is returned (wrapped) when a task id does not resolve,
// e.g. as a create_task parent reference.
var ErrTaskNotFound = errors.New("task not found")
