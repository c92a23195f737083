package luaext

import (
	"errors"
	"fmt"
)

// Errors returned by the extension runtime.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("luaext: lua state is closed")

	// ErrExecutionTimeout is returned when a script runs past its time budget.
	ErrExecutionTimeout = errors.New("luaext: execution timeout")

	// ErrScriptPanic is returned when the interpreter panics.
	ErrScriptPanic = errors.New("luaext: lua panic")

	// ErrNoEntryPoint indicates an extension directory without a script.
	ErrNoEntryPoint = errors.New("luaext: no entry point")

	// ErrNotLoaded indicates an unknown extension id.
	ErrNotLoaded = errors.New("luaext: extension not loaded")

	// ErrAlreadyLoaded indicates an extension id that is taken.
	ErrAlreadyLoaded = errors.New("luaext: extension already loaded")
)

// Manifest validation errors.
var (
	ErrMissingName    = errors.New("manifest: name is required")
	ErrInvalidName    = errors.New("manifest: name must be lowercase alphanumeric with hyphens or dots")
	ErrInvalidVersion = errors.New("manifest: version must be valid semver")
	ErrInvalidMain    = errors.New("manifest: main must be a .lua file")
)

// ValueError reports a script result of the wrong shape.
type ValueError struct {
	Field    string
	Expected string
	Got      string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("luaext: %s: expected %s, got %s", e.Field, e.Expected, e.Got)
}
