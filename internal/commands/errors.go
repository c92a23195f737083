package commands

import "errors"

var (
	// ErrUnknownCommand indicates no handler is registered for a command id.
	ErrUnknownCommand = errors.New("commands: unknown command")

	// ErrAlreadyRegistered indicates a command id is taken.
	ErrAlreadyRegistered = errors.New("commands: command already registered")

	// ErrInvalidCommand indicates an empty command id.
	ErrInvalidCommand = errors.New("commands: invalid command")

	// ErrHandlerPanic indicates a command handler panicked.
	ErrHandlerPanic = errors.New("commands: handler panic")

	// ErrStaleDelegation indicates the delegated command was already released.
	ErrStaleDelegation = errors.New("commands: delegated command no longer available")
)
