package commands

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// DelegationCommand is the wire id of commands whose arguments stay on this
// side of the connection.
const DelegationCommand = "_internal_command_delegation"

// Converter turns native commands into wire commands.
type Converter struct {
	registry *Registry

	mu      sync.Mutex
	nextID  int
	delayed map[string]*extapi.Command
}

// NewConverter creates a converter and registers the delegation command in
// reg.
func NewConverter(reg *Registry) (*Converter, error) {
	c := &Converter{
		registry: reg,
		delayed:  make(map[string]*extapi.Command),
	}
	if _, err := reg.Register("", DelegationCommand, c.executeDelegated); err != nil {
		return nil, err
	}
	return c, nil
}

// ToInternal converts cmd. Commands with arguments are parked until store
// is disposed and travel as a reference to DelegationCommand.
func (c *Converter) ToInternal(cmd *extapi.Command, store *dispose.Store) *protocol.Command {
	if cmd == nil {
		return nil
	}

	result := &protocol.Command{
		ID:      cmd.Command,
		Title:   cmd.Title,
		Tooltip: cmd.Tooltip,
	}
	if len(cmd.Arguments) == 0 || store == nil {
		result.Arguments = cmd.Arguments
		return result
	}

	c.mu.Lock()
	c.nextID++
	key := cmd.Command + "/" + strconv.Itoa(c.nextID)
	c.delayed[key] = cmd
	c.mu.Unlock()

	store.AddFunc(func() {
		c.mu.Lock()
		delete(c.delayed, key)
		c.mu.Unlock()
	})

	result.ID = DelegationCommand
	result.Arguments = []any{key}
	return result
}

// Pending returns the number of parked commands.
func (c *Converter) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.delayed)
}

func (c *Converter) executeDelegated(ctx context.Context, args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected one reference, got %d arguments", ErrInvalidCommand, len(args))
	}
	key, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: reference must be a string", ErrInvalidCommand)
	}

	c.mu.Lock()
	cmd, ok := c.delayed[key]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaleDelegation, key)
	}
	return c.registry.Execute(ctx, cmd.Command, cmd.Arguments...)
}
