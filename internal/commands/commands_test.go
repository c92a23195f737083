package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/langbridge/internal/dispose"
	"github.com/dshills/langbridge/internal/extapi"
)

func echo(_ context.Context, args ...any) (any, error) {
	return args, nil
}

func TestRegistry_RegisterExecute(t *testing.T) {
	r := NewRegistry()
	d, err := r.Register("ext", "acme.echo", echo)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, err := r.Execute(context.Background(), "acme.echo", 1, "two")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if args := got.([]any); len(args) != 2 || args[1] != "two" {
		t.Errorf("Expected echoed args, got %v", got)
	}

	if _, err := r.Register("other", "acme.echo", echo); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}

	d.Dispose()
	if r.Has("acme.echo") {
		t.Error("Expected command to be removed")
	}
	if _, err := r.Execute(context.Background(), "acme.echo"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestRegistry_Invalid(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Register("ext", "", echo); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand, got %v", err)
	}
	if _, err := r.Register("ext", "x", nil); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand, got %v", err)
	}
}

func TestRegistry_Panic(t *testing.T) {
	r := NewRegistry()
	r.Register("ext", "boom", func(context.Context, ...any) (any, error) { panic("bad") })
	if _, err := r.Execute(context.Background(), "boom"); !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("Expected ErrHandlerPanic, got %v", err)
	}
}

func TestRegistry_UnregisterOwner(t *testing.T) {
	r := NewRegistry()
	r.Register("a", "a.one", echo)
	r.Register("a", "a.two", echo)
	r.Register("b", "b.one", echo)

	if n := r.UnregisterOwner("a"); n != 2 {
		t.Errorf("Expected 2 removed, got %d", n)
	}
	if ids := r.List(); len(ids) != 1 || ids[0] != "b.one" {
		t.Errorf("Expected [b.one], got %v", ids)
	}
}

func TestConverter_PlainCommand(t *testing.T) {
	c, err := NewConverter(NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if c.ToInternal(nil, dispose.NewStore()) != nil {
		t.Error("Expected nil for nil command")
	}

	got := c.ToInternal(&extapi.Command{Title: "Run", Command: "acme.run", Tooltip: "tip"}, dispose.NewStore())
	if got.ID != "acme.run" || got.Title != "Run" || got.Tooltip != "tip" || got.Arguments != nil {
		t.Errorf("Unexpected command %+v", got)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected nothing parked, got %d", c.Pending())
	}
}

func TestConverter_Delegation(t *testing.T) {
	r := NewRegistry()
	var received []any
	r.Register("ext", "acme.apply", func(_ context.Context, args ...any) (any, error) {
		received = args
		return "ok", nil
	})
	c, err := NewConverter(r)
	if err != nil {
		t.Fatal(err)
	}

	store := dispose.NewStore()
	arg := map[string]int{"n": 1}
	wire := c.ToInternal(&extapi.Command{Title: "Apply", Command: "acme.apply", Arguments: []any{arg, 2}}, store)
	if wire.ID != DelegationCommand {
		t.Fatalf("Expected delegation id, got %q", wire.ID)
	}
	if len(wire.Arguments) != 1 {
		t.Fatalf("Expected a single reference argument, got %v", wire.Arguments)
	}

	result, err := r.Execute(context.Background(), DelegationCommand, wire.Arguments...)
	if err != nil || result != "ok" {
		t.Fatalf("Execute = %v, %v", result, err)
	}
	if len(received) != 2 || received[1] != 2 {
		t.Errorf("Expected original arguments, got %v", received)
	}

	store.Dispose()
	if c.Pending() != 0 {
		t.Errorf("Expected release to drop parked command, got %d", c.Pending())
	}
	if _, err := r.Execute(context.Background(), DelegationCommand, wire.Arguments...); !errors.Is(err, ErrStaleDelegation) {
		t.Errorf("Expected ErrStaleDelegation, got %v", err)
	}
}

func TestConverter_DelegationArguments(t *testing.T) {
	r := NewRegistry()
	if _, err := NewConverter(r); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		args []any
	}{
		{"none", nil},
		{"two", []any{"a", "b"}},
		{"not a string", []any{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), DelegationCommand, tt.args...); !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Expected ErrInvalidCommand, got %v", err)
			}
		})
	}
}

func TestNewConverter_Twice(t *testing.T) {
	r := NewRegistry()
	if _, err := NewConverter(r); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConverter(r); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}
}
