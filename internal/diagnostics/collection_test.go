package diagnostics

import (
	"sync"
	"testing"
	"time"

	"github.com/dshills/langbridge/internal/extapi"
)

const uri extapi.URI = "file:///a.go"

func diag(line int, sev extapi.DiagnosticSeverity, msg string) extapi.Diagnostic {
	return extapi.Diagnostic{
		Range:    extapi.NewRange(line, 0, line, 5),
		Severity: sev,
		Message:  msg,
	}
}

func TestCollection_MergesOwnersSorted(t *testing.T) {
	c := New()
	c.Set("lint", uri, []extapi.Diagnostic{diag(5, extapi.SeverityWarning, "w5"), diag(1, extapi.SeverityHint, "h1")})
	c.Set("vet", uri, []extapi.Diagnostic{diag(3, extapi.SeverityError, "e3")})

	got := c.Diagnostics(uri)
	want := []string{"h1", "e3", "w5"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d diagnostics, got %d", len(want), len(got))
	}
	for i, msg := range want {
		if got[i].Message != msg {
			t.Errorf("Expected %q at %d, got %q", msg, i, got[i].Message)
		}
	}
}

func TestCollection_SetReplacesAndEmptyDeletes(t *testing.T) {
	c := New()
	c.Set("lint", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a")})
	c.Set("lint", uri, []extapi.Diagnostic{diag(1, extapi.SeverityError, "b")})
	if got := c.Diagnostics(uri); len(got) != 1 || got[0].Message != "b" {
		t.Errorf("Expected replacement, got %v", got)
	}
	c.Delete("lint", uri)
	if got := c.Diagnostics(uri); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
	if len(c.URIs()) != 0 {
		t.Errorf("Expected no URIs, got %v", c.URIs())
	}
}

func TestCollection_ClearOwner(t *testing.T) {
	c := New()
	c.Set("lint", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a")})
	c.Set("lint", "file:///b.go", []extapi.Diagnostic{diag(0, extapi.SeverityError, "b")})
	c.Set("vet", uri, []extapi.Diagnostic{diag(2, extapi.SeverityError, "c")})

	c.Clear("lint")
	if got := c.Diagnostics(uri); len(got) != 1 || got[0].Message != "c" {
		t.Errorf("Expected only vet diagnostics, got %v", got)
	}
	if uris := c.URIs(); len(uris) != 1 || uris[0] != uri {
		t.Errorf("Expected [%s], got %v", uri, uris)
	}
}

func TestCollection_Filtering(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		in   []extapi.Diagnostic
		want int
	}{
		{
			name: "min severity",
			opts: []Option{WithMinSeverity(extapi.SeverityWarning)},
			in:   []extapi.Diagnostic{diag(0, extapi.SeverityError, "e"), diag(1, extapi.SeverityWarning, "w"), diag(2, extapi.SeverityHint, "h")},
			want: 2,
		},
		{
			name: "max per file",
			opts: []Option{WithMaxPerFile(2)},
			in:   []extapi.Diagnostic{diag(0, extapi.SeverityError, "a"), diag(1, extapi.SeverityError, "b"), diag(2, extapi.SeverityError, "c")},
			want: 2,
		},
		{
			name: "defaults keep all",
			in:   []extapi.Diagnostic{diag(0, extapi.SeverityHint, "a"), diag(1, extapi.SeverityInformation, "b")},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.opts...)
			c.Set("x", uri, tt.in)
			if got := len(c.Diagnostics(uri)); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCollection_DiagnosticsAt(t *testing.T) {
	c := New()
	c.Set("x", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a"), diag(4, extapi.SeverityError, "b")})
	got := c.DiagnosticsAt(uri, extapi.NewPosition(4, 2))
	if len(got) != 1 || got[0].Message != "b" {
		t.Errorf("Expected [b], got %v", got)
	}
}

func TestCollection_Summary(t *testing.T) {
	c := New()
	c.Set("x", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a"), diag(1, extapi.SeverityWarning, "b")})
	c.Set("y", "file:///b.go", []extapi.Diagnostic{diag(0, extapi.SeverityHint, "c"), diag(1, extapi.SeverityInformation, "d")})

	s := c.Summary()
	want := Summary{Files: 2, Errors: 1, Warnings: 1, Infos: 1, Hints: 1}
	if s != want {
		t.Errorf("Expected %+v, got %+v", want, s)
	}
}

func TestCollection_ChangeHandler(t *testing.T) {
	var calls []int
	c := New(WithChangeHandler(func(u extapi.URI, diags []extapi.Diagnostic) {
		if u != uri {
			t.Errorf("Expected %s, got %s", uri, u)
		}
		calls = append(calls, len(diags))
	}))

	c.Set("x", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a")})
	c.Set("y", uri, []extapi.Diagnostic{diag(1, extapi.SeverityError, "b")})
	c.Clear("x")

	want := []int{1, 2, 1}
	if len(calls) != len(want) {
		t.Fatalf("Expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, calls)
			break
		}
	}
}

func TestCollection_DebouncedChanges(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	done := make(chan struct{}, 4)
	c := New(
		WithDebounce(20*time.Millisecond),
		WithChangeHandler(func(_ extapi.URI, diags []extapi.Diagnostic) {
			mu.Lock()
			calls = append(calls, len(diags))
			mu.Unlock()
			done <- struct{}{}
		}),
	)
	defer c.Close()

	c.Set("x", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a")})
	c.Set("x", uri, []extapi.Diagnostic{diag(0, extapi.SeverityError, "a"), diag(1, extapi.SeverityError, "b")})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 2 {
		t.Errorf("Expected a single notification with 2 diagnostics, got %v", calls)
	}
}
