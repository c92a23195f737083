package wire

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// pipeCloser closes both ends of a stream's pipes.
type pipeCloser struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeCloser) Close() error {
	p.r.Close()
	p.w.Close()
	return nil
}

// newStreamPair connects two header streams back to back.
func newStreamPair() (*HeaderStream, *HeaderStream) {
	abR, abW := io.Pipe()
	baR, baW := io.Pipe()
	a := NewHeaderStream(baR, abW, pipeCloser{baR, abW})
	b := NewHeaderStream(abR, baW, pipeCloser{abR, baW})
	return a, b
}

// newConnPair starts two connected peers. server gets handlers before Run.
func newConnPair(t *testing.T, setup func(server *Conn)) (client, server *Conn) {
	t.Helper()
	a, b := newStreamPair()
	client = NewConn(a)
	server = NewConn(b)
	if setup != nil {
		setup(server)
	}
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); client.Run(ctx) }()
	go func() { defer wg.Done(); server.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return client, server
}

func TestHeaderStream_RoundTrip(t *testing.T) {
	a, b := newStreamPair()
	defer a.Close()
	defer b.Close()

	go func() {
		a.Write([]byte(`{"hello":"world"}`))
		a.Write([]byte(`{}`))
	}()
	for _, want := range []string{`{"hello":"world"}`, `{}`} {
		got, err := b.Read()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		if string(got) != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestHeaderStream_Headers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"content type ignored", "Content-Type: application/json\r\nContent-Length: 2\r\n\r\n{}", "{}", nil},
		{"case insensitive", "content-length: 4\r\n\r\nnull", "null", nil},
		{"missing length", "Content-Type: x\r\n\r\n{}", "", ErrMissingContentLength},
		{"eof", "", "", io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewHeaderStream(strings.NewReader(tt.input), io.Discard, nil)
			got, err := s.Read()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || string(got) != tt.want {
				t.Errorf("Read = %q, %v", got, err)
			}
		})
	}
}

func TestHeaderStream_TooLarge(t *testing.T) {
	s := NewHeaderStream(strings.NewReader("Content-Length: 10\r\n\r\n0123456789"), io.Discard, nil)
	s.limit = 4
	if _, err := s.Read(); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Expected ErrMessageTooLarge, got %v", err)
	}
}

func TestConn_Call(t *testing.T) {
	client, _ := newConnPair(t, func(server *Conn) {
		server.Handle("$add", func(_ context.Context, params json.RawMessage) (any, error) {
			var p struct{ A, B int }
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, InvalidParams(err)
			}
			return p.A + p.B, nil
		})
		server.Handle("$nothing", func(context.Context, json.RawMessage) (any, error) {
			return nil, nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var sum int
	if err := client.Call(ctx, "$add", map[string]int{"A": 2, "B": 3}, &sum); err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if sum != 5 {
		t.Errorf("Expected 5, got %d", sum)
	}

	var raw json.RawMessage
	if err := client.Call(ctx, "$nothing", nil, &raw); err != nil {
		t.Fatalf("Call error: %v", err)
	}
}

func TestConn_Errors(t *testing.T) {
	client, _ := newConnPair(t, func(server *Conn) {
		server.Handle("$bad", func(_ context.Context, params json.RawMessage) (any, error) {
			return nil, InvalidParams(errors.New("no"))
		})
		server.Handle("$fail", func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("broken")
		})
		server.Handle("$panic", func(context.Context, json.RawMessage) (any, error) {
			panic("oops")
		})
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tests := []struct {
		method string
		code   int
	}{
		{"$missing", CodeMethodNotFound},
		{"$bad", CodeInvalidParams},
		{"$fail", CodeInternalError},
		{"$panic", CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			err := client.Call(ctx, tt.method, nil, nil)
			var rpcErr *RPCError
			if !errors.As(err, &rpcErr) {
				t.Fatalf("Expected *RPCError, got %v", err)
			}
			if rpcErr.Code != tt.code {
				t.Errorf("Expected code %d, got %d", tt.code, rpcErr.Code)
			}
		})
	}
}

func TestConn_CancelRequest(t *testing.T) {
	started := make(chan struct{})
	client, _ := newConnPair(t, func(server *Conn) {
		server.Handle("$slow", func(ctx context.Context, _ json.RawMessage) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- client.Call(ctx, "$slow", nil, nil) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not return after cancel")
	}
}

func TestConn_CancelledHandlerReportsCode(t *testing.T) {
	a, b := newStreamPair()
	server := NewConn(b)
	server.Handle("$slow", func(ctx context.Context, _ json.RawMessage) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	go server.Run(context.Background())
	defer server.Close()
	defer a.Close()

	a.Write([]byte(`{"jsonrpc":"2.0","id":"r-1","method":"$slow"}`))
	a.Write([]byte(`{"jsonrpc":"2.0","method":"$cancelRequest","params":{"id":"r-1"}}`))

	data, err := a.Read()
	if err != nil {
		t.Fatal(err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeRequestCancelled {
		t.Errorf("Expected cancelled error, got %s", data)
	}
	if string(resp.ID) != `"r-1"` {
		t.Errorf("Expected id echoed, got %s", resp.ID)
	}
}

func TestConn_NullResultIsSent(t *testing.T) {
	a, b := newStreamPair()
	server := NewConn(b)
	server.Handle("$nil", func(context.Context, json.RawMessage) (any, error) { return nil, nil })
	go server.Run(context.Background())
	defer server.Close()
	defer a.Close()

	a.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"$nil"}`))
	data, err := a.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"result":null`) {
		t.Errorf("Expected explicit null result, got %s", data)
	}
}

func TestConn_Notifications(t *testing.T) {
	got := make(chan string, 1)
	client, _ := newConnPair(t, func(server *Conn) {
		server.Handle("$ping", func(_ context.Context, params json.RawMessage) (any, error) {
			var s string
			json.Unmarshal(params, &s)
			got <- s
			return nil, nil
		})
	})

	if err := client.Notify(context.Background(), "$ping", "hello"); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-got:
		if s != "hello" {
			t.Errorf("Expected hello, got %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestConn_CloseFailsCalls(t *testing.T) {
	a, _ := newStreamPair()
	c := NewConn(a)
	c.Close()
	if err := c.Call(context.Background(), "$x", nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := c.Notify(context.Background(), "$x", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	select {
	case <-c.Done():
	default:
		t.Error("Expected Done to be closed")
	}
}

func TestIdKey(t *testing.T) {
	if idKey(json.RawMessage(`7`)) != idKey(json.RawMessage(`"7"`)) {
		t.Error("Expected numeric and string ids to match")
	}
}

func TestWebSocket_RoundTrip(t *testing.T) {
	accepted := make(chan *Conn, 1)
	acceptor := NewAcceptor(func(s Stream) {
		server := NewConn(s)
		server.Handle("$echo", func(_ context.Context, params json.RawMessage) (any, error) {
			return params, nil
		})
		accepted <- server
		server.Run(context.Background())
	}, nil)
	srv := httptest.NewServer(acceptor)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	client := NewConn(stream)
	go client.Run(context.Background())
	defer client.Close()

	var out map[string]string
	if err := client.Call(ctx, "$echo", map[string]string{"k": "v"}, &out); err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if out["k"] != "v" {
		t.Errorf("Expected echo, got %v", out)
	}

	server := <-accepted
	client.Close()
	select {
	case <-server.Done():
	case <-time.After(2 * time.Second):
		t.Error("server did not notice close")
	}
}

func TestAcceptor_RejectsRemoteOrigin(t *testing.T) {
	a := NewAcceptor(func(Stream) {}, nil)
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://evil.example")
	if a.checkLocalOrigin(r) {
		t.Error("Expected remote origin to be rejected")
	}
	r.Header.Set("Origin", "http://localhost:3000")
	if !a.checkLocalOrigin(r) {
		t.Error("Expected localhost to be accepted")
	}
}
