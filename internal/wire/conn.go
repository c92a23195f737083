package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dshills/langbridge/internal/logging"
)

// MethodCancelRequest cancels an in-flight request of the peer.
const MethodCancelRequest = "$cancelRequest"

// Handler serves one method. For notifications the result is discarded.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Request is an outgoing request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  any             `json:"params,omitempty"`
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// message is any incoming frame.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// outgoingResponse always carries a result member on success, even null.
type outgoingResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type errorResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *RPCError       `json:"error"`
}

type cancelParams struct {
	ID json.RawMessage `json:"id"`
}

// Conn is a JSON-RPC peer over a Stream.
type Conn struct {
	stream Stream
	log    *logging.Logger
	mapErr ErrorMapper

	mu       sync.Mutex
	handlers map[string]Handler
	pending  map[string]chan *Response
	inflight map[string]context.CancelFunc

	nextID atomic.Int64
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the connection logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Conn) {
		if log != nil {
			c.log = log
		}
	}
}

// WithErrorMapper replaces DefaultErrorMapper.
func WithErrorMapper(m ErrorMapper) Option {
	return func(c *Conn) {
		if m != nil {
			c.mapErr = m
		}
	}
}

// NewConn creates a connection. Register handlers before calling Run.
func NewConn(stream Stream, opts ...Option) *Conn {
	c := &Conn{
		stream:   stream,
		log:      logging.Null(),
		mapErr:   DefaultErrorMapper,
		handlers: make(map[string]Handler),
		pending:  make(map[string]chan *Response),
		inflight: make(map[string]context.CancelFunc),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("wire")
	return c
}

// Handle registers h for method, replacing any earlier handler.
func (c *Conn) Handle(method string, h Handler) {
	c.mu.Lock()
	c.handlers[method] = h
	c.mu.Unlock()
}

// Methods returns the number of registered methods.
func (c *Conn) Methods() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// Run reads messages until the stream ends, ctx is cancelled or Close is
// called. An orderly end of the stream returns nil.
func (c *Conn) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	var runErr error
	for {
		data, err := c.stream.Read()
		if err != nil {
			if !c.closed.Load() && !IsClosedError(err) {
				runErr = err
			}
			break
		}
		c.dispatch(ctx, data)
	}

	c.Close()
	cancel()
	c.wg.Wait()
	return runErr
}

// Done is closed when the connection closes.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection down and cancels in-flight requests.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.mu.Lock()
	for _, cancel := range c.inflight {
		cancel()
	}
	c.pending = make(map[string]chan *Response)
	c.mu.Unlock()

	return c.stream.Close()
}

// Call sends a request and decodes the result into result, which may be nil.
func (c *Conn) Call(ctx context.Context, method string, params any, result any) error {
	if c.closed.Load() {
		return ErrClosed
	}

	id := strconv.FormatInt(c.nextID.Add(1), 10)
	ch := make(chan *Response, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := &Request{JSONRPC: "2.0", ID: json.RawMessage(id), Method: method, Params: params}
	if err := c.send(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = c.Notify(context.Background(), MethodCancelRequest, cancelParams{ID: json.RawMessage(id)})
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}
}

// Notify sends a notification.
func (c *Conn) Notify(_ context.Context, method string, params any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.send(&Request{JSONRPC: "2.0", Method: method, Params: params})
}

func (c *Conn) send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.stream.Write(data)
}

func (c *Conn) dispatch(ctx context.Context, data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn("dropping malformed message: %v", err)
		_ = c.send(&errorResponse{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &RPCError{Code: CodeParseError, Message: err.Error()},
		})
		return
	}

	hasID := len(msg.ID) > 0 && string(msg.ID) != "null"
	switch {
	case msg.Method == "" && hasID:
		c.handleResponse(&Response{JSONRPC: msg.JSONRPC, ID: msg.ID, Result: msg.Result, Error: msg.Error})
	case msg.Method == MethodCancelRequest:
		c.handleCancel(msg.Params)
	case msg.Method != "" && hasID:
		c.handleRequest(ctx, &msg)
	case msg.Method != "":
		c.handleNotification(ctx, &msg)
	default:
		c.log.Warn("dropping message without method or id")
	}
}

func (c *Conn) handleResponse(resp *Response) {
	key := idKey(resp.ID)
	c.mu.Lock()
	ch, ok := c.pending[key]
	if ok {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if !ok {
		c.log.Debug("response for unknown request %s", key)
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

func (c *Conn) handleCancel(params json.RawMessage) {
	var p cancelParams
	if err := json.Unmarshal(params, &p); err != nil || len(p.ID) == 0 {
		c.log.Warn("bad %s params: %s", MethodCancelRequest, params)
		return
	}
	key := idKey(p.ID)
	c.mu.Lock()
	cancel, ok := c.inflight[key]
	c.mu.Unlock()
	if ok {
		c.log.Debug("cancelling request %s", key)
		cancel()
	}
}

func (c *Conn) lookup(method string) (Handler, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handlers[method]
	return h, ok
}

func (c *Conn) handleRequest(ctx context.Context, msg *message) {
	h, ok := c.lookup(msg.Method)
	if !ok {
		c.reply(msg.ID, nil, &RPCError{Code: CodeMethodNotFound, Message: "method not found: " + msg.Method})
		return
	}

	key := idKey(msg.ID)
	reqCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.inflight[key] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
			cancel()
		}()

		result, err := c.call(reqCtx, msg.Method, h, msg.Params)
		if err != nil {
			c.reply(msg.ID, nil, c.mapErr(err))
			return
		}
		c.reply(msg.ID, result, nil)
	}()
}

func (c *Conn) handleNotification(ctx context.Context, msg *message) {
	h, ok := c.lookup(msg.Method)
	if !ok {
		c.log.Debug("no handler for notification %s", msg.Method)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.call(ctx, msg.Method, h, msg.Params); err != nil {
			c.log.Warn("notification %s failed: %v", msg.Method, err)
		}
	}()
}

// call runs h, turning a panic into an internal error.
func (c *Conn) call(ctx context.Context, method string, h Handler, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler %s panicked: %v", method, r)
			err = &RPCError{Code: CodeInternalError, Message: fmt.Sprintf("handler panic: %v", r)}
		}
	}()
	return h(ctx, params)
}

func (c *Conn) reply(id json.RawMessage, result any, rpcErr *RPCError) {
	if c.closed.Load() {
		return
	}
	var err error
	if rpcErr != nil {
		err = c.send(&errorResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
	} else {
		err = c.send(&outgoingResponse{JSONRPC: "2.0", ID: id, Result: result})
	}
	if err != nil && !errors.Is(err, ErrClosed) {
		c.log.Warn("writing response %s: %v", idKey(id), err)
	}
}

// idKey normalizes a raw id so that 7 and "7" match.
func idKey(id json.RawMessage) string {
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		return s
	}
	return string(id)
}
