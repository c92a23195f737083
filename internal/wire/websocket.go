package wire

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/langbridge/internal/logging"
)

const writeTimeout = 10 * time.Second

// WebSocketStream carries one message per websocket text frame.
type WebSocketStream struct {
	ws        *websocket.Conn
	wmu       sync.Mutex
	closeOnce sync.Once
}

// NewWebSocketStream wraps an established websocket connection.
func NewWebSocketStream(ws *websocket.Conn) *WebSocketStream {
	ws.SetReadLimit(DefaultMaxMessageSize)
	return &WebSocketStream{ws: ws}
}

// Dial connects to a websocket endpoint.
func Dial(ctx context.Context, url string) (*WebSocketStream, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewWebSocketStream(ws), nil
}

// Read returns the next message. A normal close from the peer is io.EOF.
func (s *WebSocketStream) Read() ([]byte, error) {
	for {
		msgType, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// Write sends msg as a text frame. gorilla connections allow one writer at
// a time.
func (s *WebSocketStream) Write(msg []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, msg)
}

// Close sends a close frame and closes the connection.
func (s *WebSocketStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.wmu.Lock()
		_ = s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.wmu.Unlock()
		err = s.ws.Close()
	})
	return err
}

// Acceptor upgrades HTTP requests to websocket streams.
type Acceptor struct {
	upgrader websocket.Upgrader
	serve    func(Stream)
	log      *logging.Logger
}

// NewAcceptor returns an http.Handler that upgrades every request and
// hands the stream to serve. Only local origins are accepted.
func NewAcceptor(serve func(Stream), log *logging.Logger) *Acceptor {
	if log == nil {
		log = logging.Null()
	}
	a := &Acceptor{serve: serve, log: log.WithComponent("wire")}
	a.upgrader = websocket.Upgrader{CheckOrigin: a.checkLocalOrigin}
	return a
}

// ServeHTTP implements http.Handler.
func (a *Acceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Error("websocket upgrade failed: %v", err)
		return
	}
	a.log.Info("accepted websocket connection from %s", r.RemoteAddr)
	a.serve(NewWebSocketStream(ws))
}

// checkLocalOrigin accepts requests without an Origin header and those from
// localhost.
func (a *Acceptor) checkLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	origin = strings.ToLower(origin)
	for _, allowed := range []string{
		"http://localhost", "https://localhost",
		"http://127.0.0.1", "https://127.0.0.1",
		"http://[::1]", "https://[::1]",
		"vscode-webview://",
	} {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	a.log.Warn("rejected non-local origin %s", origin)
	return false
}

// IsClosedError reports whether err signals an orderly shutdown of a stream.
func IsClosedError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
