// Package wire is the JSON-RPC 2.0 connection between langbridge and the UI
// process.
//
// A Stream moves whole messages. HeaderStream frames them with
// Content-Length headers over a byte stream such as stdio; WebSocketStream
// sends one message per websocket frame. Conn runs the protocol on top of
// a Stream: it dispatches incoming requests and notifications to handlers,
// each on its own goroutine, and lets the local side call and notify the
// remote side.
//
// Every incoming request gets a context that is cancelled when the peer
// sends $cancelRequest for its id or when the connection closes.
package wire
