// Package hostrpc connects the language feature bridge to a wire
// connection.
//
// Server binds every incoming method ($provideHover, $releaseCodeLenses,
// $acceptDocumentChanged, $executeCommand, ...) to the bridge, the document
// store or the command registry. MainThread is the outgoing half: it turns
// bridge registrations and change events into $register<Kind>Provider,
// $unregister and $emit<Kind>Event notifications.
//
// Parameters are JSON objects with named members. Semantic token buffers
// are byte slices and travel base64 encoded.
package hostrpc
