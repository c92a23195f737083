// Package documents keeps the text of documents opened in the UI process.
//
// The UI sends full contents on open and incremental changes afterwards.
// Each change produces a new immutable Snapshot, so providers that hold on
// to a document keep seeing the version they were called with. Positions
// use UTF-16 code units for the character offset.
package documents
