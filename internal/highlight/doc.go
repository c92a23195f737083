// Package highlight is the built-in semantic tokens provider. It lexes
// documents with chroma and maps token categories onto a fixed legend, so
// languages without an extension still get coloring beyond the UI's own
// grammar.
package highlight
