// Package diagnostics keeps the diagnostics published by extensions.
//
// Each extension owns its own set of diagnostics per document. Readers see
// the union of all owners, sorted by position, which is what the code
// action adapter hands to providers as context. Changes are announced
// through an optional, optionally debounced, change handler.
package diagnostics
