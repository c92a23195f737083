// Package telemetry reports provider failures.
//
// Honeycomb sends one event per failure through libhoney. Log counts
// failures per extension and writes them to a logger, which is the default
// when no Honeycomb key is configured. Multi fans out to several reporters.
package telemetry
