// Package bridge connects extension-supplied language providers to the UI
// process.
//
// Extensions register providers through LanguageFeatures. Each registration
// gets an integer handle and an adapter that translates between wire DTOs
// (package protocol) and the provider's native API (package extapi). Wire
// calls address providers by handle:
//
//	lf := bridge.New(bridge.Dependencies{
//	    Remote:    proxy,
//	    Documents: docs,
//	    Commands:  cmds,
//	})
//	reg := lf.RegisterHoverProvider(ext, selector, provider)
//	defer reg.Dispose()
//
//	hover, err := lf.ProvideHover(ctx, handle, uri, pos, nil)
//
// # Dispatch
//
// Every Provide, Resolve and Release call goes through one dispatch path. An
// unknown handle, or a handle registered for a different feature, yields the
// feature's fallback value without an error, since handles may be torn down
// while requests are in flight. Provider failures and panics are logged,
// reported to telemetry against the owning extension and replaced by the
// fallback. Usage errors (a request referencing an id the bridge never handed
// out) are returned to the caller. When the request context is cancelled the
// call returns ErrCancelled right away while the provider keeps running in
// the background.
//
// # Result lifetimes
//
// Resolvable features store the native results of each Provide call in a
// Cache under a fresh id. The remote side resolves individual items with a
// (cacheId, index) pair and must release the batch when done with it.
// Disposing a registration drops every cached batch of its adapter.
//
// Semantic tokens are sent as a full buffer or as an edit against the
// previous buffer of the same adapter. The adapter keeps the previous full
// buffer, never the delta, so the next diff always has complete data.
package bridge
