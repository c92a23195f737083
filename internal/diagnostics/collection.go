package diagnostics

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/langbridge/internal/extapi"
)

// DefaultMaxPerFile caps the diagnostics one owner may publish for a document.
const DefaultMaxPerFile = 1000

// ChangeHandler receives the merged diagnostics of uri after a change.
type ChangeHandler func(uri extapi.URI, diags []extapi.Diagnostic)

// Collection stores diagnostics per owner and document.
type Collection struct {
	mu sync.RWMutex

	// owner -> uri -> diagnostics
	owners map[string]map[extapi.URI][]extapi.Diagnostic

	minSeverity   extapi.DiagnosticSeverity
	maxPerFile    int
	debounceDelay time.Duration
	onChange      ChangeHandler

	pendingNotify     map[extapi.URI]*time.Timer
	notifyVersions    map[extapi.URI]int64
	nextNotifyVersion int64
}

// Option configures a Collection.
type Option func(*Collection)

// WithMinSeverity drops diagnostics less severe than severity.
func WithMinSeverity(severity extapi.DiagnosticSeverity) Option {
	return func(c *Collection) {
		c.minSeverity = severity
	}
}

// WithMaxPerFile limits the diagnostics one owner keeps for a document.
func WithMaxPerFile(max int) Option {
	return func(c *Collection) {
		c.maxPerFile = max
	}
}

// WithDebounce delays change notifications. Zero notifies synchronously.
func WithDebounce(d time.Duration) Option {
	return func(c *Collection) {
		c.debounceDelay = d
	}
}

// WithChangeHandler sets the change callback.
func WithChangeHandler(handler ChangeHandler) Option {
	return func(c *Collection) {
		c.onChange = handler
	}
}

// New creates an empty collection.
func New(opts ...Option) *Collection {
	c := &Collection{
		owners:         make(map[string]map[extapi.URI][]extapi.Diagnostic),
		minSeverity:    extapi.SeverityHint,
		maxPerFile:     DefaultMaxPerFile,
		pendingNotify:  make(map[extapi.URI]*time.Timer),
		notifyVersions: make(map[extapi.URI]int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set replaces the diagnostics owner published for uri. An empty list
// removes them.
func (c *Collection) Set(owner string, uri extapi.URI, diags []extapi.Diagnostic) {
	filtered := c.filter(diags)

	c.mu.Lock()
	files := c.owners[owner]
	if len(filtered) == 0 {
		if files != nil {
			delete(files, uri)
			if len(files) == 0 {
				delete(c.owners, owner)
			}
		}
	} else {
		if files == nil {
			files = make(map[extapi.URI][]extapi.Diagnostic)
			c.owners[owner] = files
		}
		files[uri] = filtered
	}
	c.scheduleLocked(uri)
}

// Delete removes the diagnostics owner published for uri.
func (c *Collection) Delete(owner string, uri extapi.URI) {
	c.Set(owner, uri, nil)
}

// Clear removes everything owner published.
func (c *Collection) Clear(owner string) {
	c.mu.Lock()
	files := c.owners[owner]
	delete(c.owners, owner)
	uris := make([]extapi.URI, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	c.mu.Unlock()

	for _, uri := range uris {
		c.mu.Lock()
		c.scheduleLocked(uri)
	}
}

// scheduleLocked queues a change notification for uri and releases c.mu.
func (c *Collection) scheduleLocked(uri extapi.URI) {
	if c.onChange == nil {
		c.mu.Unlock()
		return
	}

	c.nextNotifyVersion++
	version := c.nextNotifyVersion
	c.notifyVersions[uri] = version

	if timer, ok := c.pendingNotify[uri]; ok {
		timer.Stop()
		delete(c.pendingNotify, uri)
	}

	if c.debounceDelay <= 0 {
		merged := c.mergedLocked(uri)
		handler := c.onChange
		c.mu.Unlock()
		handler(uri, merged)
		return
	}

	c.pendingNotify[uri] = time.AfterFunc(c.debounceDelay, func() {
		c.mu.Lock()
		if c.notifyVersions[uri] != version {
			// Superseded by a newer change.
			c.mu.Unlock()
			return
		}
		delete(c.pendingNotify, uri)
		merged := c.mergedLocked(uri)
		handler := c.onChange
		c.mu.Unlock()

		if handler != nil {
			handler(uri, merged)
		}
	})
	c.mu.Unlock()
}

func (c *Collection) filter(diags []extapi.Diagnostic) []extapi.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	var filtered []extapi.Diagnostic
	for _, d := range diags {
		if d.Severity > c.minSeverity {
			continue
		}
		filtered = append(filtered, d)
	}
	sortByPosition(filtered)
	if c.maxPerFile > 0 && len(filtered) > c.maxPerFile {
		filtered = filtered[:c.maxPerFile]
	}
	return filtered
}

// Diagnostics returns the diagnostics of uri from every owner, sorted by
// position.
func (c *Collection) Diagnostics(uri extapi.URI) []extapi.Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mergedLocked(uri)
}

func (c *Collection) mergedLocked(uri extapi.URI) []extapi.Diagnostic {
	var merged []extapi.Diagnostic
	for _, files := range c.owners {
		merged = append(merged, files[uri]...)
	}
	sortByPosition(merged)
	return merged
}

// DiagnosticsAt returns the diagnostics of uri whose range contains pos.
func (c *Collection) DiagnosticsAt(uri extapi.URI, pos extapi.Position) []extapi.Diagnostic {
	var result []extapi.Diagnostic
	for _, d := range c.Diagnostics(uri) {
		if d.Range.Contains(pos) {
			result = append(result, d)
		}
	}
	return result
}

// URIs returns the documents that have diagnostics.
func (c *Collection) URIs() []extapi.URI {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[extapi.URI]bool)
	var uris []extapi.URI
	for _, files := range c.owners {
		for uri := range files {
			if !seen[uri] {
				seen[uri] = true
				uris = append(uris, uri)
			}
		}
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris
}

// Summary counts diagnostics by severity.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Summary returns counts over every document.
func (c *Collection) Summary() Summary {
	uris := c.URIs()
	s := Summary{Files: len(uris)}
	for _, uri := range uris {
		for _, d := range c.Diagnostics(uri) {
			switch d.Severity {
			case extapi.SeverityError:
				s.Errors++
			case extapi.SeverityWarning:
				s.Warnings++
			case extapi.SeverityInformation:
				s.Infos++
			default:
				s.Hints++
			}
		}
	}
	return s
}

// Close stops pending notifications.
func (c *Collection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, timer := range c.pendingNotify {
		timer.Stop()
	}
	c.pendingNotify = make(map[extapi.URI]*time.Timer)
}

func sortByPosition(diags []extapi.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if c := diags[i].Range.Start.Compare(diags[j].Range.Start); c != 0 {
			return c < 0
		}
		return diags[i].Severity < diags[j].Severity
	})
}
