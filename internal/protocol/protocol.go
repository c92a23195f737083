// Package protocol defines the wire DTOs exchanged with the UI process.
//
// Every value here is plain data with JSON tags. Positions are zero-based
// with UTF-16 character offsets. Optional fields are pointers or use
// omitempty so that "no value" stays distinguishable on the wire.
package protocol

import (
	"net/url"
	"path/filepath"
	"runtime"
)

// DocumentURI represents a URI as used on the wire.
// It is typically a file:// URI.
type DocumentURI string

// Position in a text document expressed as zero-based line and character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range in a text document expressed as start and end positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location represents a location inside a resource.
type Location struct {
	URI   DocumentURI `json:"uri"`
	Range Range       `json:"range"`
}

// LocationLink connects an origin range with a target range.
type LocationLink struct {
	OriginSelectionRange *Range      `json:"originSelectionRange,omitempty"`
	URI                  DocumentURI `json:"uri"`
	Range                Range       `json:"range"`
	TargetSelectionRange *Range      `json:"targetSelectionRange,omitempty"`
}

// TextEdit represents a textual edit applicable to a text document.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"text"`
}

// WorkspaceTextEdit is one edit of a workspace edit.
type WorkspaceTextEdit struct {
	Resource DocumentURI `json:"resource"`
	TextEdit TextEdit    `json:"textEdit"`
}

// WorkspaceEdit represents changes to many resources.
type WorkspaceEdit struct {
	Edits []WorkspaceTextEdit `json:"edits"`
}

// MarkdownString represents human readable markdown.
type MarkdownString struct {
	Value             string `json:"value"`
	IsTrusted         bool   `json:"isTrusted,omitempty"`
	SupportThemeIcons bool   `json:"supportThemeIcons,omitempty"`
}

// Command represents a reference to a command.
type Command struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Tooltip   string `json:"tooltip,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Diagnostic is a problem report.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Message  string `json:"message"`
	Severity int    `json:"severity"`
	Source   string `json:"source,omitempty"`
	Code     string `json:"code,omitempty"`
	Tags     []int  `json:"tags,omitempty"`
}

// ChainedCacheID addresses one item of a cached result batch:
// [sessionId, index].
type ChainedCacheID [2]int

// Session returns the batch id.
func (c ChainedCacheID) Session() int { return c[0] }

// Index returns the item index within the batch.
func (c ChainedCacheID) Index() int { return c[1] }

// DocumentFilter narrows which documents a provider applies to.
type DocumentFilter struct {
	Language string `json:"language,omitempty"`
	Scheme   string `json:"scheme,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

// ExtensionRef identifies the extension behind a provider.
type ExtensionRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// Registration is sent with every $register<Kind>Provider notification.
type Registration struct {
	Handle    int              `json:"handle"`
	Selector  []DocumentFilter `json:"selector"`
	Extension ExtensionRef     `json:"extension"`

	// EventHandle is set when the provider emits change events.
	EventHandle *int `json:"eventHandle,omitempty"`

	DisplayName             string                `json:"displayName,omitempty"`
	TriggerCharacters       []string              `json:"triggerCharacters,omitempty"`
	RetriggerCharacters     []string              `json:"retriggerCharacters,omitempty"`
	SupportsResolve         bool                  `json:"supportsResolve,omitempty"`
	SupportsRanges          bool                  `json:"supportsRanges,omitempty"`
	SupportsEdits           bool                  `json:"supportsEdits,omitempty"`
	Legend                  *SemanticTokensLegend `json:"legend,omitempty"`
	ProvidedCodeActionKinds []string              `json:"providedCodeActionKinds,omitempty"`
	PasteMimeTypes          []string              `json:"pasteMimeTypes,omitempty"`
	DropMimeTypes           []string              `json:"dropMimeTypes,omitempty"`
}

// FilePathToURI converts a file path to a DocumentURI.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(path)

	// On Windows, add extra slash for drive letter
	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}

	u := &url.URL{
		Scheme: "file",
		Path:   path,
	}

	return DocumentURI(u.String())
}

// URIToFilePath converts a DocumentURI to a file path. Non-file URIs are
// returned unchanged.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}

	u, err := url.Parse(string(uri))
	if err != nil {
		return string(uri)
	}

	if u.Scheme != "file" {
		return string(uri)
	}

	path := u.Path

	// On Windows, remove leading slash before drive letter
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path)
}
