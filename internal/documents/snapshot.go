package documents

import (
	"regexp"
	"strings"

	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/extapi"
	"github.com/dshills/langbridge/internal/protocol"
)

// DefaultWordPattern matches numbers and runs of characters that are neither
// separators nor whitespace.
var DefaultWordPattern = regexp.MustCompile("(-?\\d*\\.\\d\\w*)|([^`~!@#$%^&*()\\-=+\\[{\\]}\\\\|;:'\",.<>/?\\s]+)")

// Snapshot is one immutable version of a document. It implements
// extapi.Document.
type Snapshot struct {
	uri        extapi.URI
	languageID string
	version    int
	text       string
	lines      []lineInfo
}

// NewSnapshot creates a snapshot of text.
func NewSnapshot(uri protocol.DocumentURI, languageID string, version int, text string) *Snapshot {
	return &Snapshot{
		uri:        extapi.URI(uri),
		languageID: languageID,
		version:    version,
		text:       text,
		lines:      indexLines(text),
	}
}

// URI returns the document URI.
func (s *Snapshot) URI() extapi.URI { return s.uri }

// LanguageID returns the language of the document.
func (s *Snapshot) LanguageID() string { return s.languageID }

// Version returns the version the UI assigned to this text.
func (s *Snapshot) Version() int { return s.version }

// LineCount returns the number of lines. An empty document has one line.
func (s *Snapshot) LineCount() int { return len(s.lines) }

// Text returns the full text.
func (s *Snapshot) Text() string { return s.text }

// LineAt returns a line without its line break.
func (s *Snapshot) LineAt(line int) string {
	if line < 0 || line >= len(s.lines) {
		return ""
	}
	l := s.lines[line]
	return s.text[l.byteOffset : l.byteOffset+l.byteLen]
}

// OffsetAt returns the byte offset of pos after clamping it to the document.
func (s *Snapshot) OffsetAt(pos extapi.Position) int {
	pos = s.ValidatePosition(pos)
	l := s.lines[pos.Line]
	return l.byteOffset + utf16ToByte(s.LineAt(pos.Line), pos.Character)
}

// PositionAt returns the position of a byte offset.
func (s *Snapshot) PositionAt(offset int) extapi.Position {
	if offset <= 0 {
		return extapi.NewPosition(0, 0)
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	line := len(s.lines) - 1
	for i, l := range s.lines {
		if offset <= l.byteOffset+l.byteLen {
			line = i
			break
		}
		if i+1 < len(s.lines) && offset < s.lines[i+1].byteOffset {
			// Inside a line break.
			line = i
			offset = l.byteOffset + l.byteLen
			break
		}
	}
	l := s.lines[line]
	return extapi.NewPosition(line, byteToUTF16(s.LineAt(line), offset-l.byteOffset))
}

// GetText returns the text covered by rng.
func (s *Snapshot) GetText(rng extapi.Range) string {
	rng = s.ValidateRange(rng)
	return s.text[s.OffsetAt(rng.Start):s.OffsetAt(rng.End)]
}

// ValidatePosition clamps pos to an existing line and character.
func (s *Snapshot) ValidatePosition(pos extapi.Position) extapi.Position {
	if pos.Line < 0 {
		return extapi.NewPosition(0, 0)
	}
	if pos.Line >= len(s.lines) {
		last := len(s.lines) - 1
		return extapi.NewPosition(last, utf16Len(s.LineAt(last)))
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	if n := utf16Len(s.LineAt(pos.Line)); pos.Character > n {
		pos.Character = n
	}
	return pos
}

// ValidateRange clamps both ends of rng and orders them.
func (s *Snapshot) ValidateRange(rng extapi.Range) extapi.Range {
	return extapi.RangeFrom(s.ValidatePosition(rng.Start), s.ValidatePosition(rng.End))
}

// WordRangeAtPosition returns the range of the pattern match touching pos.
// A nil pattern uses DefaultWordPattern. Empty matches never count.
func (s *Snapshot) WordRangeAtPosition(pos extapi.Position, pattern *regexp.Regexp) (extapi.Range, bool) {
	if pattern == nil {
		pattern = DefaultWordPattern
	}
	pos = s.ValidatePosition(pos)
	line := s.LineAt(pos.Line)
	off := utf16ToByte(line, pos.Character)

	for _, m := range pattern.FindAllStringIndex(line, -1) {
		if m[0] == m[1] || m[0] > off {
			continue
		}
		if off <= m[1] {
			return extapi.NewRange(pos.Line, byteToUTF16(line, m[0]), pos.Line, byteToUTF16(line, m[1])), true
		}
	}
	return extapi.Range{}, false
}

// apply returns a new snapshot with change applied.
func (s *Snapshot) apply(version int, changes []protocol.ContentChange) *Snapshot {
	text := s.text
	cur := s
	for _, c := range changes {
		if c.Range == nil {
			text = c.Text
		} else {
			rng := cur.ValidateRange(convert.ToRange(*c.Range))
			var b strings.Builder
			start, end := cur.OffsetAt(rng.Start), cur.OffsetAt(rng.End)
			b.Grow(len(text) - (end - start) + len(c.Text))
			b.WriteString(text[:start])
			b.WriteString(c.Text)
			b.WriteString(text[end:])
			text = b.String()
		}
		cur = &Snapshot{uri: s.uri, languageID: s.languageID, version: version, text: text, lines: indexLines(text)}
	}
	if cur == s {
		return &Snapshot{uri: s.uri, languageID: s.languageID, version: version, text: s.text, lines: s.lines}
	}
	return cur
}
