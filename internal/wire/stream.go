package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Stream reads and writes whole messages.
type Stream interface {
	// Read blocks until a message arrives. It returns io.EOF when the peer
	// hangs up.
	Read() ([]byte, error)
	Write(msg []byte) error
	Close() error
}

// DefaultMaxMessageSize bounds a single incoming message.
const DefaultMaxMessageSize = 64 << 20

// HeaderStream frames messages with Content-Length headers.
type HeaderStream struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
	limit  int

	wmu sync.Mutex
}

// NewHeaderStream creates a stream over r and w. c may be nil.
func NewHeaderStream(r io.Reader, w io.Writer, c io.Closer) *HeaderStream {
	return &HeaderStream{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
		closer: c,
		limit:  DefaultMaxMessageSize,
	}
}

// Read reads a single framed message.
func (s *HeaderStream) Read() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && contentLength < 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Content-Type and other headers are ignored.
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length %q: %w", value, err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, ErrMissingContentLength
	}
	if contentLength > s.limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, contentLength)
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Write writes msg with its header.
func (s *HeaderStream) Write(msg []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(msg))

	s.wmu.Lock()
	defer s.wmu.Unlock()

	if _, err := io.WriteString(s.writer, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := s.writer.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Close closes the underlying closer, if any.
func (s *HeaderStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
