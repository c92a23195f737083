// Package semtok implements the semantic tokens delta codec.
//
// Semantic tokens travel as a flat uint32 array (five integers per token).
// After a full result has been sent, later results for the same document can
// be sent as a single edit against the previous array. Diff computes that edit
// from the common prefix and common suffix of the two arrays; Apply replays
// edits on the receiving side.
//
// Encode and Decode convert a result into the binary wire buffer:
//
//	full:  [1, id, len(data), data...]
//	delta: [2, id, len(edits), (start, deleteCount, len(data), data...)...]
//
// All words are big-endian uint32.
package semtok

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind distinguishes full results from delta results.
type Kind uint32

const (
	// KindFull carries the complete token array.
	KindFull Kind = 1
	// KindDelta carries edits against a previously sent array.
	KindDelta Kind = 2
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindDelta:
		return "delta"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Edit replaces DeleteCount integers at Start with Data.
type Edit struct {
	Start       int      `json:"start"`
	DeleteCount int      `json:"deleteCount"`
	Data        []uint32 `json:"data,omitempty"`
}

// Diff computes the edits that turn prev into next.
//
// The result is empty when the arrays are equal and otherwise holds exactly
// one edit covering the range between the common prefix and common suffix.
func Diff(prev, next []uint32) []Edit {
	oldLen := len(prev)
	newLen := len(next)

	prefix := 0
	maxPrefix := min(oldLen, newLen)
	for prefix < maxPrefix && prev[prefix] == next[prefix] {
		prefix++
	}

	if prefix == oldLen && prefix == newLen {
		return []Edit{}
	}

	suffix := 0
	maxSuffix := maxPrefix - prefix
	for suffix < maxSuffix && prev[oldLen-suffix-1] == next[newLen-suffix-1] {
		suffix++
	}

	data := make([]uint32, newLen-suffix-prefix)
	copy(data, next[prefix:newLen-suffix])

	return []Edit{{
		Start:       prefix,
		DeleteCount: oldLen - prefix - suffix,
		Data:        data,
	}}
}

// ErrEditOutOfRange indicates an edit that does not fit the array it is applied to.
var ErrEditOutOfRange = errors.New("semantic tokens edit out of range")

// Apply returns prev with edits applied. Edits are interpreted against the
// original array and must be sorted by Start and non-overlapping.
func Apply(prev []uint32, edits []Edit) ([]uint32, error) {
	out := make([]uint32, 0, len(prev))
	pos := 0
	for _, e := range edits {
		if e.Start < pos || e.DeleteCount < 0 || e.Start+e.DeleteCount > len(prev) {
			return nil, fmt.Errorf("%w: start=%d deleteCount=%d len=%d", ErrEditOutOfRange, e.Start, e.DeleteCount, len(prev))
		}
		out = append(out, prev[pos:e.Start]...)
		out = append(out, e.Data...)
		pos = e.Start + e.DeleteCount
	}
	out = append(out, prev[pos:]...)
	return out, nil
}

// DTO is the decoded form of a semantic tokens wire buffer.
type DTO struct {
	ID     int
	Kind   Kind
	Data   []uint32
	Deltas []Edit
}

// Encode serializes dto into its binary form.
func Encode(dto DTO) []byte {
	words := make([]uint32, 0, encodedLen(dto))
	words = append(words, uint32(dto.Kind), uint32(dto.ID))
	switch dto.Kind {
	case KindFull:
		words = append(words, uint32(len(dto.Data)))
		words = append(words, dto.Data...)
	case KindDelta:
		words = append(words, uint32(len(dto.Deltas)))
		for _, e := range dto.Deltas {
			words = append(words, uint32(e.Start), uint32(e.DeleteCount), uint32(len(e.Data)))
			words = append(words, e.Data...)
		}
	}

	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

func encodedLen(dto DTO) int {
	n := 3
	if dto.Kind == KindFull {
		return n + len(dto.Data)
	}
	for _, e := range dto.Deltas {
		n += 3 + len(e.Data)
	}
	return n
}

// ErrMalformed indicates a buffer that is not a valid encoding.
var ErrMalformed = errors.New("malformed semantic tokens buffer")

// Decode parses a buffer produced by Encode.
func Decode(buf []byte) (DTO, error) {
	if len(buf)%4 != 0 {
		return DTO{}, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformed, len(buf))
	}
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(buf[4*i:])
	}
	if len(words) < 3 {
		return DTO{}, fmt.Errorf("%w: short header", ErrMalformed)
	}

	dto := DTO{Kind: Kind(words[0]), ID: int(words[1])}
	count := int(words[2])
	rest := words[3:]

	switch dto.Kind {
	case KindFull:
		if len(rest) != count {
			return DTO{}, fmt.Errorf("%w: expected %d words, got %d", ErrMalformed, count, len(rest))
		}
		dto.Data = append([]uint32(nil), rest...)
	case KindDelta:
		dto.Deltas = make([]Edit, 0, count)
		for i := 0; i < count; i++ {
			if len(rest) < 3 {
				return DTO{}, fmt.Errorf("%w: truncated edit %d", ErrMalformed, i)
			}
			e := Edit{Start: int(rest[0]), DeleteCount: int(rest[1])}
			n := int(rest[2])
			rest = rest[3:]
			if len(rest) < n {
				return DTO{}, fmt.Errorf("%w: truncated edit data %d", ErrMalformed, i)
			}
			if n > 0 {
				e.Data = append([]uint32(nil), rest[:n]...)
			}
			rest = rest[n:]
			dto.Deltas = append(dto.Deltas, e)
		}
		if len(rest) != 0 {
			return DTO{}, fmt.Errorf("%w: %d trailing words", ErrMalformed, len(rest))
		}
	default:
		return DTO{}, fmt.Errorf("%w: unknown kind %d", ErrMalformed, words[0])
	}

	return dto, nil
}
