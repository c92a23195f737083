package documents

// lineInfo locates a line inside the snapshot text. byteLen excludes the
// line break.
type lineInfo struct {
	byteOffset int
	byteLen    int
}

// indexLines splits text on '\n'. A trailing '\r' is treated as part of the
// line break.
func indexLines(text string) []lineInfo {
	var lines []lineInfo
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		end := i
		if end > start && text[end-1] == '\r' {
			end--
		}
		lines = append(lines, lineInfo{byteOffset: start, byteLen: end - start})
		start = i + 1
	}
	return append(lines, lineInfo{byteOffset: start, byteLen: len(text) - start})
}

// --- UTF-16 conversion helpers ---

// utf16Len returns the length in UTF-16 code units.
func utf16Len(s string) int {
	count := 0
	for _, r := range s {
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// byteToUTF16 converts a byte offset within s to a UTF-16 offset.
func byteToUTF16(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(s) {
		return utf16Len(s)
	}
	off := 0
	for i, r := range s {
		if i >= byteOff {
			break
		}
		if r >= 0x10000 {
			off += 2
		} else {
			off++
		}
	}
	return off
}

// utf16ToByte converts a UTF-16 offset within s to a byte offset. Offsets
// inside a surrogate pair round up to the next rune.
func utf16ToByte(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}
	count := 0
	for i, r := range s {
		if count >= utf16Off {
			return i
		}
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return len(s)
}
