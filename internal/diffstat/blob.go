package diffstat

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// BinarySniffLen is how many leading bytes are scanned for a NUL.
const BinarySniffLen = 8192

// IsBinary reports whether the first BinarySniffLen bytes contain a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) > BinarySniffLen {
		data = data[:BinarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// CountLines returns the number of lines in UTF-8 text, or 0 for anything else.
func CountLines(data []byte) uint32 {
	return uint32(len(SplitLines(data)))
}

// SplitLines splits UTF-8 text into lines. "\n" and "\r\n" both terminate a line,
// and a trailing terminator does not start an extra empty line.
// Invalid UTF-8 yields no lines.
func SplitLines(data []byte) []string {
	if len(data) == 0 || !utf8.Valid(data) {
		return nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
