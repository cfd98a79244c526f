package diffstat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{"empty", nil, false},
		{"plain text", []byte("hello\nworld\n"), false},
		{"nul at start", []byte{0, 'a', 'b'}, true},
		{"nul inside window", append(bytes.Repeat([]byte("a"), BinarySniffLen-1), 0), true},
		{"nul past window", append(bytes.Repeat([]byte("a"), BinarySniffLen), 0), false},
		{"invalid utf8 without nul", []byte{0xff, 0xfe, 'x'}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBinary(tt.data))
		})
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected uint32
	}{
		{"empty", "", 0},
		{"single unterminated", "one", 1},
		{"single terminated", "one\n", 1},
		{"final partial segment", "one\ntwo", 2},
		{"blank lines count", "one\n\nthree\n", 3},
		{"crlf endings", "one\r\ntwo\r\n", 2},
		{"lone newline", "\n", 1},
		{"invalid utf8", "\xff\xfe\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountLines([]byte(tt.data)))
		})
	}
}

func TestSplitLinesStripsCarriageReturn(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines([]byte("a\r\nb\n\r\n")))
	assert.Nil(t, SplitLines([]byte("ok\n\xc3\x28")))
}
