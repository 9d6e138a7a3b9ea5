package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestDetectAndDecode(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Bill ID,Amount\n1,500\n"))
	require.NoError(t, err)
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Bill ID\n"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		want     string
		encoding string
	}{
		{name: "empty", input: nil, want: "", encoding: "utf-8"},
		{name: "plain utf-8", input: []byte("Agent\nJosé\n"), want: "Agent\nJosé\n", encoding: "utf-8"},
		{name: "utf-8 bom stripped", input: append([]byte{0xEF, 0xBB, 0xBF}, "Date\n"...), want: "Date\n", encoding: "utf-8-bom"},
		{name: "utf-16le", input: utf16le, want: "Bill ID,Amount\n1,500\n", encoding: "utf-16le"},
		{name: "utf-16be", input: utf16be, want: "Bill ID\n", encoding: "utf-16be"},
		{name: "windows-1252 fallback", input: []byte("Agent\nJos\xe9\n"), want: "Agent\nJosé\n", encoding: "windows-1252"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DetectAndDecode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.encoding, enc)
		})
	}
}
