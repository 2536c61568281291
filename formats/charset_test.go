package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCharsetPrefixed(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  string
	}{
		{"ascii", []byte("ASCII\x00\x00\x00Hello"), "Hello"},
		{"ascii drops high bytes", []byte("ASCII\x00\x00\x00caf\xE9"), "caf"},
		{"jis", append([]byte("JIS\x00\x00\x00\x00\x00"), 0x93, 0xFA, 0x96, 0x7B), "日本"},
		{"unicode little endian", []byte("UNICODE\x00H\x00i\x00"), "Hi"},
		{"unicode with BOM", []byte("UNICODE\x00\xFE\xFF\x00H\x00i"), "Hi"},
		{"mixed case unicode", []byte("Unicode\x00H\x00i\x00"), "Hi"},
		{"undefined is utf-8", []byte("\x00\x00\x00\x00\x00\x00\x00\x00héllo"), "héllo"},
		{"invalid utf-8 dropped", []byte("\x00\x00\x00\x00\x00\x00\x00\x00a\xFFb"), "ab"},
		{"prefix only", []byte("ASCII\x00\x00\x00"), ""},
		{"short value", []byte("abc"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCharsetPrefixed(tt.value))
		})
	}
}
