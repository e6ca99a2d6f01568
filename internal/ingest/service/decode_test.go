package service

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
)

func encodeUTF16LE(s string, withBOM bool) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2+2)
	if withBOM {
		out = append(out, 0xFF, 0xFE)
	}
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func encodeUTF16BE(s string, withBOM bool) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2+2)
	if withBOM {
		out = append(out, 0xFE, 0xFF)
	}
	for _, u := range units {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestDecodeDocumentUTF8(t *testing.T) {
	raw := []byte(`{"a":1}`)
	got, err := DecodeDocument(raw)
	assert.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestDecodeDocumentUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...)
	got, err := DecodeDocument(raw)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestDecodeDocumentUTF16LEWithBOM(t *testing.T) {
	got, err := DecodeDocument(encodeUTF16LE(`{"a":1}`, true))
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestDecodeDocumentUTF16LEWithoutBOM(t *testing.T) {
	got, err := DecodeDocument(encodeUTF16LE(`{"name":"value"}`, false))
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"value"}`), got)
}

func TestDecodeDocumentUTF16BEWithBOM(t *testing.T) {
	got, err := DecodeDocument(encodeUTF16BE(`{"a":1}`, true))
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestDecodeDocumentUTF16BEWithoutBOM(t *testing.T) {
	got, err := DecodeDocument(encodeUTF16BE(`{"name":"value"}`, false))
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"value"}`), got)
}
