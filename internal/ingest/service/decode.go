package service

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeDocument normalizes a raw export document to UTF-8. Exports arrive as
// UTF-8 or UTF-16 text, with or without a byte-order mark; BOM-less UTF-16 is
// detected by the NUL-byte pattern of ASCII-heavy JSON.
func DecodeDocument(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return raw[3:], nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeUTF16(raw, unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeUTF16(raw, unicode.BigEndian, unicode.ExpectBOM)
	}

	if endian, ok := sniffUTF16(raw); ok {
		return decodeUTF16(raw, endian, unicode.IgnoreBOM)
	}
	return raw, nil
}

func decodeUTF16(raw []byte, endian unicode.Endianness, bom unicode.BOMPolicy) ([]byte, error) {
	decoder := unicode.UTF16(endian, bom).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sniffUTF16 inspects the first bytes for the alternating-NUL pattern of
// UTF-16 encoded ASCII.
func sniffUTF16(raw []byte) (unicode.Endianness, bool) {
	if len(raw) < 4 {
		return unicode.LittleEndian, false
	}
	limit := len(raw)
	if limit > 64 {
		limit = 64
	}
	evenNul, oddNul := 0, 0
	for i := 0; i < limit; i++ {
		if raw[i] != 0 {
			continue
		}
		if i%2 == 0 {
			evenNul++
		} else {
			oddNul++
		}
	}
	pairs := limit / 2
	switch {
	case oddNul > pairs/2 && evenNul == 0:
		return unicode.LittleEndian, true
	case evenNul > pairs/2 && oddNul == 0:
		return unicode.BigEndian, true
	}
	return unicode.LittleEndian, false
}
