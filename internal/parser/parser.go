package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/encoding/unicode"
)

// Byte order marks recognized by DecodeText.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Parse turns KEY=VALUE text into a key-value map.
//
// Parse never fails on malformed input. If the document as a whole doesn't
// parse, it falls back to line-by-line parsing, skipping lines it cannot
// understand and returning one warning per skipped line. Multi-line quoted
// values are only supported on the whole-document path.
func Parse(src string) (map[string]string, []string) {
	values, err := godotenv.Unmarshal(src)
	if err == nil {
		return values, nil
	}

	values = make(map[string]string)
	var warnings []string

	for i, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		parsed, err := godotenv.Unmarshal(trimmed)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping malformed line %d: %s", i+1, trimmed))
			continue
		}
		for k, v := range parsed {
			values[k] = v
		}
	}

	return values, warnings
}

// DecodeText converts file content to UTF-8 based on its byte order mark.
//
// UTF-16 content (with or without a BOM) is transcoded; a UTF-8 BOM is
// stripped. Content without a recognizable mark passes through unchanged.
func DecodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian)
	case looksLikeUTF16LE(data):
		return decodeUTF16(data, unicode.LittleEndian)
	default:
		return string(data), nil
	}
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	decoded, err := decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 content: %w", err)
	}
	return string(decoded), nil
}

// looksLikeUTF16LE detects BOM-less UTF-16LE, which Windows tools emit for
// redirected output. ASCII-range UTF-16LE has a NUL in every second byte.
func looksLikeUTF16LE(data []byte) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	nuls := 0
	for i := 1; i < len(data); i += 2 {
		if data[i] == 0x00 {
			nuls++
		}
	}
	return nuls*2 >= len(data)/2
}
