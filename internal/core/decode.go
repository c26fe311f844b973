package core

// decode.go turns raw upload bytes into clean text before parsing.
//
// Exports from the systems this service reconciles arrive as UTF-8 (often
// with a Windows BOM) or as Windows-1251. The decoder:
//
//   - strips a UTF-8 BOM (0xEF 0xBB 0xBF)
//   - keeps valid UTF-8 as is
//   - decodes anything else as Windows-1251

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffLen is how many leading bytes are inspected for a binary signature.
const sniffLen = 512

// decodeText converts data to a UTF-8 string.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), data)
	if err != nil {
		// Windows-1251 maps every byte, so this is unreachable in practice;
		// fall back to replacing invalid sequences.
		return strings.ToValidUTF8(string(data), "?")
	}
	return string(decoded)
}

// looksBinary reports whether the leading bytes contain a NUL, which no
// text export carries.
func looksBinary(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// normalizeValue cleans a single cell or line: BOM, surrounding whitespace
// and surrounding quotes are removed. Placeholder spellings of "missing"
// become the empty string.
func normalizeValue(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "nan", "none":
		return ""
	}
	return s
}

// normalizeHeader folds a column name for matching: trimmed, lower-cased,
// internal whitespace collapsed to single spaces.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
