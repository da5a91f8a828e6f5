package utils

import "unicode/utf8"

// SniffLength defines the maximum number of bytes read when detecting binary content.
const SniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}

// IsBinaryPrefix behaves like IsBinary for a slice that may have been cut in the
// middle of a multi-byte rune. The incomplete trailing rune is ignored.
func IsBinaryPrefix(data []byte) bool {
	return IsBinary(trimPartialRune(data))
}

func trimPartialRune(data []byte) []byte {
	for offset := 1; offset < utf8.UTFMax && offset <= len(data); offset++ {
		start := len(data) - offset
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return data
		}
		return data[:start]
	}
	return data
}

// SniffPrefix returns the leading window of data inspected by binary detection.
func SniffPrefix(data []byte) []byte {
	if len(data) > SniffLength {
		return data[:SniffLength]
	}
	return data
}
