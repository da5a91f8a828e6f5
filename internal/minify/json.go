package minify

import (
	"bytes"
	"encoding/json"
)

// minifyJSON removes insignificant whitespace while keeping key order and number
// spelling exactly as written.
func minifyJSON(content string) (string, error) {
	var buffer bytes.Buffer
	if compactError := json.Compact(&buffer, []byte(content)); compactError != nil {
		return "", compactError
	}
	return buffer.String(), nil
}
