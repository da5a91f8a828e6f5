package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ReadFile returns the raw lines of an ignore file. A missing file yields no
// lines and no error.
//
// #nosec G304
func ReadFile(ignoreFilePath string) ([]string, error) {
	fileHandle, openError := os.Open(ignoreFilePath)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", ignoreFilePath, openError)
	}
	defer fileHandle.Close()

	var lines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read %s: %w", ignoreFilePath, scanError)
	}
	return lines, nil
}
