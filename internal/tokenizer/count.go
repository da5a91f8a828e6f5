package tokenizer

import (
	"errors"
	"fmt"
)

// Count estimates the tokens of an included file's content. An empty content
// counts as zero tokens without consulting the counter.
func Count(counter Counter, relativePath string, content string) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	if content == "" {
		return 0, nil
	}
	tokens, err := counter.CountString(content)
	if err != nil {
		return 0, fmt.Errorf("count tokens for %s: %w", relativePath, err)
	}
	return tokens, nil
}
