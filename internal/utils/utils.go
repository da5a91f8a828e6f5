// Package utils contains general helper functions used across ctxpack.
package utils

import (
	"path/filepath"
	"strings"
)

// Ignore file constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// JoinRelativePath appends name to a slash-separated relative directory.
// An empty directory denotes the root.
func JoinRelativePath(directory string, name string) string {
	if directory == "" {
		return name
	}
	return directory + pathSegmentSeparator + name
}

// NormalizeRelativePath converts a relative path to forward-slash form without
// leading "./" or trailing separators. The root itself normalizes to "".
func NormalizeRelativePath(relativePath string) string {
	normalized := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	normalized = filepath.ToSlash(filepath.Clean(filepath.FromSlash(normalized)))
	if normalized == "." {
		return ""
	}
	return strings.TrimPrefix(normalized, "./")
}

// ParentDirectories lists every proper ancestor of a slash-separated relative
// path, outermost first. "a/b/c" yields "a" and "a/b".
func ParentDirectories(relativePath string) []string {
	segments := strings.Split(relativePath, pathSegmentSeparator)
	if len(segments) < 2 {
		return nil
	}
	parents := make([]string, 0, len(segments)-1)
	for segmentIndex := 1; segmentIndex < len(segments); segmentIndex++ {
		parents = append(parents, strings.Join(segments[:segmentIndex], pathSegmentSeparator))
	}
	return parents
}
