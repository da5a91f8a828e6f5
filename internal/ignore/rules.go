// Package ignore evaluates gitignore-style exclusion rules against paths relative
// to the processing root.
package ignore

import (
	"strings"

	"github.com/temirov/ctxpack/internal/types"
)

const (
	commentPrefix       = "#"
	negationPrefix      = "!"
	anchorPrefix        = "/"
	directorySuffix     = "/"
	escapeCharacter     = '\\'
	escapedCommentStart = `\#`
	escapedNegation     = `\!`
)

var defaultDirectoryNames = []string{
	"node_modules",
	".git",
	".svelte-kit",
	"__pycache__",
	"build",
}

var defaultFileNames = []string{
	".DS_Store",
	".env",
	"package-lock.json",
	"package.json",
	"yarn.lock",
}

// binaryExtensions lists extensions that never carry readable text.
var binaryExtensions = []string{
	"png", "jpg", "jpeg", "gif", "ico", "webp", "bmp", "tiff", "avif",
	"woff", "woff2", "ttf", "eot", "otf",
	"zip", "tar", "gz", "tgz", "bz2", "xz", "7z", "rar",
	"exe", "dll", "so", "dylib", "bin", "o", "a", "class", "jar", "wasm", "pyc",
	"pdf", "mp3", "mp4", "wav", "ogg", "mov", "avi", "webm",
}

// DefaultRules returns the built-in exclusion rules. Each call returns a fresh
// slice so callers may extend it without affecting other runs.
func DefaultRules() []types.ExclusionRule {
	rules := make([]types.ExclusionRule, 0, len(defaultDirectoryNames)+len(defaultFileNames)+len(binaryExtensions))
	for _, directoryName := range defaultDirectoryNames {
		rules = append(rules, types.ExclusionRule{
			Pattern:         directoryName,
			IsDirectoryOnly: true,
			Origin:          types.RuleOriginDefault,
		})
	}
	for _, fileName := range defaultFileNames {
		rules = append(rules, types.ExclusionRule{
			Pattern: fileName,
			Origin:  types.RuleOriginDefault,
		})
	}
	for _, extension := range binaryExtensions {
		rules = append(rules, types.ExclusionRule{
			Pattern: "*." + extension,
			Origin:  types.RuleOriginDefault,
		})
	}
	return rules
}

// ParseLines converts ignore-file lines into rules. Blank lines and comments are
// skipped.
func ParseLines(lines []string, origin types.RuleOrigin, baseDirectory string) []types.ExclusionRule {
	rules := make([]types.ExclusionRule, 0, len(lines))
	for _, line := range lines {
		rule, ok := ParseLine(line, origin, baseDirectory)
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// ParseLine converts a single gitignore line into a rule. The returned Pattern
// starts with "/" when the rule is anchored to its base directory.
func ParseLine(line string, origin types.RuleOrigin, baseDirectory string) (types.ExclusionRule, bool) {
	body := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(body) == "" || strings.HasPrefix(body, commentPrefix) {
		return types.ExclusionRule{}, false
	}
	body = trimTrailingSpaces(body)

	rule := types.ExclusionRule{Origin: origin, BaseDirectory: baseDirectory}
	switch {
	case strings.HasPrefix(body, escapedCommentStart), strings.HasPrefix(body, escapedNegation):
		body = body[1:]
	case strings.HasPrefix(body, negationPrefix):
		rule.IsNegation = true
		body = body[len(negationPrefix):]
	}

	if strings.HasSuffix(body, directorySuffix) && !strings.HasSuffix(body, `\/`) {
		rule.IsDirectoryOnly = true
		body = strings.TrimRight(body, directorySuffix)
	}
	if body == "" {
		return types.ExclusionRule{}, false
	}

	if !strings.HasPrefix(body, anchorPrefix) && strings.Contains(body, anchorPrefix) {
		body = anchorPrefix + body
	}
	rule.Pattern = body
	return rule, true
}

// trimTrailingSpaces drops trailing spaces unless they are escaped with a backslash.
func trimTrailingSpaces(value string) string {
	end := len(value)
	for end > 0 && (value[end-1] == ' ' || value[end-1] == '\t') {
		if end >= 2 && value[end-2] == escapeCharacter {
			break
		}
		end--
	}
	return value[:end]
}

// isAnchored reports whether the rule only matches relative to its base directory.
func isAnchored(rule types.ExclusionRule) bool {
	return strings.HasPrefix(rule.Pattern, anchorPrefix)
}
