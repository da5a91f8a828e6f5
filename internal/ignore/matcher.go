package ignore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const (
	globSeparator      = '/'
	globMetaCharacters = `*?[\`
	doubleStarSegment  = "**"
)

var errUnterminatedClass = errors.New("unterminated character class")

// matcher decides whether a candidate path matches a single compiled pattern.
type matcher interface {
	Match(candidate string) bool
}

type literalMatcher struct {
	value string
}

func (literal literalMatcher) Match(candidate string) bool {
	return candidate == literal.value
}

// globSegment is one slash-separated piece of a pattern. A "**" segment spans
// any number of path segments and carries no glob.
type globSegment struct {
	anyDirectories bool
	pattern        glob.Glob
}

// globMatcher matches a candidate segment by segment.
type globMatcher struct {
	segments []globSegment
}

func (compiled globMatcher) Match(candidate string) bool {
	return matchSegments(compiled.segments, strings.Split(candidate, string(globSeparator)))
}

// matchSegments walks pattern and path segments together. A "**" matches zero
// or more directories, except in last position where it needs at least one
// path segment so "logs/**" matches the contents of logs but not logs itself.
func matchSegments(segments []globSegment, parts []string) bool {
	if len(segments) == 0 {
		return len(parts) == 0
	}
	head := segments[0]
	if !head.anyDirectories {
		return len(parts) > 0 && head.pattern.Match(parts[0]) && matchSegments(segments[1:], parts[1:])
	}
	minimumSpan := 0
	if len(segments) == 1 {
		minimumSpan = 1
	}
	for span := minimumSpan; span <= len(parts); span++ {
		if matchSegments(segments[1:], parts[span:]) {
			return true
		}
	}
	return false
}

// compileMatcher builds a matcher for a pattern body without anchor or directory markers.
func compileMatcher(body string) (matcher, error) {
	if !strings.ContainsAny(body, globMetaCharacters) {
		return literalMatcher{value: body}, nil
	}
	translated, translateError := translatePattern(body)
	if translateError != nil {
		return nil, translateError
	}
	var segments []globSegment
	for _, piece := range strings.Split(translated, string(globSeparator)) {
		if piece == doubleStarSegment {
			// Adjacent "**" segments match the same paths as one.
			if segmentCount := len(segments); segmentCount > 0 && segments[segmentCount-1].anyDirectories {
				continue
			}
			segments = append(segments, globSegment{anyDirectories: true})
			continue
		}
		compiled, compileError := glob.Compile(piece, globSeparator)
		if compileError != nil {
			return nil, fmt.Errorf("compile %q: %w", piece, compileError)
		}
		segments = append(segments, globSegment{pattern: compiled})
	}
	return globMatcher{segments: segments}, nil
}

// translatePattern rewrites gitignore wildcard syntax into gobwas syntax.
// Braces and commas are literal in gitignore and must be escaped; "[^" negation
// becomes "[!".
func translatePattern(body string) (string, error) {
	var builder strings.Builder
	insideClass := false
	for index := 0; index < len(body); index++ {
		character := body[index]
		if character == escapeCharacter && index+1 < len(body) {
			builder.WriteByte(character)
			builder.WriteByte(body[index+1])
			index++
			continue
		}
		if insideClass {
			if character == ']' {
				insideClass = false
			}
			builder.WriteByte(character)
			continue
		}
		switch character {
		case '[':
			insideClass = true
			builder.WriteByte(character)
			if index+1 < len(body) && body[index+1] == '^' {
				builder.WriteByte('!')
				index++
			}
		case '{', '}', ',':
			builder.WriteByte(escapeCharacter)
			builder.WriteByte(character)
		default:
			builder.WriteByte(character)
		}
	}
	if insideClass {
		return "", fmt.Errorf("%q: %w", body, errUnterminatedClass)
	}
	return builder.String(), nil
}
