package minify

import (
	"regexp"
	"strings"
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

var (
	langAttributePattern = regexp.MustCompile(`(?is)\slang\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
	typeAttributePattern = regexp.MustCompile(`(?is)\stype\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
)

// markupScanner collapses whitespace in HTML and Svelte markup. Comments are
// dropped, script and style bodies get their own pass and pre or textarea
// bodies are copied verbatim. Svelte {...} expressions are copied verbatim.
type markupScanner struct {
	content      string
	index        int
	output       strings.Builder
	pendingSpace bool
	svelte       bool
}

func minifyMarkup(content string, svelte bool) string {
	scanner := &markupScanner{content: content, svelte: svelte}
	scanner.output.Grow(len(content))
	for scanner.index < len(content) {
		character := content[scanner.index]
		switch {
		case isWhitespace(character):
			scanner.pendingSpace = true
			scanner.index++
		case strings.HasPrefix(content[scanner.index:], commentOpen):
			scanner.skipComment()
		case character == '<' && scanner.index+1 < len(content) && isTagStartByte(content[scanner.index+1]):
			scanner.scanTag()
		case svelte && character == '{':
			end := matchingBrace(content, scanner.index)
			scanner.write(content[scanner.index:end])
			scanner.index = end
		default:
			scanner.write(content[scanner.index : scanner.index+1])
			scanner.index++
		}
	}
	return scanner.output.String()
}

// write flushes pending whitespace as a single space and appends text.
func (scanner *markupScanner) write(text string) {
	if scanner.pendingSpace && scanner.output.Len() > 0 {
		scanner.output.WriteByte(' ')
	}
	scanner.pendingSpace = false
	scanner.output.WriteString(text)
}

func (scanner *markupScanner) skipComment() {
	bodyStart := scanner.index + len(commentOpen)
	closeOffset := strings.Index(scanner.content[bodyStart:], commentClose)
	if closeOffset < 0 {
		scanner.write(scanner.content[scanner.index:])
		scanner.index = len(scanner.content)
		return
	}
	scanner.index = bodyStart + closeOffset + len(commentClose)
}

func (scanner *markupScanner) scanTag() {
	tagEnd, found := scanner.findTagEnd(scanner.index)
	if !found {
		scanner.write(scanner.content[scanner.index : scanner.index+1])
		scanner.index++
		return
	}
	rawTag := scanner.content[scanner.index:tagEnd]
	scanner.write(scanner.collapseTag(rawTag))
	scanner.index = tagEnd

	name, closing := tagName(rawTag)
	if closing || strings.HasSuffix(rawTag, "/>") {
		return
	}
	switch name {
	case "script", "style", "pre", "textarea":
	default:
		return
	}
	bodyEnd := findClosingTag(scanner.content, scanner.index, name)
	body := scanner.content[scanner.index:bodyEnd]
	scanner.index = bodyEnd
	switch name {
	case "script":
		scanner.output.WriteString(minifyEmbeddedScript(rawTag, body))
	case "style":
		scanner.output.WriteString(minifyStylesheet(body, strings.EqualFold(attributeValue(langAttributePattern, rawTag), "scss")))
	default:
		scanner.output.WriteString(body)
	}
}

// findTagEnd returns the offset just past the '>' closing the tag at start,
// ignoring '>' inside quoted attribute values and Svelte expressions.
func (scanner *markupScanner) findTagEnd(start int) (int, bool) {
	var quote byte
	for index := start + 1; index < len(scanner.content); index++ {
		character := scanner.content[index]
		switch {
		case quote != 0:
			if character == quote {
				quote = 0
			}
		case scanner.svelte && character == '{':
			index = matchingBrace(scanner.content, index) - 1
		case character == '"' || character == '\'':
			quote = character
		case character == '>':
			return index + 1, true
		}
	}
	return 0, false
}

// collapseTag reduces whitespace runs inside a tag to one space and drops the
// space before the closing '>'. Quoted values and Svelte expressions are untouched.
func (scanner *markupScanner) collapseTag(rawTag string) string {
	var builder strings.Builder
	builder.Grow(len(rawTag))
	pendingSpace := false
	var quote byte
	for index := 0; index < len(rawTag); index++ {
		character := rawTag[index]
		if quote != 0 {
			builder.WriteByte(character)
			if character == quote {
				quote = 0
			}
			continue
		}
		if isWhitespace(character) {
			pendingSpace = true
			continue
		}
		if pendingSpace && character != '>' {
			builder.WriteByte(' ')
		}
		pendingSpace = false
		switch {
		case scanner.svelte && character == '{':
			end := matchingBrace(rawTag, index)
			builder.WriteString(rawTag[index:end])
			index = end - 1
		case character == '"' || character == '\'':
			quote = character
			builder.WriteByte(character)
		default:
			builder.WriteByte(character)
		}
	}
	return builder.String()
}

func minifyEmbeddedScript(rawTag string, body string) string {
	scriptType := strings.ToLower(attributeValue(typeAttributePattern, rawTag))
	switch {
	case scriptType == "", strings.Contains(scriptType, "javascript"), strings.Contains(scriptType, "ecmascript"),
		strings.Contains(scriptType, "typescript"), scriptType == "module":
		return minifyScript(body)
	case strings.Contains(scriptType, "json"):
		compacted, compactError := minifyJSON(body)
		if compactError != nil {
			return body
		}
		return compacted
	default:
		return body
	}
}

func attributeValue(pattern *regexp.Regexp, rawTag string) string {
	match := pattern.FindStringSubmatch(rawTag)
	if match == nil {
		return ""
	}
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}
	return ""
}

// tagName extracts the lower-case element name and whether the tag closes an element.
func tagName(rawTag string) (string, bool) {
	remainder := strings.TrimPrefix(rawTag, "<")
	closing := strings.HasPrefix(remainder, "/")
	remainder = strings.TrimPrefix(remainder, "/")
	end := 0
	for end < len(remainder) && isTagNameByte(remainder[end]) {
		end++
	}
	return strings.ToLower(remainder[:end]), closing
}

// findClosingTag returns the offset of the "</name" that ends a raw-text element,
// or the end of content when the element is never closed.
func findClosingTag(content string, start int, name string) int {
	lowered := strings.ToLower(content[start:])
	closingPrefix := "</" + name
	searchFrom := 0
	for {
		offset := strings.Index(lowered[searchFrom:], closingPrefix)
		if offset < 0 {
			return len(content)
		}
		candidate := searchFrom + offset
		after := candidate + len(closingPrefix)
		if after >= len(lowered) || !isTagNameByte(lowered[after]) {
			return start + candidate
		}
		searchFrom = after
	}
}

// matchingBrace returns the offset just past the '}' matching the '{' at start.
// Braces inside quoted strings are ignored. Unbalanced input runs to the end.
func matchingBrace(content string, start int) int {
	depth := 0
	var quote byte
	for index := start; index < len(content); index++ {
		character := content[index]
		if quote != 0 {
			switch character {
			case '\\':
				index++
			case quote:
				quote = 0
			}
			continue
		}
		switch character {
		case '"', '\'', '`':
			quote = character
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return index + 1
			}
		}
	}
	return len(content)
}

func isTagStartByte(character byte) bool {
	return character == '/' || character == '!' ||
		(character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z')
}

func isTagNameByte(character byte) bool {
	return character == '-' || character == ':' || character == '.' ||
		(character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z') ||
		(character >= '0' && character <= '9')
}
