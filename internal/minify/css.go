package minify

import "strings"

type stylesheetState int

const (
	stylesheetNormal stylesheetState = iota
	stylesheetString
	stylesheetBlockComment
	stylesheetLineComment
	stylesheetURL
)

const urlFunctionPrefix = "url("

// minifyStylesheet strips comments and collapses whitespace outside strings and
// url(...) bodies. SCSS additionally drops // line comments.
func minifyStylesheet(content string, scss bool) string {
	var output strings.Builder
	output.Grow(len(content))

	state := stylesheetNormal
	pendingSpace := false
	var quote byte
	var urlQuote byte

	emit := func(character byte) {
		if pendingSpace && output.Len() > 0 {
			previous := lastByte(&output)
			if !isStylesheetPunctuation(previous) && !isStylesheetPunctuation(character) {
				output.WriteByte(' ')
			}
		}
		pendingSpace = false
		output.WriteByte(character)
	}

	for index := 0; index < len(content); index++ {
		character := content[index]
		switch state {
		case stylesheetString:
			output.WriteByte(character)
			if character == '\\' && index+1 < len(content) {
				index++
				output.WriteByte(content[index])
				continue
			}
			if character == quote {
				state = stylesheetNormal
			}
		case stylesheetBlockComment:
			if character == '*' && index+1 < len(content) && content[index+1] == '/' {
				index++
				state = stylesheetNormal
				pendingSpace = true
			}
		case stylesheetLineComment:
			if character == '\n' {
				state = stylesheetNormal
				pendingSpace = true
			}
		case stylesheetURL:
			output.WriteByte(character)
			switch {
			case character == '\\' && index+1 < len(content):
				index++
				output.WriteByte(content[index])
			case urlQuote != 0:
				if character == urlQuote {
					urlQuote = 0
				}
			case character == '"' || character == '\'':
				urlQuote = character
			case character == ')':
				state = stylesheetNormal
			}
		default:
			switch {
			case isWhitespace(character):
				pendingSpace = true
			case character == '/' && index+1 < len(content) && content[index+1] == '*':
				index++
				state = stylesheetBlockComment
			case scss && character == '/' && index+1 < len(content) && content[index+1] == '/':
				index++
				state = stylesheetLineComment
			case character == '\\':
				emit(character)
				if index+1 < len(content) {
					index++
					output.WriteByte(content[index])
				}
			case character == '"' || character == '\'':
				emit(character)
				quote = character
				state = stylesheetString
			case startsURLFunction(content, index, lastByte(&output), pendingSpace):
				emit(character)
				output.WriteString(content[index+1 : index+len(urlFunctionPrefix)])
				index += len(urlFunctionPrefix) - 1
				urlQuote = 0
				state = stylesheetURL
			default:
				emit(character)
			}
		}
	}
	return output.String()
}

// startsURLFunction reports whether a url( token begins at index. previous is the
// last emitted byte and separated reports pending whitespace before index.
func startsURLFunction(content string, index int, previous byte, separated bool) bool {
	if index+len(urlFunctionPrefix) > len(content) {
		return false
	}
	if !strings.EqualFold(content[index:index+len(urlFunctionPrefix)], urlFunctionPrefix) {
		return false
	}
	return separated || previous == 0 || !isIdentifierByte(previous)
}

func isStylesheetPunctuation(character byte) bool {
	switch character {
	case '{', '}', ';', ',':
		return true
	default:
		return false
	}
}

func isWhitespace(character byte) bool {
	switch character {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

func isIdentifierByte(character byte) bool {
	return character == '_' || character == '-' || character == '$' || character == '\\' ||
		(character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z') ||
		(character >= '0' && character <= '9') ||
		character >= 0x80
}

func lastByte(builder *strings.Builder) byte {
	rendered := builder.String()
	if rendered == "" {
		return 0
	}
	return rendered[len(rendered)-1]
}
