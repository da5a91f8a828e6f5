package minify

import "strings"

type scriptState int

const (
	scriptCode scriptState = iota
	scriptLineComment
	scriptBlockComment
	scriptSingleQuote
	scriptDoubleQuote
	scriptTemplate
	scriptRegex
	scriptRegexClass
)

const shebangPrefix = "#!"

// regexPrecedingCharacters are the significant characters after which a slash
// starts a regular expression literal rather than a division.
const regexPrecedingCharacters = "(,=:[!&|?{};*%<>~^"

// regexPrecedingKeywords are the words after which a slash starts a regular
// expression literal.
var regexPrecedingKeywords = map[string]struct{}{
	"return":     {},
	"typeof":     {},
	"instanceof": {},
	"in":         {},
	"of":         {},
	"new":        {},
	"delete":     {},
	"void":       {},
	"throw":      {},
	"case":       {},
	"do":         {},
	"else":       {},
	"yield":      {},
	"await":      {},
}

// scriptScanner strips comments and redundant whitespace from JavaScript and
// TypeScript with an explicit state machine. Literal states copy bytes verbatim.
type scriptScanner struct {
	content string
	index   int
	output  strings.Builder
	state   scriptState

	pendingSpace        bool
	pendingNewline      bool
	commentSpansNewline bool

	braceDepth     int
	templateDepths []int

	lastSignificant  byte
	lastIncrement    bool
	lastWord         string
	lastWordAfterDot bool
}

func minifyScript(content string) string {
	scanner := &scriptScanner{content: content}
	scanner.output.Grow(len(content))
	scanner.copyShebang()
	for ; scanner.index < len(content); scanner.index++ {
		character := content[scanner.index]
		switch scanner.state {
		case scriptCode:
			scanner.scanCode(character)
		case scriptLineComment:
			if character == '\n' {
				scanner.state = scriptCode
				scanner.pendingNewline = true
			}
		case scriptBlockComment:
			scanner.scanBlockComment(character)
		case scriptSingleQuote:
			scanner.scanString(character, '\'')
		case scriptDoubleQuote:
			scanner.scanString(character, '"')
		case scriptTemplate:
			scanner.scanTemplate(character)
		case scriptRegex:
			scanner.scanRegex(character)
		case scriptRegexClass:
			scanner.scanRegexClass(character)
		}
	}
	return scanner.output.String()
}

// copyShebang keeps an interpreter line at the start of the file verbatim.
func (scanner *scriptScanner) copyShebang() {
	if !strings.HasPrefix(scanner.content, shebangPrefix) {
		return
	}
	lineEnd := strings.IndexByte(scanner.content, '\n')
	if lineEnd < 0 {
		scanner.output.WriteString(scanner.content)
		scanner.index = len(scanner.content)
		return
	}
	scanner.output.WriteString(scanner.content[:lineEnd+1])
	scanner.index = lineEnd + 1
}

func (scanner *scriptScanner) peek() byte {
	if scanner.index+1 < len(scanner.content) {
		return scanner.content[scanner.index+1]
	}
	return 0
}

func (scanner *scriptScanner) scanCode(character byte) {
	switch {
	case character == '\n' || character == '\r':
		scanner.pendingNewline = true
	case isWhitespace(character):
		scanner.pendingSpace = true
	case character == '/' && scanner.peek() == '/':
		scanner.index++
		scanner.state = scriptLineComment
	case character == '/' && scanner.peek() == '*':
		scanner.index++
		scanner.state = scriptBlockComment
		scanner.commentSpansNewline = false
	case character == '/' && scanner.regexAllowed():
		scanner.emit(character)
		scanner.state = scriptRegex
	case character == '\'':
		scanner.emit(character)
		scanner.state = scriptSingleQuote
	case character == '"':
		scanner.emit(character)
		scanner.state = scriptDoubleQuote
	case character == '`':
		scanner.emit(character)
		scanner.state = scriptTemplate
	case character == '{':
		scanner.emit(character)
		scanner.braceDepth++
	case character == '}':
		if depthCount := len(scanner.templateDepths); depthCount > 0 && scanner.templateDepths[depthCount-1] == scanner.braceDepth {
			scanner.templateDepths = scanner.templateDepths[:depthCount-1]
			scanner.emit(character)
			scanner.state = scriptTemplate
			return
		}
		scanner.braceDepth--
		scanner.emit(character)
	default:
		scanner.emit(character)
	}
}

func (scanner *scriptScanner) scanBlockComment(character byte) {
	if character == '\n' || character == '\r' {
		scanner.commentSpansNewline = true
		return
	}
	if character != '*' || scanner.peek() != '/' {
		return
	}
	scanner.index++
	scanner.state = scriptCode
	if scanner.commentSpansNewline {
		scanner.pendingNewline = true
	} else {
		scanner.pendingSpace = true
	}
}

// scanString copies a quoted string. An unescaped line break ends a malformed
// string and is kept in the output so the literal ends there on every pass.
func (scanner *scriptScanner) scanString(character byte, quote byte) {
	if character == '\n' {
		scanner.breakLiteral()
		return
	}
	scanner.output.WriteByte(character)
	if character == '\\' {
		scanner.copyEscaped()
		return
	}
	if character == quote {
		scanner.closeLiteral(quote)
	}
}

func (scanner *scriptScanner) scanTemplate(character byte) {
	scanner.output.WriteByte(character)
	switch {
	case character == '\\':
		scanner.copyEscaped()
	case character == '`':
		scanner.closeLiteral(character)
	case character == '$' && scanner.peek() == '{':
		scanner.index++
		scanner.output.WriteByte('{')
		scanner.templateDepths = append(scanner.templateDepths, scanner.braceDepth)
		scanner.state = scriptCode
		scanner.lastSignificant = '{'
		scanner.lastWord = ""
		scanner.lastIncrement = false
	}
}

func (scanner *scriptScanner) scanRegex(character byte) {
	if character == '\n' {
		scanner.breakLiteral()
		return
	}
	scanner.output.WriteByte(character)
	switch character {
	case '\\':
		scanner.copyEscaped()
	case '[':
		scanner.state = scriptRegexClass
	case '/':
		scanner.closeLiteral(character)
	}
}

func (scanner *scriptScanner) scanRegexClass(character byte) {
	if character == '\n' {
		scanner.breakLiteral()
		return
	}
	scanner.output.WriteByte(character)
	switch character {
	case '\\':
		scanner.copyEscaped()
	case ']':
		scanner.state = scriptRegex
	}
}

// copyEscaped copies the byte following a backslash without interpreting it.
// A CRLF after the backslash is one line continuation.
func (scanner *scriptScanner) copyEscaped() {
	if scanner.index+1 >= len(scanner.content) {
		return
	}
	scanner.index++
	escaped := scanner.content[scanner.index]
	scanner.output.WriteByte(escaped)
	if escaped == '\r' && scanner.peek() == '\n' {
		scanner.index++
		scanner.output.WriteByte('\n')
	}
}

// breakLiteral ends an unterminated string or regex at a line break. The break
// is written immediately and is never dropped.
func (scanner *scriptScanner) breakLiteral() {
	scanner.output.WriteByte('\n')
	scanner.closeLiteral('\n')
}

func (scanner *scriptScanner) closeLiteral(closing byte) {
	scanner.state = scriptCode
	scanner.lastSignificant = closing
	scanner.lastWord = ""
	scanner.lastIncrement = false
}

// emit writes a significant code byte, first materializing any pending
// whitespace that is needed to keep tokens apart or to preserve a line break.
func (scanner *scriptScanner) emit(character byte) {
	if scanner.output.Len() > 0 && (scanner.pendingNewline || scanner.pendingSpace) {
		previous := lastByte(&scanner.output)
		switch {
		case previous == '\n':
		case scanner.pendingNewline && !lineBreakDroppable(previous, character):
			scanner.output.WriteByte('\n')
		case scriptNeedsSpace(previous, character):
			scanner.output.WriteByte(' ')
		}
	}
	scanner.pendingNewline = false
	scanner.pendingSpace = false

	previousOutput := lastByte(&scanner.output)
	if isScriptWordByte(character) {
		if isScriptWordByte(previousOutput) {
			scanner.lastWord += string(character)
		} else {
			scanner.lastWord = string(character)
			scanner.lastWordAfterDot = scanner.lastSignificant == '.'
		}
	} else {
		scanner.lastWord = ""
	}
	scanner.lastIncrement = (character == '+' || character == '-') && previousOutput == character
	scanner.lastSignificant = character
	scanner.output.WriteByte(character)
}

// regexAllowed decides whether a slash in code starts a regular expression by
// looking at the preceding significant token.
func (scanner *scriptScanner) regexAllowed() bool {
	switch {
	case scanner.lastSignificant == 0:
		return true
	case scanner.lastWord != "":
		if scanner.lastWordAfterDot {
			return false
		}
		_, isKeyword := regexPrecedingKeywords[scanner.lastWord]
		return isKeyword
	case scanner.lastSignificant == '+' || scanner.lastSignificant == '-':
		return !scanner.lastIncrement
	default:
		return strings.IndexByte(regexPrecedingCharacters, scanner.lastSignificant) >= 0
	}
}

// lineBreakDroppable reports whether a line break between previous and next can
// be removed without changing automatic semicolon insertion.
func lineBreakDroppable(previous byte, next byte) bool {
	return strings.IndexByte("{([;,", previous) >= 0 || strings.IndexByte("})];,", next) >= 0
}

// scriptNeedsSpace reports whether removing the space between previous and next
// would merge two tokens.
func scriptNeedsSpace(previous byte, next byte) bool {
	switch {
	case isScriptWordByte(previous) && isScriptWordByte(next):
		return true
	case (previous == '+' || previous == '-') && previous == next:
		return true
	case previous == '/' && (next == '/' || next == '*' || isScriptWordByte(next)):
		return true
	case previous >= '0' && previous <= '9' && next == '.':
		return true
	default:
		return false
	}
}

func isScriptWordByte(character byte) bool {
	return character == '_' || character == '$' || character == '\\' || character == '#' ||
		(character >= 'a' && character <= 'z') ||
		(character >= 'A' && character <= 'Z') ||
		(character >= '0' && character <= '9') ||
		character >= 0x80
}
