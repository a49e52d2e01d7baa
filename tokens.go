package blade

import "strings"

type tokenKind int

const (
	inlineToken tokenKind = iota
	codeToken
)

// token is a run of either literal markup or embedded PHP code.
type token struct {
	kind tokenKind
	text string
	// closed reports whether a code token ends with a closing tag.
	closed bool
}

// tokenize splits src at PHP open and close tags. Only inline tokens are
// handed to the compiler passes.
func tokenize(src string, shortTags bool) []token {
	var tokens []token
	pos := 0
	for pos < len(src) {
		open := findOpenTag(src, pos, shortTags)
		if open < 0 {
			tokens = append(tokens, token{kind: inlineToken, text: src[pos:]})
			break
		}
		if open > pos {
			tokens = append(tokens, token{kind: inlineToken, text: src[pos:open]})
		}
		end, closed := scanCode(src, open)
		tokens = append(tokens, token{kind: codeToken, text: src[open:end], closed: closed})
		pos = end
	}
	return tokens
}

// hasOpenCode reports whether the last code region of src is left unterminated.
func hasOpenCode(src string, shortTags bool) bool {
	tokens := tokenize(src, shortTags)
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].kind == codeToken {
			return !tokens[i].closed
		}
	}
	return false
}

func findOpenTag(src string, from int, shortTags bool) int {
	for {
		i := strings.Index(src[from:], "<?")
		if i < 0 {
			return -1
		}
		i += from
		if openTagLen(src, i, shortTags) > 0 {
			return i
		}
		from = i + 2
	}
}

// openTagLen returns the length of the open tag at i, or 0 when src[i:] does
// not start one. "<?php" must be followed by whitespace or the end of input.
func openTagLen(src string, i int, shortTags bool) int {
	rest := src[i:]
	if strings.HasPrefix(rest, "<?=") {
		return 3
	}
	if len(rest) >= 5 && strings.EqualFold(rest[2:5], "php") {
		if len(rest) == 5 || isSpace(rest[5]) {
			return 5
		}
	}
	if shortTags {
		return 2
	}
	return 0
}

// scanCode returns the end of the code region opening at start. The closing
// tag swallows a single line terminator after it.
func scanCode(src string, start int) (int, bool) {
	i := start + openTagLen(src, start, true)
	for i < len(src) {
		switch c := src[i]; {
		case c == '?' && i+1 < len(src) && src[i+1] == '>':
			i += 2
			if strings.HasPrefix(src[i:], "\r\n") {
				i += 2
			} else if i < len(src) && src[i] == '\n' {
				i++
			}
			return i, true
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(src, i, c)
		case c == '#' && !(i+1 < len(src) && src[i+1] == '['):
			i = skipLineComment(src, i+1)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i+2)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return len(src), false
			}
			i += 2 + end + 2
		case c == '<' && strings.HasPrefix(src[i:], "<<<"):
			i = skipHeredoc(src, i)
		default:
			i++
		}
	}
	return len(src), false
}

func skipQuoted(src string, i int, quote byte) int {
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(src)
}

// skipLineComment stops at the line end or right before a closing tag.
func skipLineComment(src string, i int) int {
	for ; i < len(src); i++ {
		if src[i] == '\n' {
			return i + 1
		}
		if src[i] == '?' && i+1 < len(src) && src[i+1] == '>' {
			return i
		}
	}
	return i
}

func skipHeredoc(src string, i int) int {
	j := i + 3
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	var quote byte
	if j < len(src) && (src[j] == '\'' || src[j] == '"') {
		quote = src[j]
		j++
	}
	idStart := j
	for j < len(src) && isIdentByte(src[j], j == idStart) {
		j++
	}
	if j == idStart {
		return i + 3
	}
	id := src[idStart:j]
	if quote != 0 {
		if j >= len(src) || src[j] != quote {
			return i + 3
		}
		j++
	}
	if j >= len(src) || (src[j] != '\n' && src[j] != '\r') {
		return i + 3
	}
	for {
		nl := strings.IndexByte(src[j:], '\n')
		if nl < 0 {
			return len(src)
		}
		j += nl + 1
		line := strings.TrimLeft(src[j:], " \t")
		if strings.HasPrefix(line, id) {
			after := len(src) - len(line) + len(id)
			if after >= len(src) || !isIdentByte(src[after], false) {
				return after
			}
		}
	}
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80:
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
