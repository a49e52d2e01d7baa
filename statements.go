package blade

import (
	"regexp"
	"strings"
)

// reStatement matches the head of a directive: "@", an optional escaping
// "@", the name and the blanks before an argument list. Arguments are
// captured by scanArguments.
var reStatement = regexp.MustCompile(`\B@(@?\w+(?:::\w+)?)([ \t]*)`)

// maxArgumentDepth bounds parenthesis nesting inside directive arguments.
// Past it only the directive head is kept as text; directives inside the
// arguments are still compiled.
const maxArgumentDepth = 64

// statement is one directive occurrence in a markup token.
type statement struct {
	// text is the whole occurrence, arguments included
	text string
	name string
	// whitespace sits between the name and the arguments
	whitespace string
	// arguments keeps the surrounding parentheses, e.g. "($a)"
	arguments    string
	hasArguments bool
}

type argumentScan int

const (
	argumentsFound argumentScan = iota
	argumentsUnbalanced
	argumentsTooDeep
)

// scanArguments walks a parenthesised list opening at value[open] and
// returns the index after its closing parenthesis.
func scanArguments(value string, open int) (int, argumentScan) {
	depth := 0
	for i := open; i < len(value); i++ {
		switch value[i] {
		case '(':
			depth++
			if depth > maxArgumentDepth {
				return 0, argumentsTooDeep
			}
		case ')':
			depth--
			if depth == 0 {
				return i + 1, argumentsFound
			}
		}
	}
	return 0, argumentsUnbalanced
}

// findStatements returns the directive occurrences of value with their
// byte offsets, in order and without overlap.
func findStatements(value string) ([]statement, [][2]int) {
	heads := reStatement.FindAllStringSubmatchIndex(value, -1)
	if len(heads) == 0 {
		return nil, nil
	}
	var (
		found []statement
		spans [][2]int
		pos   int
	)
	for _, loc := range heads {
		if loc[0] < pos {
			continue
		}
		st := statement{
			name:       value[loc[2]:loc[3]],
			whitespace: value[loc[4]:loc[5]],
		}
		end := loc[1]
		if end < len(value) && value[end] == '(' {
			switch closing, scan := scanArguments(value, end); scan {
			case argumentsFound:
				st.arguments = value[end:closing]
				st.hasArguments = true
				end = closing
			case argumentsTooDeep:
				// left as written, the scan resumes after the head
				st.name = ""
			}
		}
		st.text = value[loc[0]:end]
		found = append(found, st)
		spans = append(spans, [2]int{loc[0], end})
		pos = end
	}
	return found, spans
}

// compileStatements expands every directive of a markup token.
func (c *Compiler) compileStatements(st *compileState, value string) string {
	found, spans := findStatements(value)
	if len(found) == 0 {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	last := 0
	for i, s := range found {
		b.WriteString(value[last:spans[i][0]])
		b.WriteString(c.compileStatement(st, s))
		last = spans[i][1]
	}
	b.WriteString(value[last:])
	return b.String()
}

func (c *Compiler) compileStatement(st *compileState, s statement) string {
	var out string
	switch {
	case s.name == "":
		return s.text
	case strings.Contains(s.name, "@"):
		out = s.name + s.arguments
	default:
		if handler, ok := c.registry.directive(s.name); ok {
			out = callCustomDirective(handler, s.arguments)
		} else if builtin, ok := lookupBuiltin(s.name); ok {
			out = builtin(st, s.arguments)
		} else {
			return s.text
		}
	}
	if s.hasArguments {
		return out
	}
	return out + s.whitespace
}

func callCustomDirective(handler DirectiveHandler, value string) string {
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		value = value[1 : len(value)-1]
	}
	return handler(strings.TrimSpace(value))
}

// stripParentheses drops the outer parentheses of an argument list.
func stripParentheses(expression string) string {
	if strings.HasPrefix(expression, "(") && len(expression) >= 2 {
		return expression[1 : len(expression)-1]
	}
	return expression
}

// isKnownDirective reports whether name would be expanded by c.
func (c *Compiler) isKnownDirective(name string) bool {
	if strings.Contains(name, "@") {
		return true
	}
	if _, ok := c.registry.directive(name); ok {
		return true
	}
	_, ok := lookupBuiltin(name)
	return ok
}
