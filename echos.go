package blade

import (
	"fmt"
	"regexp"
)

// tags is an open/close delimiter pair.
type tags [2]string

var (
	defaultRawTags     = tags{"{!!", "!!}"}
	defaultContentTags = tags{"{{", "}}"}
	defaultEscapedTags = tags{"{{{", "}}}"}
)

const defaultEchoFormat = "e(%s)"

// echoPatterns are built from the configured tags whenever they change.
type echoPatterns struct {
	comment *regexp.Regexp
	raw     *regexp.Regexp
	escaped *regexp.Regexp
	regular *regexp.Regexp
}

func buildEchoPatterns(raw, content, escaped tags) echoPatterns {
	return echoPatterns{
		comment: regexp.MustCompile(fmt.Sprintf(`(?s)%s--(.*?)--%s`, regexp.QuoteMeta(content[0]), regexp.QuoteMeta(content[1]))),
		raw:     echoPattern(raw),
		escaped: echoPattern(escaped),
		regular: echoPattern(content),
	}
}

func echoPattern(t tags) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?s)(@)?%s\s*(.+?)\s*%s(\r?\n)?`, regexp.QuoteMeta(t[0]), regexp.QuoteMeta(t[1])))
}

// compileComments strips {{-- --}} comments.
func (c *Compiler) compileComments(value string) string {
	return c.patterns.comment.ReplaceAllString(value, "")
}

// compileEchos runs the raw, escaped and regular echo passes in that order.
func (c *Compiler) compileEchos(value string) string {
	value = c.compileRawEchos(value)
	value = c.compileEscapedEchos(value)
	return c.compileRegularEchos(value)
}

func (c *Compiler) compileRawEchos(value string) string {
	return replaceEchos(c.patterns.raw, value, func(m echoMatch) string {
		if m.escaped {
			return m.text[1:]
		}
		return "<?php echo " + m.expression + "; ?>" + m.whitespace()
	})
}

// compileEscapedEchos keeps an escaped match intact; the regular pass then
// sees "@{{" and drops the marker.
func (c *Compiler) compileEscapedEchos(value string) string {
	return replaceEchos(c.patterns.escaped, value, func(m echoMatch) string {
		if m.escaped {
			return m.text
		}
		return "<?php echo e(" + m.expression + "); ?>" + m.whitespace()
	})
}

func (c *Compiler) compileRegularEchos(value string) string {
	return replaceEchos(c.patterns.regular, value, func(m echoMatch) string {
		if m.escaped {
			return m.text[1:]
		}
		return "<?php echo " + fmt.Sprintf(c.echoFormat, m.expression) + "; ?>" + m.whitespace()
	})
}

type echoMatch struct {
	text       string
	escaped    bool
	expression string
	newline    string
}

// whitespace doubles the trailing line terminator, keeping compiled line
// numbers in step with the source.
func (m echoMatch) whitespace() string {
	return m.newline + m.newline
}

func replaceEchos(re *regexp.Regexp, value string, fn func(echoMatch) string) string {
	return replaceAllSubmatchFunc(re, value, func(value string, loc []int) string {
		m := echoMatch{
			text:       value[loc[0]:loc[1]],
			escaped:    loc[2] >= 0,
			expression: value[loc[4]:loc[5]],
		}
		if loc[6] >= 0 {
			m.newline = value[loc[6]:loc[7]]
		}
		return fn(m)
	})
}

// replaceAllSubmatchFunc is ReplaceAllStringFunc with access to submatch indexes.
func replaceAllSubmatchFunc(re *regexp.Regexp, value string, fn func(value string, loc []int) string) string {
	matches := re.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value
	}
	buf := make([]byte, 0, len(value))
	last := 0
	for _, loc := range matches {
		buf = append(buf, value[last:loc[0]]...)
		buf = append(buf, fn(value, loc)...)
		last = loc[1]
	}
	buf = append(buf, value[last:]...)
	return string(buf)
}
