package blade

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	rawPlaceholderPrefix = "@__raw_block_"
	rawPlaceholderSuffix = "__@"
)

var (
	reVerbatim       = regexp.MustCompile(`(?s)@verbatim(.*?)@endverbatim`)
	rePhpBlock       = regexp.MustCompile(`(?s)@php(.*?)@endphp`)
	reRawPlaceholder = regexp.MustCompile(`@__raw_block_(\d+)__@`)
)

// storeLiteralPlaceholders protects placeholder shaped text already in the
// source, so restoring raw blocks gives it back as written.
func storeLiteralPlaceholders(st *compileState, value string) string {
	return reRawPlaceholder.ReplaceAllStringFunc(value, st.storeRawBlock)
}

// storeVerbatimBlocks replaces @verbatim regions with placeholders. The
// content is restored untouched.
func storeVerbatimBlocks(st *compileState, value string) string {
	return replaceUnescaped(reVerbatim, value, func(body string) string {
		return st.storeRawBlock(body)
	})
}

// storePhpBlocks replaces @php ... @endphp regions with placeholders holding
// the body wrapped in PHP tags.
func storePhpBlocks(st *compileState, value string) string {
	return replaceUnescaped(rePhpBlock, value, func(body string) string {
		return st.storeRawBlock("<?php" + body + "?>")
	})
}

// replaceUnescaped replaces matches of re that are not preceded by "@" and
// whose body does not contain an earlier placeholder. A skipped match is
// retried one byte further on, so the first end marker still closes the
// region.
func replaceUnescaped(re *regexp.Regexp, value string, fn func(body string) string) string {
	var b strings.Builder
	done, from := 0, 0
	for from < len(value) {
		loc := re.FindStringSubmatchIndex(value[from:])
		if loc == nil {
			break
		}
		start, end := from+loc[0], from+loc[1]
		body := value[from+loc[2] : from+loc[3]]
		if (start > 0 && value[start-1] == '@') || reRawPlaceholder.MatchString(body) {
			from = start + 1
			continue
		}
		b.WriteString(value[done:start])
		b.WriteString(fn(body))
		done, from = end, end
	}
	if done == 0 {
		return value
	}
	b.WriteString(value[done:])
	return b.String()
}

func (st *compileState) storeRawBlock(value string) string {
	st.rawBlocks = append(st.rawBlocks, value)
	return rawPlaceholder(len(st.rawBlocks) - 1)
}

func rawPlaceholder(index int) string {
	return rawPlaceholderPrefix + strconv.Itoa(index) + rawPlaceholderSuffix
}

// restoreRawContent swaps every placeholder back for its stored block.
func restoreRawContent(st *compileState, result string) string {
	result = reRawPlaceholder.ReplaceAllStringFunc(result, func(m string) string {
		i, err := strconv.Atoi(m[len(rawPlaceholderPrefix) : len(m)-len(rawPlaceholderSuffix)])
		if err != nil || i >= len(st.rawBlocks) {
			return m
		}
		return st.rawBlocks[i]
	})
	st.rawBlocks = nil
	return result
}
