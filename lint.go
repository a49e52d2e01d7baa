package blade

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestionDistance bounds the edit distance of a "did you mean" hint
// when no candidate contains the typed name as a subsequence.
const maxSuggestionDistance = 2

// Diagnostic reports a directive the compiler leaves as literal text.
type Diagnostic struct {
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Directive  string `json:"directive"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (d Diagnostic) String() string {
	msg := fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
	if d.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean @%s?", d.Suggestion)
	}
	return msg
}

// Lint lists the directives of source that compile to themselves, either
// because no handler knows their name or because their arguments nest too
// deep. Raw regions, embedded code and comments are skipped.
func (c *Compiler) Lint(source string) []Diagnostic {
	masked := c.maskIgnored(source)
	found, spans := findStatements(masked)
	var (
		diagnostics []Diagnostic
		candidates  []string
	)
	for i, s := range found {
		line, column := position(source, spans[i][0])
		switch {
		case s.name == "":
			head := reStatement.FindStringSubmatch(s.text)
			diagnostics = append(diagnostics, Diagnostic{
				Line:      line,
				Column:    column,
				Directive: head[1],
				Message:   fmt.Sprintf("arguments of @%s nest deeper than %d levels", head[1], maxArgumentDepth),
			})
		case !c.isKnownDirective(s.name):
			if candidates == nil {
				candidates = append(BuiltinDirectives(), c.registry.Directives()...)
			}
			diagnostics = append(diagnostics, Diagnostic{
				Line:       line,
				Column:     column,
				Directive:  s.name,
				Message:    fmt.Sprintf("unknown directive @%s is left as text", s.name),
				Suggestion: closestDirective(s.name, candidates),
			})
		}
	}
	return diagnostics
}

// maskIgnored blanks the parts of source no directive pass sees, keeping
// offsets and line breaks intact.
func (c *Compiler) maskIgnored(source string) string {
	masked := replaceUnescaped(reVerbatim, source, func(body string) string {
		return blank("@verbatim" + body + "@endverbatim")
	})
	masked = replaceUnescaped(rePhpBlock, masked, func(body string) string {
		return blank("@php" + body + "@endphp")
	})
	var b strings.Builder
	b.Grow(len(masked))
	for _, tok := range tokenize(masked, c.shortOpenTags) {
		if tok.kind == codeToken {
			b.WriteString(blank(tok.text))
			continue
		}
		b.WriteString(c.patterns.comment.ReplaceAllStringFunc(tok.text, blank))
	}
	return b.String()
}

func blank(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// position converts a byte offset into a 1-based line and column.
func position(source string, offset int) (int, int) {
	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	return line, offset - strings.LastIndex(before, "\n")
}

func closestDirective(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}
