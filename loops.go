package blade

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reLoopTarget  = regexp.MustCompile(`(?is)\( *(.*) +as *(.*)\)$`)
	reLoopControl = regexp.MustCompile(`\(\s*(-?\d+)\s*\)$`)
)

const (
	iterateLoop = "$__env->incrementLoopIndices(); $loop = $__env->getLastLoop();"
	popLoop     = "$__env->popLoop(); $loop = $__env->getLastLoop();"
)

var loopBuiltins = map[string]builtinFunc{
	"for":        wrapped("<?php for", ": ?>"),
	"endfor":     static("<?php endfor; ?>"),
	"foreach":    compileForeach,
	"endforeach": static("<?php endforeach; " + popLoop + " ?>"),
	"forelse":    compileForelse,
	"empty":      compileEmpty,
	"endforelse": static(endIf),
	"endempty":   static(endIf),
	"while":      wrapped("<?php while", ": ?>"),
	"endwhile":   static("<?php endwhile; ?>"),
	"break":      loopControl("break"),
	"continue":   loopControl("continue"),
}

// splitLoop splits "($items as $item)" into the iteratee and the iteration.
func splitLoop(expression string) (string, string) {
	m := reLoopTarget.FindStringSubmatch(expression)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

func initLoop(iteratee string) string {
	return "$__currentLoopData = " + iteratee + "; $__env->addLoop($__currentLoopData);"
}

func compileForeach(_ *compileState, expression string) string {
	iteratee, iteration := splitLoop(expression)
	return "<?php " + initLoop(iteratee) + " foreach($__currentLoopData as " + iteration + "): " + iterateLoop + " ?>"
}

func compileForelse(st *compileState, expression string) string {
	st.forElseCounter++
	empty := "$__empty_" + strconv.Itoa(st.forElseCounter)
	iteratee, iteration := splitLoop(expression)
	return "<?php " + empty + " = true; " + initLoop(iteratee) + " foreach($__currentLoopData as " + iteration + "): " + iterateLoop + " " + empty + " = false; ?>"
}

// compileEmpty is both the @forelse fallback and, with arguments, an
// emptiness test.
func compileEmpty(st *compileState, expression string) string {
	if expression != "" {
		return "<?php if(empty" + expression + "): ?>"
	}
	empty := "$__empty_" + strconv.Itoa(st.forElseCounter)
	st.forElseCounter--
	return "<?php endforeach; " + popLoop + " if (" + empty + "): ?>"
}

// loopControl compiles @break and @continue: a level, a condition or nothing.
func loopControl(keyword string) builtinFunc {
	return func(_ *compileState, expression string) string {
		if expression == "" {
			return "<?php " + keyword + "; ?>"
		}
		if m := reLoopControl.FindStringSubmatch(expression); m != nil {
			level, err := strconv.Atoi(m[1])
			if err != nil || level < 1 {
				level = 1
			}
			return "<?php " + keyword + " " + strconv.Itoa(level) + "; ?>"
		}
		return "<?php if" + expression + " " + keyword + "; ?>"
	}
}
