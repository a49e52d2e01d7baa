package blade

import (
	"slices"
	"strings"
)

// builtinFunc compiles a builtin directive. expression is the raw argument
// list with its parentheses, or "" when the directive has none.
type builtinFunc func(st *compileState, expression string) string

// builtins is keyed by lower case name; directive names match it case
// insensitively, so @endForeach and @endforeach are the same directive.
var (
	builtins     = map[string]builtinFunc{}
	builtinNames []string
)

func registerBuiltins(table map[string]builtinFunc) {
	for name, fn := range table {
		builtins[strings.ToLower(name)] = fn
		builtinNames = append(builtinNames, name)
	}
}

func init() {
	registerBuiltins(conditionalBuiltins)
	registerBuiltins(authorizationBuiltins)
	registerBuiltins(loopBuiltins)
	registerBuiltins(componentBuiltins)
	registerBuiltins(includeBuiltins)
	registerBuiltins(layoutBuiltins)
	registerBuiltins(stackBuiltins)
	registerBuiltins(helperBuiltins)
}

func lookupBuiltin(name string) (builtinFunc, bool) {
	fn, ok := builtins[strings.ToLower(name)]
	return fn, ok
}

// BuiltinDirectives lists the names of the builtin directives, sorted.
func BuiltinDirectives() []string {
	names := slices.Clone(builtinNames)
	slices.Sort(names)
	return names
}

// static returns a builtin that ignores its arguments.
func static(code string) builtinFunc {
	return func(*compileState, string) string {
		return code
	}
}

// wrapped returns a builtin emitting prefix + expression + suffix.
func wrapped(prefix, suffix string) builtinFunc {
	return func(_ *compileState, expression string) string {
		return prefix + expression + suffix
	}
}
