package blade

const endIf = "<?php endif; ?>"

const gate = `app(\Illuminate\Contracts\Auth\Access\Gate::class)`

var conditionalBuiltins = map[string]builtinFunc{
	"if":             wrapped("<?php if", ": ?>"),
	"elseif":         wrapped("<?php elseif", ": ?>"),
	"else":           static("<?php else: ?>"),
	"endif":          static(endIf),
	"unless":         wrapped("<?php if (! ", "): ?>"),
	"endunless":      static(endIf),
	"isset":          wrapped("<?php if(isset", "): ?>"),
	"endisset":       static(endIf),
	"hasSection":     wrapped("<?php if (! empty(trim($__env->yieldContent", "))): ?>"),
	"sectionMissing": wrapped("<?php if (empty(trim($__env->yieldContent", "))): ?>"),
	"switch":         compileSwitch,
	"case":           compileCase,
	"default":        static("<?php default: ?>"),
	"endswitch":      static("<?php endswitch; ?>"),
	"auth":           guarded("<?php if(auth()->guard", "->check()): ?>"),
	"elseauth":       guarded("<?php elseif(auth()->guard", "->check()): ?>"),
	"endauth":        static(endIf),
	"guest":          guarded("<?php if(auth()->guard", "->guest()): ?>"),
	"elseguest":      guarded("<?php elseif(auth()->guard", "->guest()): ?>"),
	"endguest":       static(endIf),
	"env":            wrapped("<?php if(app()->environment", "): ?>"),
	"endenv":         static(endIf),
	"production":     static("<?php if(app()->environment('production')): ?>"),
	"endproduction":  static(endIf),
}

var authorizationBuiltins = map[string]builtinFunc{
	"can":        wrapped("<?php if ("+gate+"->check", "): ?>"),
	"cannot":     wrapped("<?php if ("+gate+"->denies", "): ?>"),
	"canany":     wrapped("<?php if ("+gate+"->any", "): ?>"),
	"elsecan":    wrapped("<?php elseif ("+gate+"->check", "): ?>"),
	"elsecannot": wrapped("<?php elseif ("+gate+"->denies", "): ?>"),
	"elsecanany": wrapped("<?php elseif ("+gate+"->any", "): ?>"),
	"endcan":     static(endIf),
	"endcannot":  static(endIf),
	"endcanany":  static(endIf),
}

// guarded compiles @auth style directives, defaulting to the default guard.
func guarded(prefix, suffix string) builtinFunc {
	return func(_ *compileState, guard string) string {
		if guard == "" {
			guard = "()"
		}
		return prefix + guard + suffix
	}
}

// compileSwitch leaves its code block open; the first @case closes it, as
// PHP allows nothing between switch and the first case.
func compileSwitch(st *compileState, expression string) string {
	st.firstCaseInSwitch = true
	return "<?php switch" + expression + ":"
}

func compileCase(st *compileState, expression string) string {
	if st.firstCaseInSwitch {
		st.firstCaseInSwitch = false
		return "case " + expression + ": ?>"
	}
	return "<?php case " + expression + ": ?>"
}
