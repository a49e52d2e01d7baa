package blade

// definedVars passes the variables of the current view on to an included one.
const definedVars = `\Illuminate\Support\Arr::except(get_defined_vars(), ['__data', '__path'])`

const renderComponent = "<?php echo $__env->renderComponent(); ?>"

var componentBuiltins = map[string]builtinFunc{
	"component":         wrapped("<?php $__env->startComponent", "; ?>"),
	"endcomponent":      static(renderComponent),
	"componentFirst":    wrapped("<?php $__env->startComponentFirst", "; ?>"),
	"endcomponentFirst": static(renderComponent),
	"slot":              wrapped("<?php $__env->slot", "; ?>"),
	"endslot":           static("<?php $__env->endSlot(); ?>"),
}

var includeBuiltins = map[string]builtinFunc{
	"include":       compileInclude,
	"includeIf":     compileIncludeIf,
	"includeWhen":   compileIncludeWhen,
	"includeUnless": compileIncludeUnless,
	"includeFirst":  compileIncludeFirst,
	"each":          wrapped("<?php echo $__env->renderEach", "; ?>"),
}

func compileInclude(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php echo $__env->make(" + expression + ", " + definedVars + ")->render(); ?>"
}

func compileIncludeIf(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php if ($__env->exists(" + expression + ")) echo $__env->make(" + expression + ", " + definedVars + ")->render(); ?>"
}

func compileIncludeWhen(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php echo $__env->renderWhen(" + expression + ", " + definedVars + "); ?>"
}

func compileIncludeUnless(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php echo $__env->renderWhen(! " + expression + ", " + definedVars + "); ?>"
}

func compileIncludeFirst(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php echo $__env->first(" + expression + ", " + definedVars + ")->render(); ?>"
}
