package blade

import (
	"strconv"
	"strings"
)

// jsonEncodingOptions is JSON_HEX_TAG | JSON_HEX_APOS | JSON_HEX_AMP | JSON_HEX_QUOT.
const jsonEncodingOptions = 15

const jsonEncodingDepth = 512

var injectStrip = strings.NewReplacer("(", "", ")", "", `"`, "", "'", "")

var helperBuiltins = map[string]builtinFunc{
	"csrf":     static("<?php echo csrf_field(); ?>"),
	"method":   wrapped("<?php echo method_field", "; ?>"),
	"dump":     wrapped("<?php dump", "; ?>"),
	"dd":       wrapped("<?php dd", "; ?>"),
	"json":     compileJSON,
	"inject":   compileInject,
	"php":      compilePhp,
	"unset":    wrapped("<?php unset", "; ?>"),
	"lang":     compileLang,
	"endlang":  static("<?php echo $__env->renderTranslation(); ?>"),
	"choice":   wrapped("<?php echo app('translator')->choice", "; ?>"),
	"error":    compileError,
	"enderror": static(endError),
}

func compileJSON(_ *compileState, expression string) string {
	parts := strings.Split(stripParentheses(expression), ",")
	options := strconv.Itoa(jsonEncodingOptions)
	if len(parts) > 1 {
		options = strings.TrimSpace(parts[1])
	}
	depth := strconv.Itoa(jsonEncodingDepth)
	if len(parts) > 2 {
		depth = strings.TrimSpace(parts[2])
	}
	return "<?php echo json_encode(" + parts[0] + ", " + options + ", " + depth + ") ?>"
}

// compileInject compiles @inject('name', 'service') into a container lookup.
func compileInject(_ *compileState, expression string) string {
	segments := strings.Split(injectStrip.Replace(expression), ",")
	variable := strings.TrimSpace(segments[0])
	var service string
	if len(segments) > 1 {
		service = strings.TrimSpace(segments[1])
	}
	return "<?php $" + variable + " = app('" + service + "'); ?>"
}

// compilePhp handles the inline form @php($x = 1). A bare @php without a
// matching @endphp stays as written.
func compilePhp(_ *compileState, expression string) string {
	if expression != "" {
		return "<?php " + expression + "; ?>"
	}
	return "@php"
}

func compileLang(_ *compileState, expression string) string {
	switch {
	case expression == "":
		return "<?php $__env->startTranslation(); ?>"
	case len(expression) > 1 && expression[1] == '[':
		return "<?php $__env->startTranslation" + expression + "; ?>"
	}
	return "<?php echo app('translator')->get" + expression + "; ?>"
}

func compileError(_ *compileState, expression string) string {
	expression = stripParentheses(expression)
	return "<?php $__errorArgs = [" + expression + "];\n" +
		"$__bag = $errors->getBag($__errorArgs[1] ?? 'default');\n" +
		"if ($__bag->has($__errorArgs[0])) :\n" +
		"if (isset($message)) { $__messageOriginal = $message; }\n" +
		"$message = $__bag->first($__errorArgs[0]); ?>"
}

const endError = "<?php unset($message);\n" +
	"if (isset($__messageOriginal)) { $message = $__messageOriginal; }\n" +
	"endif;\n" +
	"unset($__errorArgs, $__bag); ?>"
