package blade

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

var layoutBuiltins = map[string]builtinFunc{
	"extends":    compileExtends,
	"section":    compileSection,
	"parent":     compileParent,
	"yield":      wrapped("<?php echo $__env->yieldContent", "; ?>"),
	"show":       static("<?php echo $__env->yieldSection(); ?>"),
	"append":     static("<?php $__env->appendSection(); ?>"),
	"overwrite":  static("<?php $__env->stopSection(true); ?>"),
	"stop":       static("<?php $__env->stopSection(); ?>"),
	"endsection": static("<?php $__env->stopSection(); ?>"),
}

var stackBuiltins = map[string]builtinFunc{
	"stack":      wrapped("<?php echo $__env->yieldPushContent", "; ?>"),
	"push":       wrapped("<?php $__env->startPush", "; ?>"),
	"endpush":    static("<?php $__env->stopPush(); ?>"),
	"prepend":    wrapped("<?php $__env->startPrepend", "; ?>"),
	"endprepend": static("<?php $__env->stopPrepend(); ?>"),
}

// compileExtends defers rendering the parent view to the footer, so the
// sections of the child are defined before the parent yields them.
func compileExtends(st *compileState, expression string) string {
	expression = stripParentheses(expression)
	st.footer = append(st.footer, "<?php echo $__env->make("+expression+", "+definedVars+")->render(); ?>")
	return ""
}

func compileSection(st *compileState, expression string) string {
	st.lastSection = strings.Trim(expression, "()'\" ")
	return "<?php $__env->startSection" + expression + "; ?>"
}

// compileParent marks where the parent content of the open section goes.
func compileParent(st *compileState, _ string) string {
	return ParentPlaceholder(st.lastSection)
}

// ParentPlaceholder returns the marker the renderer replaces with the parent
// content of section.
func ParentPlaceholder(section string) string {
	sum := sha1.Sum([]byte(section))
	return "##parent-placeholder-" + hex.EncodeToString(sum[:]) + "##"
}
