package blade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayouts(t *testing.T) {
	compileCases(t, []struct{ name, in, want string }{
		{"yield", "@yield('title', 'Home')", "<?php echo $__env->yieldContent('title', 'Home'); ?>"},
		{"section", "@section('title', 'Home')", "<?php $__env->startSection('title', 'Home'); ?>"},
		{"show", "@section('sidebar') @parent @show",
			"<?php $__env->startSection('sidebar'); ?> ##parent-placeholder-19bd1503d9bad449304cc6b4e977b74bac6cc771## <?php echo $__env->yieldSection(); ?>"},
		{"stop", "@stop", "<?php $__env->stopSection(); ?>"},
		{"endsection", "@endsection", "<?php $__env->stopSection(); ?>"},
		{"append", "@append", "<?php $__env->appendSection(); ?>"},
		{"overwrite", "@overwrite", "<?php $__env->stopSection(true); ?>"},
		{"parent outside section", "@parent", "##parent-placeholder-da39a3ee5e6b4b0d3255bfef95601890afd80709##"},
		{"stack", "@stack('scripts')", "<?php echo $__env->yieldPushContent('scripts'); ?>"},
		{"push", "@push('scripts') <script></script> @endpush",
			"<?php $__env->startPush('scripts'); ?> <script></script> <?php $__env->stopPush(); ?>"},
		{"prepend", "@prepend('scripts') x @endprepend",
			"<?php $__env->startPrepend('scripts'); ?> x <?php $__env->stopPrepend(); ?>"},
	})
}

func TestParentPlaceholder(t *testing.T) {
	assert.Equal(t, "##parent-placeholder-040f06fd774092478d450774f5ba30c5da78acc8##", ParentPlaceholder("content"))

	c := newTestCompiler(t)
	got := c.CompileString(`@section("content") @parent @endsection`)
	assert.Contains(t, got, ParentPlaceholder("content"))
}
