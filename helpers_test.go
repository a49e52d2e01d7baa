package blade

import "testing"

func TestHelpers(t *testing.T) {
	compileCases(t, []struct{ name, in, want string }{
		{"csrf", "@csrf", "<?php echo csrf_field(); ?>"},
		{"method", "@method('PUT')", "<?php echo method_field('PUT'); ?>"},
		{"dump", "@dump($a, $b)", "<?php dump($a, $b); ?>"},
		{"dd", "@dd($a)", "<?php dd($a); ?>"},
		{"json", "@json($data)", "<?php echo json_encode($data, 15, 512) ?>"},
		{"json options", "@json($data, JSON_PRETTY_PRINT)", "<?php echo json_encode($data, JSON_PRETTY_PRINT, 512) ?>"},
		{"json depth", "@json($data, 0, 8)", "<?php echo json_encode($data, 0, 8) ?>"},
		{"inject", `@inject('metrics', 'App\Services\MetricsService')`, `<?php $metrics = app('App\Services\MetricsService'); ?>`},
		{"unset", "@unset($a)", "<?php unset($a); ?>"},
		{"lang", "@lang('messages.welcome')", "<?php echo app('translator')->get('messages.welcome'); ?>"},
		{"lang block", "@lang x @endlang", "<?php $__env->startTranslation(); ?> x <?php echo $__env->renderTranslation(); ?>"},
		{"lang replacements", "@lang(['name' => $n]) x", "<?php $__env->startTranslation(['name' => $n]); ?> x"},
		{"choice", "@choice('messages.apples', 10)", "<?php echo app('translator')->choice('messages.apples', 10); ?>"},
		{"error", "@error('email') {{ $message }} @enderror",
			"<?php $__errorArgs = ['email'];\n" +
				"$__bag = $errors->getBag($__errorArgs[1] ?? 'default');\n" +
				"if ($__bag->has($__errorArgs[0])) :\n" +
				"if (isset($message)) { $__messageOriginal = $message; }\n" +
				"$message = $__bag->first($__errorArgs[0]); ?> <?php echo e($message); ?> " +
				"<?php unset($message);\n" +
				"if (isset($__messageOriginal)) { $message = $__messageOriginal; }\n" +
				"endif;\n" +
				"unset($__errorArgs, $__bag); ?>"},
	})
}
