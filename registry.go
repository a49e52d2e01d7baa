package blade

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// DirectiveHandler compiles the argument text of a custom directive. The
// expression has one layer of parentheses removed and is trimmed.
type DirectiveHandler func(expression string) string

// Condition is a render time predicate registered through Registry.If.
type Condition func(args ...any) bool

// Extension rewrites a whole markup token before directives are compiled.
type Extension func(value string, c *Compiler) string

var reDirectiveName = regexp.MustCompile(`^\w+(?:::\w+)?$`)

// conditionCheck is the render time dispatcher called by compiled custom conditions.
const conditionCheck = `\Illuminate\Support\Facades\Blade::check`

// Registry holds custom directives, conditions and extensions. One registry
// can be shared by several compilers; share it deliberately.
type Registry struct {
	mu         sync.RWMutex
	directives map[string]DirectiveHandler
	conditions map[string]Condition
	extensions []Extension
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		directives: map[string]DirectiveHandler{},
		conditions: map[string]Condition{},
	}
}

// Directive registers a custom directive handler. Names may be namespaced
// once with "::", e.g. "admin::menu".
func (r *Registry) Directive(name string, handler DirectiveHandler) error {
	if !reDirectiveName.MatchString(name) {
		return fmt.Errorf(`%w: "%s", directive names must only contain alphanumeric characters and underscores`, ErrInvalidDirectiveName, name)
	}
	r.mu.Lock()
	r.directives[name] = handler
	r.mu.Unlock()
	return nil
}

// If registers a condition and the directives that test it: @name, @elsename,
// @unlessname and @endname. The check runs at render time through Check.
func (r *Registry) If(name string, condition Condition) error {
	if !reDirectiveName.MatchString(name) {
		return fmt.Errorf(`%w: "%s"`, ErrInvalidDirectiveName, name)
	}
	r.mu.Lock()
	r.conditions[name] = condition
	r.mu.Unlock()

	check := func(keyword string) DirectiveHandler {
		return func(expression string) string {
			if expression != "" {
				return fmt.Sprintf("<?php %s (%s('%s', %s)): ?>", keyword, conditionCheck, name, expression)
			}
			return fmt.Sprintf("<?php %s (%s('%s')): ?>", keyword, conditionCheck, name)
		}
	}
	if err := r.Directive(name, check("if")); err != nil {
		return err
	}
	if err := r.Directive("else"+name, check("elseif")); err != nil {
		return err
	}
	err := r.Directive("unless"+name, func(expression string) string {
		if expression != "" {
			return fmt.Sprintf("<?php if (! %s('%s', %s)): ?>", conditionCheck, name, expression)
		}
		return fmt.Sprintf("<?php if (! %s('%s')): ?>", conditionCheck, name)
	})
	if err != nil {
		return err
	}
	return r.Directive("end"+name, func(string) string {
		return "<?php endif; ?>"
	})
}

// Check evaluates a registered condition.
func (r *Registry) Check(name string, args ...any) (bool, error) {
	r.mu.RLock()
	condition, ok := r.conditions[name]
	r.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf(`%w "%s"`, ErrUnknownCondition, name)
	}
	return condition(args...), nil
}

// Extend appends a whole token transformation. Extensions run in
// registration order.
func (r *Registry) Extend(extension Extension) {
	r.mu.Lock()
	r.extensions = append(r.extensions, extension)
	r.mu.Unlock()
}

// Component registers @alias / @endalias for a component view. The alias
// defaults to the last dot separated segment of path.
func (r *Registry) Component(path string, alias string) error {
	if alias == "" {
		alias = lastSegment(path)
	}
	err := r.Directive(alias, func(expression string) string {
		if expression != "" {
			return fmt.Sprintf("<?php $__env->startComponent('%s', %s); ?>", path, expression)
		}
		return fmt.Sprintf("<?php $__env->startComponent('%s'); ?>", path)
	})
	if err != nil {
		return err
	}
	return r.Directive("end"+alias, func(string) string {
		return "<?php echo $__env->renderComponent(); ?>"
	})
}

// Include registers @alias as a shortcut for including the view at path.
func (r *Registry) Include(path string, alias string) error {
	if alias == "" {
		alias = lastSegment(path)
	}
	return r.Directive(alias, func(expression string) string {
		expression = stripParentheses(expression)
		if expression == "" {
			expression = "[]"
		}
		return fmt.Sprintf("<?php echo $__env->make('%s', %s, %s)->render(); ?>", path, expression, definedVars)
	})
}

// Directives returns the names of the registered custom directives, sorted.
func (r *Registry) Directives() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.directives))
	for name := range r.directives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Conditions returns the names of the registered conditions, sorted.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.conditions))
	for name := range r.conditions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Extensions returns a copy of the registered extensions.
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.extensions)
}

func (r *Registry) directive(name string) (DirectiveHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.directives[name]
	return handler, ok
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
