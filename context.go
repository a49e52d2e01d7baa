package blade

// compileState is the mutable state of a single CompileString call.
type compileState struct {
	// footer holds output appended after the body, rendered last in first out
	footer []string
	// rawBlocks holds the protected regions, referenced by index from placeholders
	rawBlocks []string
	// lastSection is the name of the most recently opened section, used by @parent
	lastSection string
	// forElseCounter numbers the $__empty_N flags of nested @forelse loops
	forElseCounter int
	// firstCaseInSwitch is set by @switch so the first @case continues its code block
	firstCaseInSwitch bool
}

func newCompileState() *compileState {
	return &compileState{firstCaseInSwitch: true}
}
