package getter

import "errors"

var (
	// ErrRuleContextRequired indicates a collection property evaluated
	// without the rule that owns the managed collection.
	ErrRuleContextRequired = errors.New("rule context required")

	// ErrMissingAncestor indicates an ancestor needed by the property could
	// not be resolved.
	ErrMissingAncestor = errors.New("missing ancestor")

	// ErrNoHandler indicates a catalog property without an algorithm.
	ErrNoHandler = errors.New("no handler registered")

	errPanicked = errors.New("panic in subtree fetch")
)
