package behavior

// Status is the outcome class of one evaluation step.
type Status int

const (
	StatusSuccess Status = iota
	StatusRunning
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRunning:
		return "running"
	case StatusFailure:
		return "failure"
	}
	return "unknown"
}

// ActionRef identifies a leaf node as (collection, index) into the node
// table. The zero value is NOT idle — use NoAction.
type ActionRef struct {
	Collection int
	Index      int
}

// NoAction is the idle sentinel action identity.
var NoAction = ActionRef{Collection: -1, Index: -1}

func (r ActionRef) IsNone() bool { return r.Collection < 0 || r.Index < 0 }

// Result is the discriminated union returned by candidates and leaves.
// A nil *Result means "not applicable" — the selector falls through to the
// next candidate. A non-nil Result is either a terminal Leaf outcome or a
// Delegate to another action carrying a nested result, resolved by a
// depth-bounded unwrap loop in the behavior system.
type Result struct {
	Status  Status
	Action  ActionRef      // leaf identity; set for Running results
	Payload map[string]any // becomes the entity's meta on switch
	Inner   *Result        // non-nil ⇒ delegation to Action with nested result
}

// Success returns a terminal success carrying an optional payload.
func Success(payload map[string]any) *Result {
	return &Result{Status: StatusSuccess, Action: NoAction, Payload: payload}
}

// Running returns an in-progress result bound to the given leaf identity.
func Running(action ActionRef, payload map[string]any) *Result {
	return &Result{Status: StatusRunning, Action: action, Payload: payload}
}

// Fail returns a terminal failure. Failures are values, never panics.
func Fail() *Result {
	return &Result{Status: StatusFailure, Action: NoAction}
}

// Delegate wraps a nested result under another action's identity.
func Delegate(action ActionRef, inner *Result) *Result {
	return &Result{Status: StatusRunning, Action: action, Inner: inner}
}

// maxDelegateDepth bounds the unwrap loop. Deeper chains are treated as a
// defect and resolved to Failure.
const maxDelegateDepth = 8

// unwrap follows delegation to the innermost leaf result. ok=false when the
// chain exceeds the depth bound.
func unwrap(r *Result) (innermost *Result, ok bool) {
	depth := 0
	for r.Inner != nil {
		depth++
		if depth > maxDelegateDepth {
			return r, false
		}
		r = r.Inner
	}
	return r, true
}
