package dialogue

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphIntegrity matches every *GraphIntegrityError.
	ErrGraphIntegrity = errors.New("dialogue: graph integrity violated")
	// ErrInvalidTransition matches every *InvalidTransitionError.
	ErrInvalidTransition = errors.New("dialogue: invalid transition")
)

// GraphIntegrityError reports broken content: a missing node, a dangling
// option target or a malformed script. It is never recoverable at runtime.
type GraphIntegrityError struct {
	NodeID NodeID // Node where the defect was found
	Ref    NodeID // Missing target, if any
	Reason string
}

func (e *GraphIntegrityError) Error() string {
	msg := fmt.Sprintf("dialogue: graph integrity violated: %s", e.Reason)
	if e.NodeID != "" {
		msg += fmt.Sprintf(" (node %q", e.NodeID)
		if e.Ref != "" {
			msg += fmt.Sprintf(" -> %q", e.Ref)
		}
		msg += ")"
	}
	return msg
}

func (e *GraphIntegrityError) Unwrap() error {
	return ErrGraphIntegrity
}

// InvalidTransitionError reports a choice that does not belong to the
// current node, usually a stale button left over from before a reset.
// The engine state is untouched when it is returned.
type InvalidTransitionError struct {
	NodeID NodeID
	Option Option
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "option is not offered"
	}
	return fmt.Sprintf("dialogue: invalid transition at node %q: %s (%q -> %q)", e.NodeID, reason, e.Option.Text, e.Option.Next)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
