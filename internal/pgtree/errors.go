package pgtree

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedNode        = errors.New("malformed node")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrGeneration           = errors.New("content generation failed")
	ErrRetrieval            = errors.New("knowledge retrieval failed")
	ErrRetrievalUnavailable = errors.New("knowledge source not configured")
)

// nodeLabel renders a node identity for error messages.
func nodeLabel(id, title string) string {
	switch {
	case id == "" && title == "":
		return "<unnamed>"
	case id == "":
		return fmt.Sprintf("%q", title)
	case title == "":
		return fmt.Sprintf("id=%s", id)
	}
	return fmt.Sprintf("id=%s %q", id, title)
}

// MalformedNodeError reports a node missing required fields or carrying
// state inconsistent with its status.
type MalformedNodeError struct {
	NodeID string
	Title  string
	Field  string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed node %s: %s: %s", nodeLabel(e.NodeID, e.Title), e.Field, e.Reason)
}

func (e *MalformedNodeError) Is(target error) bool {
	return target == ErrMalformedNode
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	NodeID string
	Title  string
	From   Status
	To     Status
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("node %s: cannot move from %s to %s", nodeLabel(e.NodeID, e.Title), e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// GenerationError reports that content could not be produced for a node.
// The node is left in_progress.
type GenerationError struct {
	NodeID string
	Title  string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate node %s: %v", nodeLabel(e.NodeID, e.Title), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// RetrievalError reports a knowledge-source failure while reviewing a node.
// The node is left under_examination.
type RetrievalError struct {
	NodeID string
	Title  string
	Query  string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve for node %s (query %q): %v", nodeLabel(e.NodeID, e.Title), e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrieval
}
