package pgtree

import "fmt"

// Status is the lifecycle state of a draft section.
type Status string

const (
	StatusPending          Status = "pending"
	StatusInProgress       Status = "in_progress"
	StatusCompleted        Status = "completed"
	StatusNeedsReview      Status = "needs_review"
	StatusUnderExamination Status = "under_examination"
	StatusNeedsRevision    Status = "needs_revision"
	StatusApproved         Status = "approved_by_examiner"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusNeedsReview,
	StatusUnderExamination,
	StatusNeedsRevision,
	StatusApproved,
}

// rank orders statuses along the lifecycle. Statuses sharing a rank are
// alternatives at the same stage. Unknown statuses rank -1.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted, StatusNeedsReview:
		return 2
	case StatusUnderExamination:
		return 3
	case StatusNeedsRevision, StatusApproved:
		return 4
	}
	return -1
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Written reports whether content has been generated for a node in this status.
func (s Status) Written() bool {
	return s.rank() >= StatusCompleted.rank()
}

// Terminal reports whether s is an examiner verdict.
func (s Status) Terminal() bool {
	return s == StatusNeedsRevision || s == StatusApproved
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a wire string into a Status. The empty string is
// treated as pending, which is how a planner emits fresh nodes.
func ParseStatus(v string) (Status, error) {
	if v == "" {
		return StatusPending, nil
	}
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// transitions lists every allowed status change.
var transitions = map[Status][]Status{
	StatusPending:          {StatusInProgress},
	StatusInProgress:       {StatusCompleted},
	StatusCompleted:        {StatusNeedsReview, StatusUnderExamination},
	StatusNeedsReview:      {StatusUnderExamination},
	StatusUnderExamination: {StatusNeedsRevision, StatusApproved},
}

// CanTransition reports whether a node may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
