package pgtree

import (
	"fmt"
	"strings"
)

// Index addresses a node inside its Tree.
type Index int

// Node is one section of a generated document. Values returned by Tree are
// copies; state changes go through the Tree transition methods.
type Node struct {
	ID                  string
	Title               string
	ContentGuideline    string
	Status              Status
	GeneratedContent    string
	ExaminationFeedback string
}

// Tree is an arena of draft sections. Node 0 is the root. Children are held
// as index lists and no node refers back to its parent.
type Tree struct {
	nodes    []Node
	children [][]Index
	byID     map[string]Index
}

// Root returns the index of the root node.
func (t *Tree) Root() Index { return 0 }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node at i.
func (t *Tree) Node(i Index) Node {
	return t.nodes[i]
}

// Children returns the child indexes of i in document order.
func (t *Tree) Children(i Index) []Index {
	out := make([]Index, len(t.children[i]))
	copy(out, t.children[i])
	return out
}

// Lookup finds a node by its id.
func (t *Tree) Lookup(id string) (Index, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// Walk visits every node in pre-order, parents before children and children
// in document order. path holds the ancestors of i with the root first; it is
// reused between calls and must not be retained. A non-nil error from fn
// stops the walk and is returned as is.
func (t *Tree) Walk(fn func(i Index, path []Index) error) error {
	if len(t.nodes) == 0 {
		return nil
	}
	path := make([]Index, 0, 8)
	var visit func(i Index) error
	visit = func(i Index) error {
		if err := fn(i, path); err != nil {
			return err
		}
		path = append(path, i)
		for _, c := range t.children[i] {
			if err := visit(c); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		return nil
	}
	return visit(t.Root())
}

// Titles maps an ancestor path to section titles.
func (t *Tree) Titles(path []Index) []string {
	out := make([]string, 0, len(path))
	for _, i := range path {
		out = append(out, t.nodes[i].Title)
	}
	return out
}

// Counts returns how many nodes sit in each status.
func (t *Tree) Counts() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, n := range t.nodes {
		counts[n.Status]++
	}
	return counts
}

// Leaves returns copies of the nodes without children in document order.
func (t *Tree) Leaves() []Node {
	var out []Node
	t.Walk(func(i Index, _ []Index) error {
		if len(t.children[i]) == 0 {
			out = append(out, t.Node(i))
		}
		return nil
	})
	return out
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes:    make([]Node, len(t.nodes)),
		children: make([][]Index, len(t.children)),
		byID:     make(map[string]Index, len(t.byID)),
	}
	copy(c.nodes, t.nodes)
	for i, kids := range t.children {
		c.children[i] = append([]Index(nil), kids...)
	}
	for id, i := range t.byID {
		c.byID[id] = i
	}
	return c
}

func (t *Tree) transitionError(i Index, to Status, reason string) error {
	n := &t.nodes[i]
	return &TransitionError{NodeID: n.ID, Title: n.Title, From: n.Status, To: to, Reason: reason}
}

func (t *Tree) move(i Index, to Status) error {
	if !CanTransition(t.nodes[i].Status, to) {
		return t.transitionError(i, to, "")
	}
	t.nodes[i].Status = to
	return nil
}

// BeginWriting marks a pending node as in_progress.
func (t *Tree) BeginWriting(i Index) error {
	return t.move(i, StatusInProgress)
}

// CompleteWriting stores generated content and marks the node completed.
// The node must be in_progress and content must not be blank.
func (t *Tree) CompleteWriting(i Index, content string) error {
	if strings.TrimSpace(content) == "" {
		return t.transitionError(i, StatusCompleted, "generated content is empty")
	}
	if err := t.move(i, StatusCompleted); err != nil {
		return err
	}
	t.nodes[i].GeneratedContent = content
	return nil
}

// MarkForReview flags a completed node for explicit examination.
func (t *Tree) MarkForReview(i Index) error {
	return t.move(i, StatusNeedsReview)
}

// BeginExamination moves a completed or needs_review node under examination.
func (t *Tree) BeginExamination(i Index) error {
	return t.move(i, StatusUnderExamination)
}

// FinishExamination records the examiner verdict and its feedback report.
func (t *Tree) FinishExamination(i Index, verdict Status, feedback string) error {
	if !verdict.Terminal() {
		return t.transitionError(i, verdict, "not an examiner verdict")
	}
	if strings.TrimSpace(feedback) == "" {
		return t.transitionError(i, verdict, "examination feedback is empty")
	}
	if err := t.move(i, verdict); err != nil {
		return err
	}
	t.nodes[i].ExaminationFeedback = feedback
	return nil
}

// checkNode validates the state a node was loaded with.
func checkNode(n *Node) error {
	malformed := func(field, reason string) error {
		return &MalformedNodeError{NodeID: n.ID, Title: n.Title, Field: field, Reason: reason}
	}
	if strings.TrimSpace(n.ID) == "" {
		return malformed("id", "missing")
	}
	if strings.TrimSpace(n.Title) == "" {
		return malformed("title", "missing")
	}
	if !n.Status.Valid() {
		return malformed("status", fmt.Sprintf("unknown status %q", n.Status))
	}
	hasContent := strings.TrimSpace(n.GeneratedContent) != ""
	if hasContent != n.Status.Written() {
		if hasContent {
			return malformed("generated_content", fmt.Sprintf("set while status is %s", n.Status))
		}
		return malformed("generated_content", fmt.Sprintf("missing while status is %s", n.Status))
	}
	hasFeedback := strings.TrimSpace(n.ExaminationFeedback) != ""
	if hasFeedback != n.Status.Terminal() {
		if hasFeedback {
			return malformed("examination_feedback", fmt.Sprintf("set while status is %s", n.Status))
		}
		return malformed("examination_feedback", fmt.Sprintf("missing while status is %s", n.Status))
	}
	return nil
}
