package pgtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NodeID is a node identifier on the wire. Planners emit both numbers and
// strings, so JSON numbers are accepted and kept in their literal form.
type NodeID string

func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number: %w", err)
	}
	*id = NodeID(n.String())
	return nil
}

// Spec is the nested wire form of a node, matching the planner output.
type Spec struct {
	ID                  NodeID  `json:"id" yaml:"id"`
	Title               string  `json:"title" yaml:"title"`
	ContentGuideline    string  `json:"content_guideline,omitempty" yaml:"content_guideline,omitempty"`
	Status              string  `json:"status,omitempty" yaml:"status,omitempty"`
	GeneratedContent    string  `json:"generated_content,omitempty" yaml:"generated_content,omitempty"`
	ExaminationFeedback string  `json:"examination_feedback,omitempty" yaml:"examination_feedback,omitempty"`
	Children            []*Spec `json:"children" yaml:"children,omitempty"`
}

// Build validates a nested spec and lays it out as a Tree. It fails on the
// first malformed node in pre-order.
func Build(root *Spec) (*Tree, error) {
	if root == nil {
		return nil, &MalformedNodeError{Field: "root", Reason: "missing"}
	}
	t := &Tree{byID: make(map[string]Index)}

	var add func(s *Spec) (Index, error)
	add = func(s *Spec) (Index, error) {
		if s == nil {
			return 0, &MalformedNodeError{Field: "children", Reason: "null child"}
		}
		status, err := ParseStatus(strings.TrimSpace(s.Status))
		if err != nil {
			return 0, &MalformedNodeError{NodeID: string(s.ID), Title: s.Title, Field: "status", Reason: err.Error()}
		}
		n := Node{
			ID:                  strings.TrimSpace(string(s.ID)),
			Title:               strings.TrimSpace(s.Title),
			ContentGuideline:    strings.TrimSpace(s.ContentGuideline),
			Status:              status,
			GeneratedContent:    s.GeneratedContent,
			ExaminationFeedback: s.ExaminationFeedback,
		}
		if err := checkNode(&n); err != nil {
			return 0, err
		}
		if _, dup := t.byID[n.ID]; dup {
			return 0, &MalformedNodeError{NodeID: n.ID, Title: n.Title, Field: "id", Reason: "duplicate id"}
		}

		idx := Index(len(t.nodes))
		t.nodes = append(t.nodes, n)
		t.children = append(t.children, nil)
		t.byID[n.ID] = idx

		children := make([]Index, 0, len(s.Children))
		for _, c := range s.Children {
			ci, err := add(c)
			if err != nil {
				return 0, err
			}
			children = append(children, ci)
		}
		t.children[idx] = children
		return idx, nil
	}

	if _, err := add(root); err != nil {
		return nil, err
	}
	return t, nil
}

// Spec converts the tree back into its nested wire form.
func (t *Tree) Spec() *Spec {
	if len(t.nodes) == 0 {
		return nil
	}
	var conv func(i Index) *Spec
	conv = func(i Index) *Spec {
		n := &t.nodes[i]
		s := &Spec{
			ID:                  NodeID(n.ID),
			Title:               n.Title,
			ContentGuideline:    n.ContentGuideline,
			Status:              string(n.Status),
			GeneratedContent:    n.GeneratedContent,
			ExaminationFeedback: n.ExaminationFeedback,
			Children:            make([]*Spec, 0, len(t.children[i])),
		}
		for _, c := range t.children[i] {
			s.Children = append(s.Children, conv(c))
		}
		return s
	}
	return conv(t.Root())
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Spec())
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}
	built, err := Build(&s)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// Parse decodes a JSON tree document.
func Parse(data []byte) (*Tree, error) {
	t := &Tree{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}
