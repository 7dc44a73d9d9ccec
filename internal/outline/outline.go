package outline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/patentdraft/internal/pgtree"
)

// Loader converts an outline document into a nested draft spec.
type Loader interface {
	Load(r io.Reader, filename string) (*pgtree.Spec, error)
}

// SupportedExtensions lists outline formats this service can read.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".yaml":     true,
	".yml":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".csv":      true,
	".txt":      true,
}

// ForFile returns the loader for a filename.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONLoader{}, nil
	case ".yaml", ".yml":
		return &YAMLLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".txt":
		return &TextLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported outline extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Read loads an outline of any supported format and builds its tree.
// Nodes without an id get a hierarchical one.
func Read(r io.Reader, filename string) (*pgtree.Tree, error) {
	l, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	spec, err := l.Load(r, filename)
	if err != nil {
		return nil, err
	}
	AssignIDs(spec)
	return pgtree.Build(spec)
}

// ReadFile is Read on a file path.
func ReadFile(path string) (*pgtree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// AssignIDs fills missing ids: the root becomes "0", its children "1",
// "2", ... and deeper nodes "1.1", "1.2", ...
func AssignIDs(root *pgtree.Spec) {
	if root == nil {
		return
	}
	if root.ID == "" {
		root.ID = "0"
	}
	var assign func(s *pgtree.Spec, prefix string)
	assign = func(s *pgtree.Spec, prefix string) {
		for i, c := range s.Children {
			if c == nil {
				continue
			}
			id := strconv.Itoa(i + 1)
			if prefix != "" {
				id = prefix + "." + id
			}
			if c.ID == "" {
				c.ID = pgtree.NodeID(id)
			}
			assign(c, id)
		}
	}
	assign(root, "")
}

// docTitle strips the extension from a filename.
func docTitle(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// headingStack nests sections by heading level as they are encountered in
// document order. Body text accumulates into the guideline of the most
// recent section.
type headingStack struct {
	root    *pgtree.Spec
	stack   []stackEntry
	pending strings.Builder
}

type stackEntry struct {
	node  *pgtree.Spec
	level int
}

func newHeadingStack(title string) *headingStack {
	root := &pgtree.Spec{Title: title}
	return &headingStack{root: root, stack: []stackEntry{{node: root, level: 0}}}
}

func (h *headingStack) heading(level int, title string) {
	h.flush()
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	n := &pgtree.Spec{Title: title}
	for len(h.stack) > 1 && h.stack[len(h.stack)-1].level >= level {
		h.stack = h.stack[:len(h.stack)-1]
	}
	parent := h.stack[len(h.stack)-1].node
	parent.Children = append(parent.Children, n)
	h.stack = append(h.stack, stackEntry{node: n, level: level})
}

func (h *headingStack) text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if h.pending.Len() > 0 {
		h.pending.WriteString("\n\n")
	}
	h.pending.WriteString(t)
}

func (h *headingStack) flush() {
	t := strings.TrimSpace(h.pending.String())
	h.pending.Reset()
	if t == "" {
		return
	}
	top := h.stack[len(h.stack)-1].node
	if top.ContentGuideline != "" {
		top.ContentGuideline += "\n\n" + t
	} else {
		top.ContentGuideline = t
	}
}

// spec finishes the outline. A document with a single top-level heading and
// no preamble uses that heading as its root.
func (h *headingStack) spec() *pgtree.Spec {
	h.flush()
	if len(h.root.Children) == 1 && h.root.ContentGuideline == "" {
		return h.root.Children[0]
	}
	return h.root
}
