package outline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/patentdraft/internal/pgtree"
	"gopkg.in/yaml.v3"
)

// JSONLoader reads the planner's nested JSON tree.
type JSONLoader struct{}

func (l *JSONLoader) Load(r io.Reader, filename string) (*pgtree.Spec, error) {
	var s pgtree.Spec
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("parse json outline: %w", err)
	}
	return &s, nil
}

// YAMLLoader reads the same nested tree written as YAML.
type YAMLLoader struct{}

func (l *YAMLLoader) Load(r io.Reader, filename string) (*pgtree.Spec, error) {
	var s pgtree.Spec
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("parse yaml outline: empty document")
		}
		return nil, fmt.Errorf("parse yaml outline: %w", err)
	}
	return &s, nil
}
