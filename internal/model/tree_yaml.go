package model

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeTreeYAML reads a category tree fixture and validates it with NewTree
func DecodeTreeYAML(r io.Reader) (Tree, error) {
	var doc Tree
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Tree{}, fmt.Errorf("decode tree: %w", err)
	}
	return NewTree(doc.Categories)
}
