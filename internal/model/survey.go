package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedTree is returned when the category tree from the catalog violates the model
var ErrMalformedTree = errors.New("malformed survey tree")

// Category is the top level of the questionnaire
type Category struct {
	ID            int           `json:"id" bson:"_id" yaml:"id"`
	Name          string        `json:"name" bson:"name" yaml:"name"`
	Order         int           `json:"order" bson:"order" yaml:"order"` // display sequence
	SubCategories []SubCategory `json:"subCategories" bson:"subCategories" yaml:"subCategories"`
}

// SubCategory groups the questions shown on one wizard page
type SubCategory struct {
	ID        int        `json:"id" bson:"id" yaml:"id"`
	Name      string     `json:"name" bson:"name" yaml:"name"`
	Questions []Question `json:"questions" bson:"questions" yaml:"questions"`
}

// Tree is an ordered category tree. The full tree is built once with NewTree and never
// modified; filtered views are new Tree values sharing the same question data.
type Tree struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// NewTree validates categories and returns them as a tree sorted by Order (ties by ID).
func NewTree(categories []Category) (Tree, error) {
	cats := make([]Category, len(categories))
	copy(cats, categories)
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Order != cats[j].Order {
			return cats[i].Order < cats[j].Order
		}
		return cats[i].ID < cats[j].ID
	})

	categoryIDs := make(map[int]bool)
	subIDs := make(map[int]bool)
	questionIDs := make(map[int]bool)
	for _, c := range cats {
		if categoryIDs[c.ID] {
			return Tree{}, fmt.Errorf("%w: duplicate category %d", ErrMalformedTree, c.ID)
		}
		categoryIDs[c.ID] = true

		for _, sub := range c.SubCategories {
			if subIDs[sub.ID] {
				return Tree{}, fmt.Errorf("%w: duplicate subcategory %d", ErrMalformedTree, sub.ID)
			}
			subIDs[sub.ID] = true

			for _, q := range sub.Questions {
				if questionIDs[q.ID] {
					return Tree{}, fmt.Errorf("%w: duplicate question %d", ErrMalformedTree, q.ID)
				}
				questionIDs[q.ID] = true
				if err := validateQuestion(q); err != nil {
					return Tree{}, fmt.Errorf("%w: subcategory %d: %v", ErrMalformedTree, sub.ID, err)
				}
			}
		}
	}
	return Tree{Categories: cats}, nil
}

func validateQuestion(q Question) error {
	if !q.Type.Valid() {
		return fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
	}
	if q.Type == QuestionTypeText && len(q.Options) > 0 {
		return fmt.Errorf("text question %d has options", q.ID)
	}
	if q.Type.IsChoice() && len(q.Options) == 0 {
		return fmt.Errorf("choice question %d has no options", q.ID)
	}
	seen := make(map[int]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o.ID] {
			return fmt.Errorf("question %d has duplicate option %d", q.ID, o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// Empty reports whether the tree has no category
func (t Tree) Empty() bool {
	return len(t.Categories) == 0
}

// Version is a content hash of the tree. Two trees with the same categories, pages and
// questions in the same order share a version.
func (t Tree) Version() string {
	data, err := json.Marshal(t.Categories)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// SubCategory finds a subcategory anywhere in the tree
func (t Tree) SubCategory(id int) (SubCategory, bool) {
	for _, c := range t.Categories {
		for _, sub := range c.SubCategories {
			if sub.ID == id {
				return sub, true
			}
		}
	}
	return SubCategory{}, false
}

// Question finds a question anywhere in the tree
func (t Tree) Question(id int) (Question, bool) {
	for _, c := range t.Categories {
		for _, sub := range c.SubCategories {
			for _, q := range sub.Questions {
				if q.ID == id {
					return q, true
				}
			}
		}
	}
	return Question{}, false
}

// SubCategoryCount returns the number of subcategories across all categories
func (t Tree) SubCategoryCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.SubCategories)
	}
	return n
}
