package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTree_SortsByOrder(t *testing.T) {
	tree, err := NewTree([]Category{
		{ID: 3, Name: "third", Order: 2},
		{ID: 1, Name: "first", Order: 1},
		{ID: 2, Name: "second", Order: 2},
	})

	require.NoError(t, err)
	var ids []int
	for _, c := range tree.Categories {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestNewTree_Validation(t *testing.T) {
	single := func(opts ...Option) Question {
		return Question{ID: 1, Type: QuestionTypeSingleChoice, Options: opts}
	}
	tests := []struct {
		name string
		q    []Question
		want string
	}{
		{"unknown type", []Question{{ID: 1, Type: "SCALE"}}, "unknown type"},
		{"text with options", []Question{{ID: 1, Type: QuestionTypeText, Options: []Option{{ID: 1}}}}, "has options"},
		{"choice without options", []Question{single()}, "no options"},
		{"duplicate option", []Question{single(Option{ID: 1}, Option{ID: 1})}, "duplicate option"},
		{"duplicate question", []Question{{ID: 1, Type: QuestionTypeText}, {ID: 1, Type: QuestionTypeText}}, "duplicate question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree([]Category{{ID: 1, SubCategories: []SubCategory{{ID: 1, Questions: tt.q}}}})
			require.ErrorIs(t, err, ErrMalformedTree)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewTree_DuplicateSubCategory(t *testing.T) {
	_, err := NewTree([]Category{
		{ID: 1, SubCategories: []SubCategory{{ID: 5}}},
		{ID: 2, SubCategories: []SubCategory{{ID: 5}}},
	})
	assert.ErrorIs(t, err, ErrMalformedTree)
}

func TestTree_Lookups(t *testing.T) {
	tree, err := NewTree([]Category{
		{ID: 1, SubCategories: []SubCategory{
			{ID: 10, Questions: []Question{{ID: 100, Type: QuestionTypeText}}},
			{ID: 11},
		}},
	})
	require.NoError(t, err)

	q, ok := tree.Question(100)
	assert.True(t, ok)
	assert.Equal(t, QuestionTypeText, q.Type)
	_, ok = tree.Question(101)
	assert.False(t, ok)
	_, ok = tree.SubCategory(11)
	assert.True(t, ok)
	assert.Equal(t, 2, tree.SubCategoryCount())
}

func TestTree_Version(t *testing.T) {
	build := func(name string) Tree {
		tree, err := NewTree([]Category{
			{ID: 1, Name: "Basics", SubCategories: []SubCategory{
				{ID: 10, Name: name, Questions: []Question{{ID: 100, Type: QuestionTypeText}}},
			}},
		})
		require.NoError(t, err)
		return tree
	}

	a, b := build("About you"), build("About you")
	assert.NotEmpty(t, a.Version())
	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), build("Renamed").Version())
}

func TestDecodeTreeYAML(t *testing.T) {
	doc := `
categories:
  - id: 2
    name: 2. Symptoms
    order: 2
    subCategories:
      - id: 20
        name: Main symptoms
        questions:
          - id: 200
            text: Which symptoms bother you?
            type: MULTIPLE_CHOICE
            options:
              - {id: 1, text: Headache}
              - {id: 2, text: Fatigue}
  - id: 1
    name: 1. Basic information
    order: 1
    subCategories:
      - id: 10
        name: Profile
        questions:
          - {id: 100, text: Your name, type: TEXT}
`
	tree, err := DecodeTreeYAML(strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, tree.Categories, 2)
	assert.Equal(t, "1. Basic information", tree.Categories[0].Name)
	q, ok := tree.Question(200)
	require.True(t, ok)
	assert.Equal(t, "Fatigue", q.Options[1].Text)
}

func TestDecodeTreeYAML_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeTreeYAML(strings.NewReader("categories:\n  - id: 1\n    title: nope\n"))
	assert.Error(t, err)
}
