package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vitasurvey/internal/model"
)

// Question and option ids of Catalog
const (
	QuestionAge       = 1
	QuestionSymptoms  = 2
	QuestionSleep     = 3
	QuestionDiet      = 4
	QuestionExercise  = 5
	QuestionWomen     = 6
	QuestionMen       = 7
	OptionInsomnia    = 21
	OptionIndigestion = 22
)

// Catalog is a three category health survey: one page of basics, a symptoms category
// with two follow-up pages and a lifestyle category with gendered pages.
func Catalog(t testing.TB) model.Tree {
	t.Helper()
	text := func(id int) model.Question {
		return model.Question{ID: id, Text: "Tell us more", Type: model.QuestionTypeText}
	}
	tree, err := model.NewTree([]model.Category{
		{ID: 1, Name: "Basics", Order: 1, SubCategories: []model.SubCategory{
			{ID: 10, Name: "About you", Questions: []model.Question{text(QuestionAge)}},
		}},
		{ID: 2, Name: "Symptoms", Order: 2, SubCategories: []model.SubCategory{
			{ID: 20, Name: "Main symptoms", Questions: []model.Question{{
				ID: QuestionSymptoms, Text: "What bothers you?", Type: model.QuestionTypeMultipleChoice,
				Options: []model.Option{{ID: OptionInsomnia, Text: "Insomnia"}, {ID: OptionIndigestion, Text: "Indigestion"}},
			}}},
			{ID: 21, Name: "Insomnia care", Questions: []model.Question{text(QuestionSleep)}},
			{ID: 22, Name: "Indigestion care", Questions: []model.Question{text(QuestionDiet)}},
		}},
		{ID: 3, Name: "Lifestyle", Order: 3, SubCategories: []model.SubCategory{
			{ID: 30, Name: "Exercise", Questions: []model.Question{text(QuestionExercise)}},
			{ID: 31, Name: "Women's Health", Questions: []model.Question{text(QuestionWomen)}},
			{ID: 32, Name: "Men's Health", Questions: []model.Question{text(QuestionMen)}},
		}},
	})
	require.NoError(t, err)
	return tree
}
