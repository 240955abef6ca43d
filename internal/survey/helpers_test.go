package survey

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vitasurvey/internal/model"
)

const (
	qName        = 100
	qGender      = 101
	qMainSymptom = 200
	qHeadache    = 210
	qJoint       = 220
	qFatigue     = 230
	qAdditional  = 240
	qExercise    = 300
	qWomen       = 310
	qMen         = 320

	optFemale   = 1001
	optMale     = 1002
	optHeadache = 2001
	optFatigue  = 2002
	optInsomnia = 2003
)

func textQ(id int) model.Question {
	return model.Question{ID: id, Text: "question", Type: model.QuestionTypeText}
}

func singleQ(id int, opts ...model.Option) model.Question {
	return model.Question{ID: id, Text: "question", Type: model.QuestionTypeSingleChoice, Options: opts}
}

func multiQ(id int, opts ...model.Option) model.Question {
	return model.Question{ID: id, Text: "question", Type: model.QuestionTypeMultipleChoice, Options: opts}
}

// healthTree mirrors the stock survey: basic info, symptoms, lifestyle
func healthTree(t *testing.T) model.Tree {
	t.Helper()
	tree, err := model.NewTree([]model.Category{
		{ID: 3, Name: "3. Lifestyle", Order: 3, SubCategories: []model.SubCategory{
			{ID: 30, Name: "Exercise", Questions: []model.Question{
				singleQ(qExercise, model.Option{ID: 3001, Text: "daily"}, model.Option{ID: 3002, Text: "rarely"}),
			}},
			{ID: 31, Name: "Women's Health", Questions: []model.Question{textQ(qWomen)}},
			{ID: 32, Name: "Men's Health", Questions: []model.Question{textQ(qMen)}},
		}},
		{ID: 1, Name: "1. Basic information", Order: 1, SubCategories: []model.SubCategory{
			{ID: 10, Name: "Profile", Questions: []model.Question{
				textQ(qName),
				singleQ(qGender, model.Option{ID: optFemale, Text: "Female"}, model.Option{ID: optMale, Text: "Male"}),
			}},
		}},
		{ID: 2, Name: "2. Symptoms", Order: 2, SubCategories: []model.SubCategory{
			{ID: 20, Name: "Main symptoms", Questions: []model.Question{
				multiQ(qMainSymptom,
					model.Option{ID: optHeadache, Text: "Headache"},
					model.Option{ID: optFatigue, Text: "Fatigue"},
					model.Option{ID: optInsomnia, Text: "Insomnia"}),
			}},
			{ID: 21, Name: "Headache relief", Questions: []model.Question{
				singleQ(qHeadache, model.Option{ID: 2101, Text: "yes"}, model.Option{ID: 2102, Text: "no"}),
			}},
			{ID: 22, Name: "Joint care", Questions: []model.Question{textQ(qJoint)}},
			{ID: 23, Name: "Fatigue recovery", Questions: []model.Question{textQ(qFatigue)}},
			{ID: 24, Name: "Additional symptoms", Questions: []model.Question{textQ(qAdditional)}},
		}},
	})
	require.NoError(t, err)
	return tree
}

func testRules() Rules {
	r := DefaultRules()
	r.GenderQuestionID = qGender
	return r
}

// visibleSubs flattens the subcategory ids of a tree in display order
func visibleSubs(tree model.Tree) []int {
	var ids []int
	for _, c := range tree.Categories {
		for _, sub := range c.SubCategories {
			ids = append(ids, sub.ID)
		}
	}
	return ids
}

// answerAll fills every question of sub with a valid answer
func answerAll(t *testing.T, s *Session, sub model.SubCategory) {
	t.Helper()
	for _, q := range sub.Questions {
		var a model.Answer
		switch q.Type {
		case model.QuestionTypeText:
			a = model.TextAnswer("fine")
		case model.QuestionTypeSingleChoice:
			a = model.OptionAnswer(q.Options[0].ID)
		case model.QuestionTypeMultipleChoice:
			a = model.OptionsAnswer(q.Options[0].ID)
		}
		if _, done := s.store.Get(q.ID); done {
			continue
		}
		require.NoError(t, s.Answer(q.ID, a))
	}
}

type recordingSubmitter struct {
	calls    int
	payloads [][]model.ResponseItem
	err      error
}

func (r *recordingSubmitter) Submit(_ context.Context, responses []model.ResponseItem) error {
	r.calls++
	r.payloads = append(r.payloads, responses)
	return r.err
}
