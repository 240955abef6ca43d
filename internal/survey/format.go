package survey

import "vitasurvey/internal/model"

// Format converts the answers to the questions on the traversed path into the
// submission payload. Unanswered or empty answers are omitted; each question appears at
// most once, in path order. An empty payload returns ErrNothingToSubmit.
func Format(answers Answers, path []model.Question) ([]model.ResponseItem, error) {
	items := make([]model.ResponseItem, 0, len(path))
	seen := make(map[int]bool, len(path))
	for _, q := range path {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true

		a, ok := answers.Get(q.ID)
		if !ok || !a.CompleteFor(q) {
			continue
		}

		item := model.ResponseItem{
			QuestionID:   q.ID,
			ResponseType: q.Type,
		}
		switch q.Type {
		case model.QuestionTypeText:
			text := a.Text
			item.ResponseText = &text
		case model.QuestionTypeSingleChoice:
			item.SelectedOptions = []int{a.SelectedOption}
		case model.QuestionTypeMultipleChoice:
			item.SelectedOptions = append([]int(nil), a.SelectedOptions...)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNothingToSubmit
	}
	return items, nil
}
