package survey

import "vitasurvey/internal/model"

// Store accumulates answers by question id. It knows nothing about the tree or the
// filters; a re-answer replaces the previous value.
type Store struct {
	answers map[int]model.Answer
}

// NewStore creates an empty response store
func NewStore() *Store {
	return &Store{answers: make(map[int]model.Answer)}
}

// RestoreStore rebuilds a store from a snapshot taken with Snapshot
func RestoreStore(answers map[int]model.Answer) *Store {
	s := NewStore()
	for id, a := range answers {
		s.answers[id] = a.Clone()
	}
	return s
}

// Set records an answer, overwriting any earlier one
func (s *Store) Set(questionID int, a model.Answer) {
	s.answers[questionID] = a.Clone()
}

// Get returns the answer for a question; ok is false when unanswered
func (s *Store) Get(questionID int) (model.Answer, bool) {
	a, ok := s.answers[questionID]
	if !ok {
		return model.Answer{}, false
	}
	return a.Clone(), true
}

// Toggle adds optionID to a multiple choice answer, or removes it if already selected
func (s *Store) Toggle(questionID, optionID int) {
	current, ok := s.answers[questionID]
	if !ok || current.Kind != model.AnswerOptions {
		s.answers[questionID] = model.OptionsAnswer(optionID)
		return
	}
	ids := make([]int, 0, len(current.SelectedOptions)+1)
	removed := false
	for _, id := range current.SelectedOptions {
		if id == optionID {
			removed = true
			continue
		}
		ids = append(ids, id)
	}
	if !removed {
		ids = append(ids, optionID)
	}
	s.answers[questionID] = model.OptionsAnswer(ids...)
}

// IsComplete reports whether every question has a non-empty, valid answer
func (s *Store) IsComplete(questions []model.Question) bool {
	for _, q := range questions {
		a, ok := s.answers[q.ID]
		if !ok || !a.CompleteFor(q) {
			return false
		}
	}
	return true
}

// Clear drops every answer
func (s *Store) Clear() {
	s.answers = make(map[int]model.Answer)
}

// Len returns the number of recorded answers
func (s *Store) Len() int {
	return len(s.answers)
}

// Snapshot returns a copy of all recorded answers
func (s *Store) Snapshot() map[int]model.Answer {
	out := make(map[int]model.Answer, len(s.answers))
	for id, a := range s.answers {
		out[id] = a.Clone()
	}
	return out
}
