package survey

import (
	"context"
	"fmt"

	"vitasurvey/internal/model"
)

// Submitter delivers a finished survey to the submission service
type Submitter interface {
	Submit(ctx context.Context, responses []model.ResponseItem) error
}

// SubmitterFunc adapts a function to Submitter
type SubmitterFunc func(ctx context.Context, responses []model.ResponseItem) error

// Submit calls f
func (f SubmitterFunc) Submit(ctx context.Context, responses []model.ResponseItem) error {
	return f(ctx, responses)
}

// View is what the caller renders for the current step
type View struct {
	State            State                `json:"state"`
	Position         Position             `json:"position"`
	CategoryID       int                  `json:"categoryId"`
	CategoryName     string               `json:"categoryName"`
	SubCategory      model.SubCategory    `json:"subCategory"`
	Answers          map[int]model.Answer `json:"answers"`
	CategoryCount    int                  `json:"categoryCount"`
	SubCategoryCount int                  `json:"subCategoryCount"` // in the current category
	IsFirst          bool                 `json:"isFirst"`
	IsLast           bool                 `json:"isLast"`
	CanAdvance       bool                 `json:"canAdvance"`
}

// Session is one run through the survey. It owns the response store and the cursor;
// nothing about it is shared with other sessions.
type Session struct {
	tree       model.Tree
	filter     Filter
	store      *Store
	nav        Navigator
	visited    []int
	submitting bool
}

// NewSession creates an uninitialized session over a validated tree
func NewSession(tree model.Tree, filter Filter) *Session {
	return &Session{
		tree:   tree,
		filter: filter,
		store:  NewStore(),
	}
}

// RestoreSession rebuilds a session from a snapshot. A snapshot saved while submitting
// comes back frozen.
func RestoreSession(tree model.Tree, filter Filter, snap *model.SessionSnapshot) *Session {
	state := StateUninitialized
	switch snap.State {
	case model.SessionActive, model.SessionSubmitting:
		state = StateActive
	case model.SessionComplete:
		state = StateComplete
	}
	return &Session{
		tree:       tree,
		filter:     filter,
		store:      RestoreStore(snap.Answers),
		nav:        RestoreNavigator(state, snap.CategoryID, snap.SubCategoryID, snap.CategorySlot, snap.SubSlot),
		visited:    append([]int(nil), snap.Visited...),
		submitting: snap.State == model.SessionSubmitting,
	}
}

// Snapshot copies the engine state into snap, leaving its identity fields alone
func (s *Session) Snapshot(snap *model.SessionSnapshot) {
	snap.State = s.State()
	snap.CategoryID, snap.SubCategoryID, snap.CategorySlot, snap.SubSlot = s.nav.Anchor()
	snap.Answers = s.store.Snapshot()
	snap.Visited = append([]int(nil), s.visited...)
}

// State maps the navigator state plus the submission flag to a session state
func (s *Session) State() model.SessionState {
	switch {
	case s.submitting:
		return model.SessionSubmitting
	case s.nav.State() == StateActive:
		return model.SessionActive
	case s.nav.State() == StateComplete:
		return model.SessionComplete
	}
	return model.SessionUninitialized
}

// Start positions the cursor at the first visible subcategory
func (s *Session) Start() error {
	view := s.visible()
	if err := s.nav.Start(view); err != nil {
		return err
	}
	s.markVisited(view)
	return nil
}

// Answer records an answer for a question anywhere in the tree
func (s *Session) Answer(questionID int, a model.Answer) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if _, ok := s.tree.Question(questionID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	s.store.Set(questionID, a)
	return nil
}

// Toggle flips one option of a multiple choice question
func (s *Session) Toggle(questionID, optionID int) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	q, ok := s.tree.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if q.Type != model.QuestionTypeMultipleChoice {
		return fmt.Errorf("%w: %d", ErrNotMultipleChoice, questionID)
	}
	s.store.Toggle(questionID, optionID)
	return nil
}

// Advance moves to the next visible subcategory. On the last one it formats the
// answers on the visited path and hands them to sub; the session completes only if the
// submission succeeds. A failed submission leaves answers and cursor untouched.
func (s *Session) Advance(ctx context.Context, sub Submitter) (Step, error) {
	if s.submitting {
		return 0, ErrSubmitting
	}
	view := s.visible()
	step, err := s.nav.Advance(view, func(cur model.SubCategory) bool {
		return s.store.IsComplete(cur.Questions)
	})
	if err != nil {
		return 0, err
	}
	if step != StepLast {
		s.markVisited(view)
		return step, nil
	}

	payload, err := Format(s.store, s.pathQuestions())
	if err != nil {
		return 0, err
	}

	s.submitting = true
	err = sub.Submit(ctx, payload)
	s.submitting = false
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.nav.Finish()
	s.store.Clear()
	return StepCompleted, nil
}

// Retreat moves to the previous visible subcategory
func (s *Session) Retreat() error {
	if s.submitting {
		return ErrSubmitting
	}
	view := s.visible()
	if _, err := s.nav.Retreat(view); err != nil {
		return err
	}
	s.markVisited(view)
	return nil
}

// Abandon discards all answers and the cursor
func (s *Session) Abandon() {
	s.store.Clear()
	s.nav.Reset()
	s.visited = nil
	s.submitting = false
}

// Current returns the view for the current subcategory
func (s *Session) Current() (View, error) {
	view := s.visible()
	pos, sub, err := s.nav.Current(view)
	if err != nil {
		return View{State: s.nav.State()}, err
	}

	cat := view.Categories[pos.CategoryIndex]
	answers := make(map[int]model.Answer)
	for _, q := range sub.Questions {
		if a, ok := s.store.Get(q.ID); ok {
			answers[q.ID] = a
		}
	}

	return View{
		State:            s.nav.State(),
		Position:         pos,
		CategoryID:       cat.ID,
		CategoryName:     cat.Name,
		SubCategory:      sub,
		Answers:          answers,
		CategoryCount:    len(view.Categories),
		SubCategoryCount: len(cat.SubCategories),
		IsFirst:          pos.CategoryIndex == 0 && pos.SubCategoryIndex == 0,
		IsLast:           s.nav.IsLast(view),
		CanAdvance:       s.store.IsComplete(sub.Questions),
	}, nil
}

// Visible returns the filtered tree for the current answers
func (s *Session) Visible() model.Tree {
	return s.visible()
}

func (s *Session) visible() model.Tree {
	return s.filter.VisibleTree(s.tree, s.store)
}

func (s *Session) checkMutable() error {
	if s.submitting {
		return ErrSubmitting
	}
	if s.nav.State() == StateComplete {
		return ErrComplete
	}
	return nil
}

func (s *Session) markVisited(view model.Tree) {
	_, sub, err := s.nav.Current(view)
	if err != nil {
		return
	}
	for _, id := range s.visited {
		if id == sub.ID {
			return
		}
	}
	s.visited = append(s.visited, sub.ID)
}

// pathQuestions lists the questions of every visited subcategory, in visit order
func (s *Session) pathQuestions() []model.Question {
	var qs []model.Question
	for _, id := range s.visited {
		if sub, ok := s.tree.SubCategory(id); ok {
			qs = append(qs, sub.Questions...)
		}
	}
	return qs
}
