package survey

import "errors"

var (
	ErrNotStarted        = errors.New("survey session not started")
	ErrComplete          = errors.New("survey session already complete")
	ErrEmptyTree         = errors.New("survey has no visible subcategory")
	ErrIncomplete        = errors.New("current subcategory has unanswered questions")
	ErrNothingToSubmit   = errors.New("nothing to submit")
	ErrSubmitting        = errors.New("submission in progress")
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrNotMultipleChoice = errors.New("question is not multiple choice")
)
