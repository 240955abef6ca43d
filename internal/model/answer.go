package model

import (
	"strings"
	"time"
)

// AnswerKind tells which field of an Answer carries the value
type AnswerKind string

const (
	AnswerText    AnswerKind = "text"    // Text
	AnswerOption  AnswerKind = "option"  // SelectedOption
	AnswerOptions AnswerKind = "options" // SelectedOptions
)

// Answer is the recorded value for one question
type Answer struct {
	Kind            AnswerKind `json:"kind"`
	Text            string     `json:"text,omitempty"`
	SelectedOption  int        `json:"selectedOption,omitempty"`
	SelectedOptions []int      `json:"selectedOptions,omitempty"`
}

// TextAnswer builds a free text answer
func TextAnswer(text string) Answer {
	return Answer{Kind: AnswerText, Text: text}
}

// OptionAnswer builds a single choice answer
func OptionAnswer(optionID int) Answer {
	return Answer{Kind: AnswerOption, SelectedOption: optionID}
}

// OptionsAnswer builds a multiple choice answer. Duplicate ids are dropped, first
// occurrence wins the position.
func OptionsAnswer(optionIDs ...int) Answer {
	seen := make(map[int]bool, len(optionIDs))
	ids := make([]int, 0, len(optionIDs))
	for _, id := range optionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return Answer{Kind: AnswerOptions, SelectedOptions: ids}
}

// Clone returns a copy that shares no memory with a
func (a Answer) Clone() Answer {
	if a.SelectedOptions != nil {
		a.SelectedOptions = append([]int(nil), a.SelectedOptions...)
	}
	return a
}

// OptionIDs returns the selected option ids for choice answers
func (a Answer) OptionIDs() []int {
	switch a.Kind {
	case AnswerOption:
		return []int{a.SelectedOption}
	case AnswerOptions:
		return a.SelectedOptions
	}
	return nil
}

// CompleteFor reports whether a is a non-empty, valid answer to q: non-blank text for
// TEXT, an existing option for SINGLE_CHOICE, a non-empty set of existing options for
// MULTIPLE_CHOICE.
func (a Answer) CompleteFor(q Question) bool {
	switch q.Type {
	case QuestionTypeText:
		return a.Kind == AnswerText && strings.TrimSpace(a.Text) != ""
	case QuestionTypeSingleChoice:
		return a.Kind == AnswerOption && q.HasOption(a.SelectedOption)
	case QuestionTypeMultipleChoice:
		if a.Kind != AnswerOptions || len(a.SelectedOptions) == 0 {
			return false
		}
		for _, id := range a.SelectedOptions {
			if !q.HasOption(id) {
				return false
			}
		}
		return true
	}
	return false
}

// ResponseItem is one entry of the submission payload. Exactly one of ResponseText and
// SelectedOptions is set; the other encodes as null.
type ResponseItem struct {
	QuestionID      int          `json:"questionId" bson:"questionId"`
	ResponseType    QuestionType `json:"responseType" bson:"responseType"`
	ResponseText    *string      `json:"responseText" bson:"responseText"`
	SelectedOptions []int        `json:"selectedOptions" bson:"selectedOptions"`
}

// Submission is a completed survey as stored by the submission service
type Submission struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	MemberID    string         `json:"memberId" bson:"memberId"`
	SessionID   string         `json:"sessionId" bson:"sessionId"`
	Responses   []ResponseItem `json:"responses" bson:"responses"`
	SubmittedAt time.Time      `json:"submittedAt" bson:"submittedAt"`
}
