package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeText           QuestionType = "TEXT"            // Free text
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"   // Exactly one option
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE" // One or more options
)

// Valid reports whether t is one of the known question types
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeSingleChoice, QuestionTypeMultipleChoice:
		return true
	}
	return false
}

// IsChoice reports whether answers to t are option ids
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultipleChoice
}

// Option is a selectable answer of a choice question
type Option struct {
	ID   int    `json:"id" bson:"id" yaml:"id"`
	Text string `json:"optionText" bson:"optionText" yaml:"text"`
}

// Question is a single survey question inside a subcategory
type Question struct {
	ID      int          `json:"id" bson:"id" yaml:"id"`
	Text    string       `json:"questionText" bson:"questionText" yaml:"text"`
	Type    QuestionType `json:"questionType" bson:"questionType" yaml:"type"`
	Options []Option     `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"` // choice types only
}

// Option returns the option with the given id
func (q Question) Option(id int) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// HasOption reports whether id is one of the question's options
func (q Question) HasOption(id int) bool {
	_, ok := q.Option(id)
	return ok
}
