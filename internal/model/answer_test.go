package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsAnswer_Dedupes(t *testing.T) {
	a := OptionsAnswer(3, 1, 3, 2, 1)
	assert.Equal(t, []int{3, 1, 2}, a.SelectedOptions)
	assert.Equal(t, AnswerOptions, a.Kind)
}

func TestAnswer_OptionIDs(t *testing.T) {
	assert.Equal(t, []int{7}, OptionAnswer(7).OptionIDs())
	assert.Equal(t, []int{7, 8}, OptionsAnswer(7, 8).OptionIDs())
	assert.Nil(t, TextAnswer("x").OptionIDs())
}

func TestAnswer_CompleteFor(t *testing.T) {
	text := Question{ID: 1, Type: QuestionTypeText}
	single := Question{ID: 2, Type: QuestionTypeSingleChoice, Options: []Option{{ID: 0, Text: "zero"}}}

	assert.True(t, TextAnswer("a").CompleteFor(text))
	assert.False(t, TextAnswer("").CompleteFor(text))
	assert.True(t, OptionAnswer(0).CompleteFor(single), "option id zero is a valid id")
	assert.False(t, Answer{}.CompleteFor(single))
}
