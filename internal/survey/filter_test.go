package survey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitasurvey/internal/model"
)

func TestVisibleTree_NoAnswersShowsEverything(t *testing.T) {
	tree := healthTree(t)
	f := Filter{Rules: testRules()}

	got := f.VisibleTree(tree, NewStore())

	if diff := cmp.Diff(tree, got); diff != "" {
		t.Errorf("VisibleTree() mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleTree_Deterministic(t *testing.T) {
	tree := healthTree(t)
	before := visibleSubs(tree)
	store := NewStore()
	store.Set(qGender, model.OptionAnswer(optMale))
	store.Set(qMainSymptom, model.OptionsAnswer(optHeadache, optFatigue))
	f := Filter{Rules: testRules(), GenderOnFile: "female"}

	first := f.VisibleTree(tree, store)
	second := f.VisibleTree(tree, store)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second call differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, before, visibleSubs(tree), "full tree must not change")
}

func TestVisibleTree_GenderRule(t *testing.T) {
	tree := healthTree(t)

	t.Run("female on file keeps women's health", func(t *testing.T) {
		f := Filter{Rules: testRules(), GenderOnFile: "female"}
		got := visibleSubs(f.VisibleTree(tree, NewStore()))
		assert.Contains(t, got, 31)
		assert.NotContains(t, got, 32)
		assert.Contains(t, got, 30)
	})

	t.Run("male on file keeps men's health", func(t *testing.T) {
		f := Filter{Rules: testRules(), GenderOnFile: "MALE"}
		got := visibleSubs(f.VisibleTree(tree, NewStore()))
		assert.NotContains(t, got, 31)
		assert.Contains(t, got, 32)
	})

	t.Run("answer overrides gender on file", func(t *testing.T) {
		store := NewStore()
		store.Set(qGender, model.OptionAnswer(optFemale))
		f := Filter{Rules: testRules(), GenderOnFile: "male"}
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Contains(t, got, 31)
		assert.NotContains(t, got, 32)
	})

	t.Run("unknown gender hides both tagged subcategories", func(t *testing.T) {
		f := Filter{Rules: testRules(), GenderOnFile: "other"}
		got := visibleSubs(f.VisibleTree(tree, NewStore()))
		assert.NotContains(t, got, 31)
		assert.NotContains(t, got, 32)
		assert.Contains(t, got, 30)
	})
}

func TestVisibleTree_SymptomRule(t *testing.T) {
	tree := healthTree(t)
	f := Filter{Rules: testRules()}

	t.Run("headache shows headache relief only", func(t *testing.T) {
		store := NewStore()
		store.Set(qMainSymptom, model.OptionsAnswer(optHeadache))
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Equal(t, []int{10, 20, 21, 24, 30, 31, 32}, got)
	})

	t.Run("several symptoms", func(t *testing.T) {
		store := NewStore()
		store.Set(qMainSymptom, model.OptionsAnswer(optFatigue, optHeadache))
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Equal(t, []int{10, 20, 21, 23, 24, 30, 31, 32}, got)
	})

	t.Run("no match fails open", func(t *testing.T) {
		store := NewStore()
		store.Set(qMainSymptom, model.OptionsAnswer(optInsomnia))
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Equal(t, visibleSubs(tree), got)
	})

	t.Run("empty selection does not filter", func(t *testing.T) {
		store := NewStore()
		store.Set(qMainSymptom, model.OptionsAnswer())
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Equal(t, visibleSubs(tree), got)
	})

	t.Run("unknown option ids are ignored", func(t *testing.T) {
		store := NewStore()
		store.Set(qMainSymptom, model.OptionsAnswer(9999))
		got := visibleSubs(f.VisibleTree(tree, store))
		assert.Equal(t, visibleSubs(tree), got)
	})
}

func TestVisibleTree_RulesCompose(t *testing.T) {
	tree := healthTree(t)
	store := NewStore()
	store.Set(qGender, model.OptionAnswer(optMale))
	store.Set(qMainSymptom, model.OptionsAnswer(optHeadache))
	f := Filter{Rules: testRules()}

	got := visibleSubs(f.VisibleTree(tree, store))

	assert.Equal(t, []int{10, 20, 21, 24, 30, 32}, got)
}

func TestVisibleTree_MissingNamesDisableRules(t *testing.T) {
	tree := healthTree(t)
	store := NewStore()
	store.Set(qMainSymptom, model.OptionsAnswer(optHeadache))
	rules := Rules{
		LifestyleCategory: "habits",
		WomenHealth:       "women's health",
		MenHealth:         "men's health",
		Female:            "female",
		Male:              "male",
		SymptomsCategory:  "complaints",
		MainSymptoms:      "main symptoms",
	}
	f := Filter{Rules: rules, GenderOnFile: "female"}

	got := f.VisibleTree(tree, store)

	assert.Equal(t, visibleSubs(tree), visibleSubs(got))
	assert.Len(t, f.Diagnose(tree), 2)
}

func TestVisibleTree_DropsEmptyCategory(t *testing.T) {
	tree, err := model.NewTree([]model.Category{
		{ID: 1, Name: "Intro", Order: 1, SubCategories: []model.SubCategory{
			{ID: 10, Name: "Hello", Questions: []model.Question{textQ(1)}},
		}},
		{ID: 2, Name: "Lifestyle", Order: 2, SubCategories: []model.SubCategory{
			{ID: 20, Name: "Women's health", Questions: []model.Question{textQ(2)}},
		}},
	})
	require.NoError(t, err)
	f := Filter{Rules: DefaultRules(), GenderOnFile: "male"}

	got := f.VisibleTree(tree, NewStore())

	require.Len(t, got.Categories, 1)
	assert.Equal(t, 1, got.Categories[0].ID)
}

func TestDiagnose_StockTree(t *testing.T) {
	f := Filter{Rules: testRules()}
	assert.Empty(t, f.Diagnose(healthTree(t)))
}
