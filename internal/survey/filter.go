package survey

import (
	"fmt"
	"strings"

	"vitasurvey/internal/model"
)

// Rules names the well-known categories and subcategories the two branch predicates
// look for. Category markers match as case-insensitive substrings of the category name;
// subcategory and gender values match as whole names, ignoring case and outer spaces.
type Rules struct {
	LifestyleCategory string `yaml:"lifestyleCategory"`
	WomenHealth       string `yaml:"womenHealth"`
	MenHealth         string `yaml:"menHealth"`
	Female            string `yaml:"female"`
	Male              string `yaml:"male"`
	// GenderQuestionID is a choice question whose chosen option label overrides the
	// gender on file. Zero disables it.
	GenderQuestionID int `yaml:"genderQuestionId"`

	SymptomsCategory   string `yaml:"symptomsCategory"`
	MainSymptoms       string `yaml:"mainSymptoms"`
	AdditionalSymptoms string `yaml:"additionalSymptoms"`
}

// DefaultRules returns the names used by the stock health survey
func DefaultRules() Rules {
	return Rules{
		LifestyleCategory:  "lifestyle",
		WomenHealth:        "women's health",
		MenHealth:          "men's health",
		Female:             "female",
		Male:               "male",
		SymptomsCategory:   "symptoms",
		MainSymptoms:       "main symptoms",
		AdditionalSymptoms: "additional symptoms",
	}
}

// Answers is the read side of the response store used by the filter
type Answers interface {
	Get(questionID int) (model.Answer, bool)
}

// Filter computes the visible part of a tree. It holds no state between calls.
type Filter struct {
	Rules        Rules
	GenderOnFile string
}

// VisibleTree returns the subset of tree eligible for display given the current answers.
// The gender rule narrows the lifestyle category, the symptom rule narrows the symptoms
// category, every other category is returned as is. Categories left without any
// subcategory are dropped. The input tree is never modified.
func (f Filter) VisibleTree(tree model.Tree, answers Answers) model.Tree {
	lifestyle := f.findCategory(tree, f.Rules.LifestyleCategory)
	symptoms := f.findCategory(tree, f.Rules.SymptomsCategory)
	gender := f.gender(tree, answers)

	out := model.Tree{Categories: make([]model.Category, 0, len(tree.Categories))}
	for i, c := range tree.Categories {
		subs := c.SubCategories
		if i == lifestyle {
			subs = f.genderRule(subs, gender)
		}
		if i == symptoms {
			subs = f.symptomRule(subs, answers)
		}
		if len(subs) == 0 {
			continue
		}
		c.SubCategories = subs
		out.Categories = append(out.Categories, c)
	}
	return out
}

// Diagnose lists the configured names that the tree does not contain. Each missing
// name disables its rule.
func (f Filter) Diagnose(tree model.Tree) []string {
	var problems []string
	if f.findCategory(tree, f.Rules.LifestyleCategory) < 0 {
		problems = append(problems, fmt.Sprintf("lifestyle category %q not found, gender rule disabled", f.Rules.LifestyleCategory))
	}
	idx := f.findCategory(tree, f.Rules.SymptomsCategory)
	if idx < 0 {
		problems = append(problems, fmt.Sprintf("symptoms category %q not found, symptom rule disabled", f.Rules.SymptomsCategory))
		return problems
	}
	if _, ok := f.symptomQuestion(tree.Categories[idx].SubCategories); !ok {
		problems = append(problems, fmt.Sprintf("subcategory %q with a choice question not found, symptom rule disabled", f.Rules.MainSymptoms))
	}
	return problems
}

func (f Filter) findCategory(tree model.Tree, marker string) int {
	marker = strings.ToLower(strings.TrimSpace(marker))
	if marker == "" {
		return -1
	}
	for i, c := range tree.Categories {
		if strings.Contains(strings.ToLower(c.Name), marker) {
			return i
		}
	}
	return -1
}

// gender prefers the answer to the gender question over the gender on file
func (f Filter) gender(tree model.Tree, answers Answers) string {
	if f.Rules.GenderQuestionID != 0 {
		if q, ok := tree.Question(f.Rules.GenderQuestionID); ok && q.Type.IsChoice() {
			if a, ok := answers.Get(q.ID); ok {
				for _, id := range a.OptionIDs() {
					if opt, ok := q.Option(id); ok {
						return opt.Text
					}
				}
			}
		}
	}
	return f.GenderOnFile
}

func (f Filter) genderRule(subs []model.SubCategory, gender string) []model.SubCategory {
	if strings.TrimSpace(gender) == "" {
		return subs
	}
	female := sameName(gender, f.Rules.Female)
	male := sameName(gender, f.Rules.Male)

	kept := make([]model.SubCategory, 0, len(subs))
	for _, sub := range subs {
		switch {
		case sameName(sub.Name, f.Rules.WomenHealth):
			if female {
				kept = append(kept, sub)
			}
		case sameName(sub.Name, f.Rules.MenHealth):
			if male {
				kept = append(kept, sub)
			}
		default:
			kept = append(kept, sub)
		}
	}
	return kept
}

// symptomQuestion is the first question of the main symptoms subcategory
func (f Filter) symptomQuestion(subs []model.SubCategory) (model.Question, bool) {
	for _, sub := range subs {
		if !sameName(sub.Name, f.Rules.MainSymptoms) {
			continue
		}
		if len(sub.Questions) == 0 || !sub.Questions[0].Type.IsChoice() {
			return model.Question{}, false
		}
		return sub.Questions[0], true
	}
	return model.Question{}, false
}

func (f Filter) symptomRule(subs []model.SubCategory, answers Answers) []model.SubCategory {
	q, ok := f.symptomQuestion(subs)
	if !ok {
		return subs
	}
	a, ok := answers.Get(q.ID)
	if !ok {
		return subs
	}

	var labels []string
	for _, id := range a.OptionIDs() {
		if opt, ok := q.Option(id); ok {
			if label := strings.ToLower(strings.TrimSpace(opt.Text)); label != "" {
				labels = append(labels, label)
			}
		}
	}
	if len(labels) == 0 {
		return subs
	}

	kept := make([]model.SubCategory, 0, len(subs))
	matched := 0
	for _, sub := range subs {
		if sameName(sub.Name, f.Rules.MainSymptoms) || sameName(sub.Name, f.Rules.AdditionalSymptoms) {
			kept = append(kept, sub)
			continue
		}
		name := strings.ToLower(sub.Name)
		for _, label := range labels {
			if strings.Contains(name, label) {
				kept = append(kept, sub)
				matched++
				break
			}
		}
	}
	// fail open: no symptom matched, show the whole category
	if matched == 0 {
		return subs
	}
	return kept
}

func sameName(name, want string) bool {
	want = strings.TrimSpace(want)
	return want != "" && strings.EqualFold(strings.TrimSpace(name), want)
}
