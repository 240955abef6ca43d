package survey

import "vitasurvey/internal/model"

// State is the wizard state of a navigator
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StateComplete      State = "complete"
)

// Position is a cursor into the filtered tree
type Position struct {
	CategoryIndex    int `json:"categoryIndex"`
	SubCategoryIndex int `json:"subCategoryIndex"`
}

// Step reports what Advance did
type Step int

const (
	// StepMoved means the cursor moved to the next subcategory
	StepMoved Step = iota
	// StepRepositioned means the current subcategory was filtered out; the cursor now
	// points at the subcategory that took its place and did not move further
	StepRepositioned
	// StepLast means the cursor is on the last visible subcategory and the gate passed
	StepLast
	// StepCompleted is returned by Session.Advance after a successful submission
	StepCompleted
)

type relocation int

const (
	relocNone relocation = iota
	// a follower took the vacated slot
	relocSlid
	// the slot fell off the end, the cursor is on the predecessor
	relocClamped
)

// Navigator tracks the (category, subcategory) position over the filtered tree.
// It is anchored by ids, not indices, and resolves the indices against the view it is
// given on every call, so a filter change between calls cannot leave it dangling.
type Navigator struct {
	state         State
	categoryID    int
	subCategoryID int
	// slots are the indices at the last resolve, used to reposition when the anchor
	// disappears from the view
	categorySlot int
	subSlot      int
}

// RestoreNavigator rebuilds a navigator from persisted anchor data
func RestoreNavigator(state State, categoryID, subCategoryID, categorySlot, subSlot int) Navigator {
	return Navigator{
		state:         state,
		categoryID:    categoryID,
		subCategoryID: subCategoryID,
		categorySlot:  categorySlot,
		subSlot:       subSlot,
	}
}

// State returns the current wizard state
func (n *Navigator) State() State {
	if n.state == "" {
		return StateUninitialized
	}
	return n.state
}

// Anchor returns the ids the cursor points at and the last resolved slots
func (n *Navigator) Anchor() (categoryID, subCategoryID, categorySlot, subSlot int) {
	return n.categoryID, n.subCategoryID, n.categorySlot, n.subSlot
}

// Start moves an uninitialized navigator to (0,0) of view
func (n *Navigator) Start(view model.Tree) error {
	switch n.State() {
	case StateComplete:
		return ErrComplete
	case StateActive:
		return nil
	}
	if view.Empty() {
		return ErrEmptyTree
	}
	n.state = StateActive
	n.moveTo(view, 0, 0)
	return nil
}

// Current resolves the cursor against view and returns the position and the
// subcategory it points at
func (n *Navigator) Current(view model.Tree) (Position, model.SubCategory, error) {
	if err := n.checkActive(view); err != nil {
		return Position{}, model.SubCategory{}, err
	}
	pos, _ := n.resolve(view)
	return pos, subAt(view, pos), nil
}

// Advance moves forward if complete reports the current subcategory as answered.
// An incomplete subcategory returns ErrIncomplete and leaves the cursor unchanged.
// On the last subcategory of the last category the cursor stays put and StepLast is
// returned; the caller finishes the session.
func (n *Navigator) Advance(view model.Tree, complete func(model.SubCategory) bool) (Step, error) {
	if err := n.checkActive(view); err != nil {
		return 0, err
	}
	pos, reloc := n.resolve(view)
	if reloc != relocNone {
		return StepRepositioned, nil
	}
	if !complete(subAt(view, pos)) {
		return 0, ErrIncomplete
	}

	c, s := pos.CategoryIndex, pos.SubCategoryIndex
	switch {
	case s < len(view.Categories[c].SubCategories)-1:
		n.moveTo(view, c, s+1)
	case c < len(view.Categories)-1:
		n.moveTo(view, c+1, 0)
	default:
		return StepLast, nil
	}
	return StepMoved, nil
}

// Retreat moves one subcategory back. From the first subcategory of a category it
// jumps to the last subcategory of the previous category; at (0,0) it does nothing.
func (n *Navigator) Retreat(view model.Tree) (Position, error) {
	if err := n.checkActive(view); err != nil {
		return Position{}, err
	}
	pos, reloc := n.resolve(view)
	if reloc == relocClamped {
		return pos, nil
	}

	c, s := pos.CategoryIndex, pos.SubCategoryIndex
	switch {
	case s > 0:
		n.moveTo(view, c, s-1)
	case c > 0:
		n.moveTo(view, c-1, len(view.Categories[c-1].SubCategories)-1)
	}
	return Position{CategoryIndex: n.categorySlot, SubCategoryIndex: n.subSlot}, nil
}

// IsLast reports whether the cursor is on the final visible subcategory
func (n *Navigator) IsLast(view model.Tree) bool {
	if n.checkActive(view) != nil {
		return false
	}
	pos, _ := n.resolve(view)
	last := len(view.Categories) - 1
	return pos.CategoryIndex == last && pos.SubCategoryIndex == len(view.Categories[last].SubCategories)-1
}

// Finish marks the navigator complete. It cannot be restarted.
func (n *Navigator) Finish() {
	n.state = StateComplete
}

// Reset returns the navigator to the uninitialized state
func (n *Navigator) Reset() {
	*n = Navigator{}
}

func (n *Navigator) checkActive(view model.Tree) error {
	switch n.State() {
	case StateUninitialized:
		return ErrNotStarted
	case StateComplete:
		return ErrComplete
	}
	if view.Empty() {
		return ErrEmptyTree
	}
	return nil
}

func (n *Navigator) moveTo(view model.Tree, c, s int) {
	cat := view.Categories[c]
	n.categoryID = cat.ID
	n.subCategoryID = cat.SubCategories[s].ID
	n.categorySlot = c
	n.subSlot = s
}

// resolve finds the anchor in view. If it is gone the cursor re-anchors on whatever
// now occupies the old slot, clamped to the view.
func (n *Navigator) resolve(view model.Tree) (Position, relocation) {
	c := -1
	for i, cat := range view.Categories {
		if cat.ID == n.categoryID {
			c = i
			break
		}
	}

	if c < 0 {
		if n.categorySlot < len(view.Categories) {
			c = clamp(n.categorySlot, len(view.Categories))
			n.moveTo(view, c, 0)
			return Position{CategoryIndex: c}, relocSlid
		}
		c = len(view.Categories) - 1
		s := len(view.Categories[c].SubCategories) - 1
		n.moveTo(view, c, s)
		return Position{CategoryIndex: c, SubCategoryIndex: s}, relocClamped
	}

	subs := view.Categories[c].SubCategories
	for i, sub := range subs {
		if sub.ID == n.subCategoryID {
			n.categorySlot, n.subSlot = c, i
			return Position{CategoryIndex: c, SubCategoryIndex: i}, relocNone
		}
	}

	reloc := relocSlid
	s := n.subSlot
	if s >= len(subs) {
		s = len(subs) - 1
		reloc = relocClamped
	}
	s = clamp(s, len(subs))
	n.moveTo(view, c, s)
	return Position{CategoryIndex: c, SubCategoryIndex: s}, reloc
}

func subAt(view model.Tree, pos Position) model.SubCategory {
	return view.Categories[pos.CategoryIndex].SubCategories[pos.SubCategoryIndex]
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
