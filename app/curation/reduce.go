package curation

import (
	"strings"

	"github.com/lysyi3m/news-browser/app/archive"
)

const (
	MsgItemAdded      = "Item added to curated list"
	MsgItemExists     = "Item already in curated list"
	MsgItemRemoved    = "Item removed from curated list"
	MsgInvalidIndex   = "Invalid index"
	MsgItemsCleared   = "Curated list cleared"
	MsgNothingToClear = "Curated list is already empty"
	MsgItemsReplaced  = "Curated list replaced"
	MsgNoOlderDate    = "No older date available"
	MsgNoNewerDate    = "Already viewing the latest feed"
)

// Direction is the way a Step moves through the archive.
type Direction string

const (
	Older Direction = "previous"
	Newer Direction = "next"
)

// Action is a state transition. The concrete action types below are the
// only implementations.
type Action interface {
	actionName() string
}

type AddItem struct {
	Item CuratedItem
}

type RemoveItem struct {
	Index int
}

type ClearItems struct{}

type ReplaceItems struct {
	Items []CuratedItem
}

type ToggleCategory struct {
	Category string
}

type ShowAllCategories struct{}

type SetSearch struct {
	Term string
}

type Navigate struct {
	Position archive.Position
}

// Step moves one date from the current position through Dates. The
// position is read and written under the store lock, so concurrent steps
// never start from the same date.
type Step struct {
	Dates     []archive.DateEntry
	Direction Direction
}

func (AddItem) actionName() string           { return "add_item" }
func (RemoveItem) actionName() string        { return "remove_item" }
func (ClearItems) actionName() string        { return "clear_items" }
func (ReplaceItems) actionName() string      { return "replace_items" }
func (ToggleCategory) actionName() string    { return "toggle_category" }
func (ShowAllCategories) actionName() string { return "show_all_categories" }
func (SetSearch) actionName() string         { return "set_search" }
func (Navigate) actionName() string          { return "navigate" }
func (Step) actionName() string              { return "step" }

// Outcome tells the caller whether an action took effect. Message is meant
// for the user.
type Outcome struct {
	Changed bool   `json:"changed"`
	Message string `json:"message,omitempty"`
}

// Reduce applies action to state and returns the next state. It never
// modifies the slices of the state it is given.
func Reduce(state State, action Action) (State, Outcome) {
	next := state.clone()

	switch a := action.(type) {
	case AddItem:
		text := a.Item.Text()
		for _, existing := range next.Items {
			if existing.Text() == text {
				return state, Outcome{Message: MsgItemExists}
			}
		}
		next.Items = append(next.Items, a.Item)
		return next, Outcome{Changed: true, Message: MsgItemAdded}

	case RemoveItem:
		if a.Index < 0 || a.Index >= len(next.Items) {
			return state, Outcome{Message: MsgInvalidIndex}
		}
		next.Items = append(next.Items[:a.Index], next.Items[a.Index+1:]...)
		return next, Outcome{Changed: true, Message: MsgItemRemoved}

	case ClearItems:
		if len(next.Items) == 0 {
			return state, Outcome{Message: MsgNothingToClear}
		}
		next.Items = []CuratedItem{}
		return next, Outcome{Changed: true, Message: MsgItemsCleared}

	case ReplaceItems:
		next.Items = make([]CuratedItem, len(a.Items))
		copy(next.Items, a.Items)
		return next, Outcome{Changed: true, Message: MsgItemsReplaced}

	case ToggleCategory:
		next.ActiveFilters = toggle(next.ActiveFilters, a.Category)
		return next, Outcome{Changed: true}

	case ShowAllCategories:
		next.ActiveFilters = []string{AllCategories}
		return next, Outcome{Changed: true}

	case SetSearch:
		next.SearchTerm = strings.TrimSpace(a.Term)
		return next, Outcome{Changed: next.SearchTerm != state.SearchTerm}

	case Navigate:
		return moveTo(next, a.Position), Outcome{Changed: true}

	case Step:
		nav := archive.NewNavigator(a.Dates, next.Position)
		switch a.Direction {
		case Older:
			if target, ok := nav.Previous(); ok {
				return moveTo(next, target), Outcome{Changed: true}
			}
			return state, Outcome{Message: MsgNoOlderDate}
		case Newer:
			if target, ok := nav.Next(); ok {
				return moveTo(next, target), Outcome{Changed: true}
			}
			return state, Outcome{Message: MsgNoNewerDate}
		}
	}

	return state, Outcome{}
}

func moveTo(state State, position archive.Position) State {
	state.Position = position
	// a different day has different categories
	state.ActiveFilters = []string{AllCategories}
	return state
}

// toggle flips category in the filter set. Picking a category while "all"
// is active replaces "all"; removing the last category brings "all" back.
func toggle(filters []string, category string) []string {
	if category == "" || category == AllCategories {
		return []string{AllCategories}
	}

	active := make([]string, 0, len(filters)+1)
	found := false
	for _, f := range filters {
		switch f {
		case AllCategories:
		case category:
			found = true
		default:
			active = append(active, f)
		}
	}

	if !found {
		active = append(active, category)
	}
	if len(active) == 0 {
		return []string{AllCategories}
	}
	return active
}
