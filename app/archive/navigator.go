package archive

// Navigator walks a newest-first list of archive dates relative to the
// current position. The list is used as given: sorting and de-duplication
// belong to whoever builds it (see Lister).
//
// A Navigator is an immutable value and safe for concurrent use.
type Navigator struct {
	dates   []DateEntry
	current Position
}

func NewNavigator(dates []DateEntry, current Position) Navigator {
	return Navigator{dates: dates, current: current}
}

func (n Navigator) Current() Position {
	return n.current
}

func (n Navigator) Dates() []DateEntry {
	return n.dates
}

// MoveTo returns a navigator over the same dates positioned at p.
func (n Navigator) MoveTo(p Position) Navigator {
	n.current = p
	return n
}

// IndexOf returns the index of date in the list, or -1. A miss is normal
// for today's date before it has been published.
func (n Navigator) IndexOf(date string) int {
	for i, entry := range n.dates {
		if entry.Date == date {
			return i
		}
	}
	return -1
}

// Previous steps to the next older date. From today that is the newest
// archived date. There is nothing older than the last entry, and a
// historical position missing from the list goes nowhere.
func (n Navigator) Previous() (Position, bool) {
	if n.current.IsToday() {
		if len(n.dates) == 0 {
			return Position{}, false
		}
		return Historical(n.dates[0]), true
	}

	i := n.IndexOf(n.current.Date())
	if i < 0 || i >= len(n.dates)-1 {
		return Position{}, false
	}
	return Historical(n.dates[i+1]), true
}

// Next steps to the next newer date. Past the newest archived date it
// crosses back into the live feed; today itself has nothing newer.
func (n Navigator) Next() (Position, bool) {
	if n.current.IsToday() {
		return Position{}, false
	}

	i := n.IndexOf(n.current.Date())
	switch {
	case i > 0:
		return Historical(n.dates[i-1]), true
	case i == 0:
		return Today(), true
	default:
		return Position{}, false
	}
}

func (n Navigator) CanGoPrevious() bool {
	_, ok := n.Previous()
	return ok
}

func (n Navigator) CanGoNext() bool {
	_, ok := n.Next()
	return ok
}

// Resolve turns a requested date into a position. An empty value, the
// "today" marker, today's date and any date missing from the archive all
// resolve to Today.
func (n Navigator) Resolve(date, today string) Position {
	if date == "" || date == TodayMarker || date == today {
		return Today()
	}
	i := n.IndexOf(date)
	if i < 0 {
		return Today()
	}
	return Historical(n.dates[i])
}
