package archive

// DateEntry is one archived daily snapshot.
type DateEntry struct {
	Date     string `json:"date"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Position is where the browser currently is: the live "today" feed or a
// historical entry of the archive. The zero value is Today.
type Position struct {
	historical bool
	entry      DateEntry
}

func Today() Position {
	return Position{}
}

func Historical(entry DateEntry) Position {
	return Position{historical: true, entry: entry}
}

func (p Position) IsToday() bool {
	return !p.historical
}

// Entry returns the archive entry of a historical position.
func (p Position) Entry() (DateEntry, bool) {
	return p.entry, p.historical
}

// Date is the archive date, or "" for today.
func (p Position) Date() string {
	if !p.historical {
		return ""
	}
	return p.entry.Date
}

func (p Position) String() string {
	if !p.historical {
		return TodayMarker
	}
	return p.entry.Date
}

// TodayMarker names the live feed in URLs and API payloads.
const TodayMarker = "today"
