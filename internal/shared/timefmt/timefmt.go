// Package timefmt renders timestamps as the human relative labels shown next
// to notifications ("3:04 PM", "Yesterday", "15 September, 2025").
package timefmt

import "time"

const clockLayout = "3:04 PM"

// Relative is the wire shape of a formatted timestamp. Same-day values only
// carry Display; older values carry Date and Time.
type Relative struct {
	Display string `json:"display,omitempty"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
}

// Formatter decides calendar days in Loc. Now is injectable for tests.
type Formatter struct {
	Loc *time.Location
	Now func() time.Time
}

func New(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{Loc: loc, Now: time.Now}
}

// Format returns nil for a nil timestamp.
func (f *Formatter) Format(ts *time.Time) *Relative {
	if ts == nil {
		return nil
	}
	v := f.FormatTime(*ts)
	return &v
}

func (f *Formatter) FormatTime(ts time.Time) Relative {
	now := f.Now().In(f.Loc)
	local := ts.In(f.Loc)
	clock := local.Format(clockLayout)

	switch calendarDaysBetween(local, now) {
	case 0:
		return Relative{Display: clock}
	case 1:
		return Relative{Date: "Yesterday", Time: clock}
	default:
		return Relative{Date: local.Format("02 January, 2006"), Time: clock}
	}
}

// calendarDaysBetween counts midnights crossed from a to b, both already in
// the same location. Negative when a is after b.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
