package vote

import "time"

// DurationChoice is a mute duration offered to voters.
type DurationChoice struct {
	Label    string
	Duration time.Duration
}

// DurationChoices are the durations a voter can pick from, shortest
// first.
var DurationChoices = []DurationChoice{
	{"1 minute", time.Minute},
	{"5 minutes", 5 * time.Minute},
	{"10 minutes", 10 * time.Minute},
	{"30 minutes", 30 * time.Minute},
	{"1 hour", time.Hour},
	{"2 hours", 2 * time.Hour},
	{"6 hours", 6 * time.Hour},
	{"12 hours", 12 * time.Hour},
	{"1 day", 24 * time.Hour},
	{"3 days", 3 * 24 * time.Hour},
	{"1 week", 7 * 24 * time.Hour},
}

// LookupChoice returns the choice whose duration equals d.
func LookupChoice(d time.Duration) (DurationChoice, bool) {
	for _, c := range DurationChoices {
		if c.Duration == d {
			return c, true
		}
	}
	return DurationChoice{}, false
}
