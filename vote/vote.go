// Package vote collects mute votes for a single session and decides
// the outcome once voting has ended.
package vote

import (
	"sort"
	"time"
)

// Reason explains why an Outcome was rejected.
type Reason int

const (
	// Approved outcomes carry no reason
	None Reason = iota
	// NotEnoughVotes means the margin was below the threshold
	NotEnoughVotes
	// NoDuration means the margin was met but nobody who voted to
	// mute picked a duration
	NoDuration
)

func (r Reason) String() string {
	switch r {
	case NotEnoughVotes:
		return "not enough votes"
	case NoDuration:
		return "no duration chosen"
	}
	return "none"
}

// Vote is a single participant's choice. A zero Duration means no
// duration was chosen.
type Vote struct {
	ParticipantID string
	ForMuting     bool
	Duration      time.Duration
}

// Outcome is the result of a finished Session.
type Outcome struct {
	Approved bool
	Duration time.Duration
	Positive int
	Negative int
	Reason   Reason
}

// Session holds at most one Vote per participant. It is not safe for
// concurrent use; a single goroutine is expected to own it.
type Session struct {
	Threshold int
	Deadline  time.Time

	votes map[string]Vote
}

// NewSession returns an empty Session that needs a margin of
// threshold votes and ends at deadline.
func NewSession(threshold int, deadline time.Time) *Session {
	return &Session{
		Threshold: threshold,
		Deadline:  deadline,
		votes:     make(map[string]Vote),
	}
}

// Record stores the participant's vote, replacing any earlier one.
func (s *Session) Record(participantID string, forMuting bool, duration time.Duration) {
	if !forMuting || duration < 0 {
		duration = 0
	}
	s.votes[participantID] = Vote{
		ParticipantID: participantID,
		ForMuting:     forMuting,
		Duration:      duration,
	}
}

// Tally returns the number of votes for and against muting.
func (s *Session) Tally() (positive, negative int) {
	for _, v := range s.votes {
		if v.ForMuting {
			positive++
		}
	}
	return positive, len(s.votes) - positive
}

// Len returns the number of participants who voted.
func (s *Session) Len() int {
	return len(s.votes)
}

// Votes returns a copy of all votes ordered by participant ID.
func (s *Session) Votes() []Vote {
	votes := make([]Vote, 0, len(s.votes))
	for _, v := range s.votes {
		votes = append(votes, v)
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].ParticipantID < votes[j].ParticipantID
	})
	return votes
}

// Remaining returns how long until the deadline, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the deadline has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Deadline)
}

// Decide computes the Outcome. The vote is approved when
// positive - negative >= Threshold and at least one vote to mute
// carries a duration.
func (s *Session) Decide() Outcome {
	positive, negative := s.Tally()
	o := Outcome{Positive: positive, Negative: negative}

	if positive-negative < s.Threshold {
		o.Reason = NotEnoughVotes
		return o
	}

	d, ok := ResolveDuration(s.Votes())
	if !ok {
		o.Reason = NoDuration
		return o
	}

	o.Approved = true
	o.Duration = d
	return o
}

// ResolveDuration picks the most common duration among votes to
// mute. Ties go to the shortest of the tied durations. It returns
// false when no vote to mute has a duration.
func ResolveDuration(votes []Vote) (time.Duration, bool) {
	counts := make(map[time.Duration]int)
	for _, v := range votes {
		if v.ForMuting && v.Duration > 0 {
			counts[v.Duration]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	var best time.Duration
	bestCount := 0
	for d, n := range counts {
		if n > bestCount || (n == bestCount && d < best) {
			best, bestCount = d, n
		}
	}
	return best, true
}
