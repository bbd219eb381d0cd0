package vote

import (
	"testing"
	"time"
)

func TestRecordOverwrites(t *testing.T) {
	s := NewSession(1, time.Now().Add(time.Minute))
	s.Record("a", true, time.Minute)
	s.Record("a", false, 0)

	if s.Len() != 1 {
		t.Fatalf("expected 1 vote, got %d", s.Len())
	}
	pos, neg := s.Tally()
	if pos != 0 || neg != 1 {
		t.Errorf("expected 0 for and 1 against, got %d and %d", pos, neg)
	}
}

func TestRecordDropsDurationOnVoteAgainst(t *testing.T) {
	s := NewSession(1, time.Now())
	s.Record("a", false, time.Hour)
	if d := s.Votes()[0].Duration; d != 0 {
		t.Errorf("expected no duration, got %s", d)
	}
}

func TestDecideThreshold(t *testing.T) {
	tests := []struct {
		name      string
		pos, neg  int
		threshold int
		approved  bool
	}{
		{"margin exactly met", 5, 2, 3, true},
		{"one extra against flips", 5, 3, 3, false},
		{"margin exceeded", 6, 0, 3, true},
		{"no votes", 0, 0, 1, false},
		{"zero threshold with no votes", 0, 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(tc.threshold, time.Now())
			for i := 0; i < tc.pos; i++ {
				s.Record("for"+string(rune('a'+i)), true, time.Minute)
			}
			for i := 0; i < tc.neg; i++ {
				s.Record("against"+string(rune('a'+i)), false, 0)
			}

			o := s.Decide()
			if o.Positive != tc.pos || o.Negative != tc.neg {
				t.Errorf("tally = %d/%d, want %d/%d", o.Positive, o.Negative, tc.pos, tc.neg)
			}
			if tc.pos == 0 && tc.threshold <= 0 {
				// margin met, but nobody picked a duration
				if o.Approved || o.Reason != NoDuration {
					t.Errorf("expected NoDuration rejection, got %+v", o)
				}
				return
			}
			if o.Approved != tc.approved {
				t.Errorf("approved = %v, want %v", o.Approved, tc.approved)
			}
			if !tc.approved && o.Reason != NotEnoughVotes {
				t.Errorf("reason = %s, want %s", o.Reason, NotEnoughVotes)
			}
		})
	}
}

func TestResolveDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
		ok        bool
	}{
		{"unique mode", []time.Duration{60 * time.Second, 60 * time.Second, 300 * time.Second}, 60 * time.Second, true},
		{"two way tie", []time.Duration{60 * time.Second, 300 * time.Second}, 60 * time.Second, true},
		{"tie among top only", []time.Duration{time.Hour, time.Hour, time.Minute, 6 * time.Hour, 6 * time.Hour}, time.Hour, true},
		{"longer mode wins", []time.Duration{time.Minute, time.Hour, time.Hour}, time.Hour, true},
		{"timed out prompts ignored", []time.Duration{0, 0, 5 * time.Minute}, 5 * time.Minute, true},
		{"all timed out", []time.Duration{0, 0}, 0, false},
		{"none", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			votes := make([]Vote, 0, len(tc.durations))
			for i, d := range tc.durations {
				votes = append(votes, Vote{ParticipantID: string(rune('a' + i)), ForMuting: true, Duration: d})
			}
			got, ok := ResolveDuration(votes)
			if ok != tc.ok || got != tc.want {
				t.Errorf("got %s, %v; want %s, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDecideNoDuration(t *testing.T) {
	s := NewSession(1, time.Now())
	s.Record("a", true, 0)
	s.Record("b", true, 0)

	o := s.Decide()
	if o.Approved {
		t.Fatal("expected rejection when no duration was chosen")
	}
	if o.Reason != NoDuration {
		t.Errorf("reason = %s, want %s", o.Reason, NoDuration)
	}
	if o.Positive != 2 {
		t.Errorf("positive = %d, want 2", o.Positive)
	}
}

func TestDecideApprovedDuration(t *testing.T) {
	s := NewSession(1, time.Now())
	s.Record("a", true, 60*time.Second)
	s.Record("b", true, 300*time.Second)

	o := s.Decide()
	if !o.Approved || o.Duration != 60*time.Second {
		t.Errorf("expected approval for 1m, got %+v", o)
	}
	if o.Reason != None {
		t.Errorf("reason = %s, want none", o.Reason)
	}
}

func TestRemaining(t *testing.T) {
	now := time.Now()
	s := NewSession(1, now.Add(time.Minute))
	if r := s.Remaining(now); r != time.Minute {
		t.Errorf("remaining = %s, want 1m", r)
	}
	if s.Expired(now) {
		t.Error("session should not be expired yet")
	}
	if r := s.Remaining(now.Add(2 * time.Minute)); r != 0 {
		t.Errorf("remaining = %s, want 0", r)
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("session should be expired at the deadline")
	}
}

func TestLookupChoice(t *testing.T) {
	c, ok := LookupChoice(time.Hour)
	if !ok || c.Label != "1 hour" {
		t.Errorf("got %+v, %v", c, ok)
	}
	if _, ok := LookupChoice(42 * time.Second); ok {
		t.Error("expected no choice for 42s")
	}
}
