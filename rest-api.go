package mdsp

import (
	"encoding/json"
	"net/http"
	"time"
)

type voteStatus struct {
	Running bool      `json:"running"`
	Target  string    `json:"target,omitempty"`
	For     int       `json:"for"`
	Against int       `json:"against"`
	Needed  int       `json:"needed,omitempty"`
	EndsAt  time.Time `json:"ends_at,omitempty"`
}

func (b *Bot) restHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", http.NotFound)
	mux.HandleFunc("/vote", b.serveVoteStatus)
	return mux
}

func (b *Bot) serveVoteStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var status voteStatus
	if p := b.currentPoll(); p != nil {
		status.Running = true
		status.Target = memberName(p.target)
		status.For, status.Against = p.tally()
		status.Needed = p.session.Threshold
		status.EndsAt = p.session.Deadline.UTC()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		b.logger.error("Error writing vote status -", err)
	}
}

func (b *Bot) startRESTApi() {
	srv := &http.Server{
		Addr:              ":" + b.Config.RESTPort,
		Handler:           b.restHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		b.logger.error("Error on creating listener -", err)
	}
}
