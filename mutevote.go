package mdsp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anorb/mdsp/vote"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

var errVoteRunning = errors.New("a vote is already running")

type ballot struct {
	userID    string
	forMuting bool
	duration  time.Duration
}

// mutePoll is one running vote. Its vote.Session is only touched by
// the goroutine running runMutePoll.
type mutePoll struct {
	id       string
	muteID   string
	keepID   string
	guildID  string
	targetID string
	target   *discordgo.Member
	content  string
	session  *vote.Session

	ballots chan ballot
	stop    chan struct{}
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	stopOnce sync.Once

	mu       sync.Mutex
	positive int
	negative int
}

func newMutePoll(guildID, targetID string, target *discordgo.Member, needed int, deadline time.Time) *mutePoll {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &mutePoll{
		id:       id,
		muteID:   "mutevote:" + id + ":mute",
		keepID:   "mutevote:" + id + ":keep",
		guildID:  guildID,
		targetID: targetID,
		target:   target,
		content:  fmt.Sprintf("Mute %s? Voting ends <t:%d:R>\nVotes needed: %d", memberName(target), deadline.Unix(), needed),
		session:  vote.NewSession(needed, deadline),
		ballots:  make(chan ballot),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// cast hands a ballot to the poll. Ballots arriving after the poll
// ended are dropped.
func (p *mutePoll) cast(bl ballot) bool {
	select {
	case p.ballots <- bl:
		return true
	case <-p.done:
		return false
	}
}

// halt ends voting early.
func (p *mutePoll) halt() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *mutePoll) tally() (positive, negative int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positive, p.negative
}

func (p *mutePoll) setTally(positive, negative int) {
	p.mu.Lock()
	p.positive, p.negative = positive, negative
	p.mu.Unlock()
}

func memberName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return "unknown"
	}
	return m.User.Username
}

func durationChoices() []choice {
	choices := make([]choice, 0, len(vote.DurationChoices))
	for _, c := range vote.DurationChoices {
		choices = append(choices, choice{
			Label: c.Label,
			Value: strconv.Itoa(int(c.Duration / time.Second)),
		})
	}
	return choices
}

func parseDurationChoice(value string) time.Duration {
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// beginPoll makes p the active poll unless one is already running.
func (b *Bot) beginPoll(p *mutePoll) error {
	b.voteMu.Lock()
	defer b.voteMu.Unlock()
	if b.activePoll != nil {
		return errVoteRunning
	}
	b.activePoll = p
	return nil
}

func (b *Bot) endPoll(p *mutePoll) {
	b.voteMu.Lock()
	if b.activePoll == p {
		b.activePoll = nil
	}
	b.voteMu.Unlock()
}

func (b *Bot) currentPoll() *mutePoll {
	b.voteMu.Lock()
	defer b.voteMu.Unlock()
	return b.activePoll
}

func (b *Bot) stopActivePoll() bool {
	p := b.currentPoll()
	if p == nil {
		return false
	}
	p.halt()
	return true
}

func (b *Bot) stopVote(c *commandContext) interface{} {
	if !b.stopActivePoll() {
		return "No vote is running."
	}
	return "Stopping the vote."
}

// muteVote runs a whole vote and answers in the channel itself, so
// it returns nil unless a vote is already running.
func (b *Bot) muteVote(c *commandContext) interface{} {
	cfg := b.Config.MuteVote
	if c.GuildID == "" {
		return nil
	}
	if c.GuildID != cfg.GuildID && !b.isOwner(c.Author.ID) {
		return nil
	}
	if cfg.TargetID == "" {
		b.logger.info("Mute vote requested but no target is configured")
		return nil
	}

	target, err := b.ss.Member(c.GuildID, cfg.TargetID)
	if err != nil || target == nil {
		b.logger.info("Mute vote target not found in guild", c.GuildID, err)
		return nil
	}

	deadline := time.Now().Add(time.Duration(cfg.VoteSeconds) * time.Second)
	p := newMutePoll(c.GuildID, cfg.TargetID, target, cfg.VotesNeeded, deadline)
	if err := b.beginPoll(p); err != nil {
		if errors.Is(err, errVoteRunning) {
			return "A vote is already running!"
		}
		return nil
	}
	defer b.endPoll(p)

	b.runMutePoll(c.ChannelID, p)
	return nil
}

func (b *Bot) runMutePoll(channelID string, p *mutePoll) {
	defer p.cancel()

	removeMute := b.router.handle(p.muteID, func(i *discordgo.InteractionCreate) {
		b.onMuteButton(p, i)
	})
	defer removeMute()
	removeKeep := b.router.handle(p.keepID, func(i *discordgo.InteractionCreate) {
		b.onKeepButton(p, i)
	})
	defer removeKeep()

	msg := b.ss.SendComplex(channelID, &discordgo.MessageSend{
		Content:    p.content,
		Components: voteButtons(p.muteID, p.keepID, 0, 0, false),
	})
	if msg == nil {
		close(p.done)
		return
	}

	b.logger.info("Mute vote started:", p.id, memberName(p.target))
	b.collectVotes(p, msg)
	p.cancel()

	outcome := p.session.Decide()
	b.ss.Edit(msg, "Voting has ended!", resultEmbed(p, outcome).MessageEmbed,
		voteButtons(p.muteID, p.keepID, outcome.Positive, outcome.Negative, true))

	b.applyOutcome(p, msg, outcome)
}

// collectVotes records ballots until the deadline passes or the poll
// is halted.
func (b *Bot) collectVotes(p *mutePoll, msg *discordgo.Message) {
	defer close(p.done)

	timer := time.NewTimer(p.session.Remaining(time.Now()))
	defer timer.Stop()

	for {
		select {
		case bl := <-p.ballots:
			p.session.Record(bl.userID, bl.forMuting, bl.duration)
			positive, negative := p.session.Tally()
			p.setTally(positive, negative)
			b.ss.Edit(msg, p.content, nil, voteButtons(p.muteID, p.keepID, positive, negative, false))
		case <-timer.C:
			return
		case <-p.stop:
			b.logger.info("Mute vote stopped early:", p.id)
			return
		}
	}
}

func (b *Bot) onMuteButton(p *mutePoll, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	timeout := time.Duration(b.Config.MuteVote.PromptSeconds) * time.Second
	if remaining := p.session.Deadline.Sub(time.Now()); remaining < timeout {
		timeout = remaining
	}

	value, ok, err := b.awaitChoice(p.ctx, i.Interaction, choicePrompt{
		Question:     "For how long?",
		Placeholder:  "Select a mute duration",
		Confirmation: "Selected duration.",
		Choices:      durationChoices(),
		Timeout:      timeout,
	})

	if err != nil {
		// the voter never saw the durations, so nothing was chosen
		b.logger.info("Dropping mute vote -", userID, err)
		return
	}

	var d time.Duration
	if ok {
		d = parseDurationChoice(value)
	}
	p.cast(ballot{userID: userID, forMuting: true, duration: d})
}

func (b *Bot) onKeepButton(p *mutePoll, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if userID == "" {
		return
	}
	b.ss.Respond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	p.cast(ballot{userID: userID, forMuting: false})
}

func resultEmbed(p *mutePoll, o vote.Outcome) *Embed {
	e := NewEmbed().
		SetTitle("Mute vote for "+memberName(p.target)).
		AddField("For", strconv.Itoa(o.Positive), true).
		AddField("Against", strconv.Itoa(o.Negative), true).
		AddField("Needed", strconv.Itoa(p.session.Threshold), true).
		SetFooter("Vote " + p.id).
		SetTimestamp(time.Now())

	if o.Approved {
		label := o.Duration.String()
		if c, ok := vote.LookupChoice(o.Duration); ok {
			label = c.Label
		}
		return e.SetColor(colorApproved).SetDescription("Muted for " + label)
	}
	return e.SetColor(colorRejected).SetDescription("Not muted: " + o.Reason.String())
}

func (b *Bot) applyOutcome(p *mutePoll, msg *discordgo.Message, o vote.Outcome) {
	name := memberName(p.target)

	switch {
	case o.Reason == vote.NotEnoughVotes:
		b.ss.Reply(msg, fmt.Sprintf("Not enough votes! %d votes for, %d votes against.", o.Positive, o.Negative))
		return
	case o.Reason == vote.NoDuration:
		b.ss.Reply(msg, fmt.Sprintf("Enough votes, but nobody picked a mute duration. %s stays unmuted.", name))
		return
	}

	until := time.Now().Add(o.Duration)
	b.ss.Reply(msg, fmt.Sprintf("Muting %s until <t:%d:R>", name, until.Unix()))

	reason := fmt.Sprintf("Muted by a vote. %d votes for, %d votes against.", o.Positive, o.Negative)
	if err := b.ss.Timeout(p.guildID, p.targetID, until, reason); err != nil {
		b.logger.error("Failed to mute member -", err)
		b.ss.Reply(msg, fmt.Sprintf("Failed to mute %s.", name))
		return
	}
	b.logger.info("Mute vote passed:", p.id, name, o.Duration)
}
