package mdsp

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

type timeoutCall struct {
	guildID string
	userID  string
	until   time.Time
}

// fakeAPI records everything the bot sends to discord.
type fakeAPI struct {
	mu sync.Mutex

	sent      []string
	complex   []*discordgo.MessageSend
	replies   []string
	edits     []*discordgo.MessageEdit
	embeds    []*discordgo.MessageEmbed
	responses []*discordgo.InteractionResponse
	timeouts  []timeoutCall

	members     map[string]*discordgo.Member
	history     []*discordgo.Message
	historyArgs []string
	respondErr  error
	timeoutErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{members: make(map[string]*discordgo.Member)}
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complex = append(f.complex, data)
	return &discordgo.Message{ID: "poll-message", ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeAPI) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeAPI) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyArgs = append(f.historyArgs, afterID)
	if limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeAPI) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return m, nil
}

func (f *fakeAPI) GuildMemberTimeout(guildID string, userID string, until *time.Time, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timeoutErr != nil {
		return f.timeoutErr
	}
	f.timeouts = append(f.timeouts, timeoutCall{guildID: guildID, userID: userID, until: *until})
	return nil
}

func (f *fakeAPI) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeAPI) replyMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.replies...)
}

func (f *fakeAPI) complexCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.complex)
}

func (f *fakeAPI) timeoutCalls() []timeoutCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]timeoutCall(nil), f.timeouts...)
}

func (f *fakeAPI) lastEdit() *discordgo.MessageEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

// promptID returns the custom ID of the last select menu shown.
func (f *fakeAPI) promptID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.responses) - 1; i >= 0; i-- {
		r := f.responses[i]
		if r.Data == nil || len(r.Data.Components) == 0 {
			continue
		}
		row, ok := r.Data.Components[0].(discordgo.ActionsRow)
		if !ok || len(row.Components) == 0 {
			continue
		}
		if menu, ok := row.Components[0].(discordgo.SelectMenu); ok {
			return menu.CustomID
		}
	}
	return ""
}

func (f *fakeAPI) responseTypes() []discordgo.InteractionResponseType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]discordgo.InteractionResponseType, 0, len(f.responses))
	for _, r := range f.responses {
		types = append(types, r.Type)
	}
	return types
}

func newTestBot(api *fakeAPI) *Bot {
	b := NewBot()
	b.logger = newLoggerTo(io.Discard)
	b.ss = newSession(api, b.logger)
	b.Config.Token = "test"
	b.Config.CooldownTimer = 0
	b.sleep = func(time.Duration) {}
	b.addCommands()
	return b
}

func testMessage(guildID, channelID, userID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "trigger",
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	}}
}

func componentInteraction(customID, userID string, values []string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "interaction-" + userID,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "guild",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
