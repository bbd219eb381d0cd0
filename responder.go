package mdsp

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// maybeDisendorse replies with a random configured line when a user
// runs one of our commands with the rival bot's prefix and the rival
// bot answers.
func (b *Bot) maybeDisendorse(m *discordgo.MessageCreate) {
	cfg := b.Config.Responder
	if len(cfg.Lines) == 0 || cfg.RivalBotID == "" || cfg.Prefix == "" {
		return
	}

	lower := strings.ToLower(m.Content)
	content := strings.TrimPrefix(lower, strings.ToLower(cfg.Prefix))
	if content == lower {
		return
	}
	if b.isOwner(m.Author.ID) {
		return
	}
	if b.randFloat() < cfg.SkipChance {
		return
	}
	if !b.isKnownCommand(content) {
		return
	}

	// Give the rival bot time to answer
	b.sleep(b.responderDelay())

	msgs, err := b.ss.MessagesAfter(m.ChannelID, m.ID, cfg.HistoryLimit)
	if err != nil {
		b.logger.error("Error reading channel history -", err)
		return
	}
	for _, msg := range msgs {
		if msg.Author != nil && msg.Author.ID == cfg.RivalBotID {
			b.ss.Reply(m.Message, cfg.Lines[b.randIntn(len(cfg.Lines))])
			return
		}
	}
}

func (b *Bot) responderDelay() time.Duration {
	cfg := b.Config.Responder
	d := time.Duration(cfg.DelayMillis) * time.Millisecond
	if cfg.JitterMillis > 0 {
		d += time.Duration(b.randIntn(cfg.JitterMillis)) * time.Millisecond
	}
	return d
}

func (b *Bot) isKnownCommand(content string) bool {
	names := append(b.commandNames(), b.Config.Responder.ExtraCommands...)
	for _, name := range names {
		if name != "" && strings.HasPrefix(content, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
