package mdsp

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// discordAPI is the part of *discordgo.Session the bot talks to.
type discordAPI interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberTimeout(guildID string, userID string, until *time.Time, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type session struct {
	api    discordAPI
	logger *mdspLogger
}

func newSession(api discordAPI, logger *mdspLogger) *session {
	return &session{api: api, logger: logger}
}

// SendMessage is a helper function around ChannelMessageSend from
// discordgo. It will send a message to a given channel.
func (ss *session) SendMessage(channelID string, message string) {
	if _, err := ss.api.ChannelMessageSend(channelID, message); err != nil {
		ss.logger.error("Failed to send message response -", err)
	}
}

// SendEmbed is a helper function around ChannelMessageSendEmbed from
// discordgo. It will send an embed message to a given channel.
func (ss *session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := ss.api.ChannelMessageSendEmbed(channelID, embed); err != nil {
		ss.logger.error("Failed to send embed message response -", err)
	}
}

// SendComplex sends ms to the channel and returns the created
// message, or nil if sending failed.
func (ss *session) SendComplex(channelID string, ms *discordgo.MessageSend) *discordgo.Message {
	m, err := ss.api.ChannelMessageSendComplex(channelID, ms)
	if err != nil {
		ss.logger.error("Failed to send complex message response -", err)
		return nil
	}
	return m
}

// Reply sends content as a reply to m.
func (ss *session) Reply(m *discordgo.Message, content string) {
	if _, err := ss.api.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		ss.logger.error("Failed to send reply -", err)
	}
}

// Edit replaces the content, embeds and components of m.
func (ss *session) Edit(m *discordgo.Message, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	me := discordgo.NewMessageEdit(m.ChannelID, m.ID).SetContent(content)
	if embed != nil {
		me.SetEmbed(embed)
	}
	me.Components = &components
	if _, err := ss.api.ChannelMessageEditComplex(me); err != nil {
		ss.logger.error("Failed to edit message -", err)
	}
}

// Respond answers an interaction, logging any failure.
func (ss *session) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	err := ss.api.InteractionRespond(i, resp)
	if err != nil {
		ss.logger.error("Failed to respond to interaction -", err)
	}
	return err
}

// Timeout mutes a guild member until the given time.
func (ss *session) Timeout(guildID, userID string, until time.Time, reason string) error {
	return ss.api.GuildMemberTimeout(guildID, userID, &until, discordgo.WithAuditLogReason(reason))
}

// MessagesAfter returns up to limit messages posted in the channel
// after the message with the given ID.
func (ss *session) MessagesAfter(channelID, messageID string, limit int) ([]*discordgo.Message, error) {
	return ss.api.ChannelMessages(channelID, limit, "", messageID, "")
}

// Member looks up a guild member.
func (ss *session) Member(guildID, userID string) (*discordgo.Member, error) {
	return ss.api.GuildMember(guildID, userID)
}
