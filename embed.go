package mdsp

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	embedLimitTitle       = 256
	embedLimitDescription = 4096
	embedLimitFieldValue  = 1024
	embedLimitFieldName   = 256
	embedLimitField       = 25
	embedLimitFooter      = 2048
)

const (
	colorNeutral  = 0x808080
	colorApproved = 0x57f287
	colorRejected = 0xed4245
)

// Embed is a wrapper around *discordgo.MessageEmbed
type Embed struct {
	*discordgo.MessageEmbed
}

// NewEmbed returns a new Embed with no fields set
func NewEmbed() *Embed {
	return &Embed{&discordgo.MessageEmbed{}}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit])
	}
	return s
}

// SetTitle sets the Embed's Title to title. Will truncate title if it
// is too long. Returns the modified Embed.
func (e *Embed) SetTitle(title string) *Embed {
	e.Title = truncate(title, embedLimitTitle)
	return e
}

// SetDescription sets the Embed's Description to description. Will
// truncate description if it is too long. Returns the modified Embed.
func (e *Embed) SetDescription(description string) *Embed {
	e.Description = truncate(description, embedLimitDescription)
	return e
}

// AddField creates an EmbedField with name and value and adds it to
// the Embed's Fields slice. Once the field limit is reached further
// fields are dropped.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	if len(e.Fields) >= embedLimitField {
		return e
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:   truncate(name, embedLimitFieldName),
		Value:  truncate(value, embedLimitFieldValue),
		Inline: inline,
	})
	return e
}

// SetFooter creates an EmbedFooter and applies it to the Embed's
// Footer.
// Parameters: text, iconURL
func (e *Embed) SetFooter(args ...string) *Embed {
	if len(args) == 0 {
		return e
	}
	footer := &discordgo.MessageEmbedFooter{Text: truncate(args[0], embedLimitFooter)}
	if len(args) > 1 {
		footer.IconURL = args[1]
	}
	e.Footer = footer
	return e
}

// SetColor sets the border color of the Embed.
func (e *Embed) SetColor(color int) *Embed {
	e.Color = color
	return e
}

// SetTimestamp sets the Embed's timestamp.
func (e *Embed) SetTimestamp(t time.Time) *Embed {
	e.Timestamp = t.UTC().Format(time.RFC3339)
	return e
}
