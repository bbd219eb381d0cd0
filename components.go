package mdsp

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// choice is one option of a select menu prompt.
type choice struct {
	Label string
	Value string
}

func buttonRow(buttons ...discordgo.Button) []discordgo.MessageComponent {
	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		row.Components = append(row.Components, b)
	}
	return []discordgo.MessageComponent{row}
}

func voteButtons(muteID, keepID string, positive, negative int, disabled bool) []discordgo.MessageComponent {
	return buttonRow(
		discordgo.Button{
			Label:    fmt.Sprintf("Mute (%d)", positive),
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "\U0001F44D"},
			CustomID: muteID,
			Disabled: disabled,
		},
		discordgo.Button{
			Label:    fmt.Sprintf("Don't mute (%d)", negative),
			Style:    discordgo.DangerButton,
			CustomID: keepID,
			Disabled: disabled,
		},
	)
}

func selectMenu(customID, placeholder string, choices []choice) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(choices))
	for _, c := range choices {
		options = append(options, discordgo.SelectMenuOption{
			Label: c.Label,
			Value: c.Value,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: placeholder,
					Options:     options,
				},
			},
		},
	}
}
