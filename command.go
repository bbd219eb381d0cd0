package mdsp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type command struct {
	Name        string                              // Name of command
	Aliases     []string                            // Other names the command answers to
	Description string                              // Description of command for the help command
	OwnerOnly   bool                                // Only owners may run the command
	Exec        func(c *commandContext) interface{} // Function that will be executed when command is used
}

// commandContext is what a command sees of the message that invoked
// it.
type commandContext struct {
	*discordgo.MessageCreate
	Args []string
}

// addCommand will add a command that will trigger exec when name or
// one of the aliases is used.
func (b *Bot) addCommand(name, description string, aliases []string, exec func(c *commandContext) interface{}) *command {
	cmd := &command{
		Name:        strings.ToLower(name),
		Aliases:     aliases,
		Description: description,
		Exec:        exec,
	}
	b.commands[cmd.Name] = cmd
	for _, alias := range aliases {
		b.commands[strings.ToLower(alias)] = cmd
	}
	b.logger.info("Command added:", name)
	return cmd
}

// commandNames returns every name and alias a command answers to.
func (b *Bot) commandNames() []string {
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Bot) addCommands() {
	b.addCommand("mutevote", "Start a vote to mute the configured member", b.Config.MuteVote.Aliases, b.muteVote)
	b.addCommand("stopvote", "End the running mute vote early", nil, b.stopVote).OwnerOnly = true
	b.addCommand("help", "List the available commands", nil, b.help)
}

func (b *Bot) help(c *commandContext) interface{} {
	seen := make(map[*command]bool)
	e := NewEmbed().SetTitle("Commands").SetColor(colorNeutral)
	for _, name := range b.commandNames() {
		cmd := b.commands[name]
		if seen[cmd] {
			continue
		}
		seen[cmd] = true

		title := b.Config.CommandPrefix + cmd.Name
		if len(cmd.Aliases) > 0 {
			title = fmt.Sprintf("%s (%s)", title, strings.Join(cmd.Aliases, ", "))
		}
		e.AddField(title, cmd.Description, false)
	}
	return e
}
