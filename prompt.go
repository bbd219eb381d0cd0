package mdsp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

type componentHandler func(i *discordgo.InteractionCreate)

// componentRouter sends message component interactions to whoever
// registered their custom ID.
type componentRouter struct {
	mu     sync.Mutex
	routes map[string]componentHandler
}

func newComponentRouter() *componentRouter {
	return &componentRouter{routes: make(map[string]componentHandler)}
}

// handle registers h for customID. The returned func removes it.
func (r *componentRouter) handle(customID string, h componentHandler) func() {
	r.mu.Lock()
	r.routes[customID] = h
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.routes, customID)
		r.mu.Unlock()
	}
}

// dispatch runs the handler for the interaction's custom ID and
// reports whether there was one.
func (r *componentRouter) dispatch(i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	r.mu.Lock()
	h, ok := r.routes[i.MessageComponentData().CustomID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	h(i)
	return true
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// choicePrompt asks a single user to pick one of Choices.
type choicePrompt struct {
	Question     string
	Placeholder  string
	Confirmation string
	Choices      []choice
	Timeout      time.Duration
}

// awaitChoice answers i with an ephemeral select menu and waits for
// a selection. It returns false if the prompt times out or ctx is
// done, and an error if the prompt could not be shown at all.
func (b *Bot) awaitChoice(ctx context.Context, i *discordgo.Interaction, p choicePrompt) (string, bool, error) {
	customID := "prompt:" + uuid.NewString()
	picked := make(chan *discordgo.InteractionCreate, 1)
	remove := b.router.handle(customID, func(ic *discordgo.InteractionCreate) {
		select {
		case picked <- ic:
		default:
		}
	})
	defer remove()

	err := b.ss.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    p.Question,
			Components: selectMenu(customID, p.Placeholder, p.Choices),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("showing prompt: %w", err)
	}

	timer := time.NewTimer(p.Timeout)
	defer timer.Stop()

	select {
	case ic := <-picked:
		values := ic.MessageComponentData().Values
		if len(values) == 0 {
			return "", false, nil
		}
		b.ss.Respond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    p.Confirmation,
				Components: []discordgo.MessageComponent{},
			},
		})
		return values[0], true, nil
	case <-timer.C:
		return "", false, nil
	case <-ctx.Done():
		return "", false, nil
	}
}
