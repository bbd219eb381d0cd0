package mdsp

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config contains all options for the config file
type Config struct {
	Token                 string
	CommandPrefix         string
	DefaultChannelID      string
	CooldownTimer         int
	WelcomeBackMessage    string
	CooldownMessage       string
	UnknownCommandMessage string
	OwnerOnlyMessage      string
	OwnerIDs              []string
	RESTEnabled           bool
	RESTPort              string
	MuteVote              MuteVoteConfig
	Responder             ResponderConfig
}

// MuteVoteConfig contains the options for the mute vote command
type MuteVoteConfig struct {
	GuildID       string   // Guild the vote may be started in by anyone
	TargetID      string   // Member that gets muted
	VotesNeeded   int      // Margin of votes for over votes against
	VoteSeconds   int      // How long voting stays open
	PromptSeconds int      // How long a voter has to pick a duration
	Aliases       []string // Extra names for the mutevote command
}

// ResponderConfig contains the options for replying after another
// bot answered one of our commands
type ResponderConfig struct {
	Prefix        string
	RivalBotID    string
	SkipChance    float64
	DelayMillis   int
	JitterMillis  int
	HistoryLimit  int
	ExtraCommands []string
	Lines         []string
}

// Bot contains everything about the bot itself
type Bot struct {
	Config Config

	dg       *discordgo.Session
	ss       *session
	logger   *mdspLogger
	commands map[string]*command
	router   *componentRouter
	cron     *cron.Cron

	ownersMu sync.RWMutex
	owners   map[string]bool

	cooldownMu   sync.Mutex
	cooldownList map[string]time.Time

	voteMu     sync.Mutex
	activePoll *mutePoll

	randFloat func() float64
	randIntn  func(n int) int
	sleep     func(d time.Duration)
}

// NewBot will create a new Bot with default config and return it.
// The config is loaded when Start is called.
func NewBot() *Bot {
	return &Bot{
		Config:       getDefaultConfig(),
		logger:       newLogger(),
		commands:     make(map[string]*command),
		router:       newComponentRouter(),
		owners:       make(map[string]bool),
		cooldownList: make(map[string]time.Time),
		randFloat:    rand.Float64,
		randIntn:     rand.Intn,
		sleep:        time.Sleep,
	}
}

// Ask user for input using prompt and returns the entry and any
// errors
func getInput(prompt string) (string, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// Returns the default config settings for the bot
func getDefaultConfig() Config {
	return Config{
		CommandPrefix:         "!",
		CooldownTimer:         10,
		CooldownMessage:       "Too many commands at once!",
		UnknownCommandMessage: "Invalid command!",
		OwnerOnlyMessage:      "Only the bot owner can do that.",
		RESTPort:              "8080",
		MuteVote: MuteVoteConfig{
			VotesNeeded:   3,
			VoteSeconds:   10 * 60,
			PromptSeconds: 180,
		},
		Responder: ResponderConfig{
			Prefix:       "f!",
			SkipChance:   1.0 / 3,
			DelayMillis:  2000,
			HistoryLimit: 5,
		},
	}
}

// createMinimalConfig prompts the user to enter a Token, guild and
// target member for the Config. This is used if no config is found.
func (b *Bot) createMinimalConfig(path string) error {
	b.Config = getDefaultConfig()

	var err error
	if b.Config.Token, err = getInput("Enter token: "); err != nil {
		return err
	}
	if b.Config.MuteVote.GuildID, err = getInput("Enter guild ID: "); err != nil {
		return err
	}
	if b.Config.MuteVote.TargetID, err = getInput("Enter ID of the member to vote on: "); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(b.Config)
}

func (b *Bot) loadConfig(configPath string) error {
	b.Config = getDefaultConfig()

	if _, err := toml.DecodeFile(configPath, &b.Config); err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	if token := os.Getenv("MDSP_TOKEN"); token != "" {
		b.Config.Token = token
	}

	if b.Config.Token == "" {
		return errors.New("no Token set in config")
	}

	if b.Config.MuteVote.TargetID == "" {
		b.logger.info("WARNING: No MuteVote.TargetID set in config, mutevote will do nothing")
	}
	if b.Config.MuteVote.VoteSeconds <= 0 {
		return fmt.Errorf("MuteVote.VoteSeconds must be positive, got %d", b.Config.MuteVote.VoteSeconds)
	}
	if b.Config.MuteVote.PromptSeconds <= 0 {
		return fmt.Errorf("MuteVote.PromptSeconds must be positive, got %d", b.Config.MuteVote.PromptSeconds)
	}

	if n := b.Config.Responder.HistoryLimit; n < 1 || n > 100 {
		return fmt.Errorf("Responder.HistoryLimit must be between 1 and 100, got %d", n)
	}
	if c := b.Config.Responder.SkipChance; c < 0 || c > 1 {
		return fmt.Errorf("Responder.SkipChance must be between 0 and 1, got %v", c)
	}

	for _, id := range b.Config.OwnerIDs {
		b.addOwner(id)
	}
	return nil
}

func (b *Bot) createSession() error {
	dg, err := discordgo.New("Bot " + b.Config.Token)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	b.dg = dg
	b.ss = newSession(dg, b.logger)
	return nil
}

// startCron schedules pruning of expired cooldowns.
func (b *Bot) startCron() error {
	b.cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := b.cron.AddFunc("@every 1m", b.pruneCooldowns); err != nil {
		return fmt.Errorf("error scheduling cooldown pruning: %w", err)
	}
	b.cron.Start()
	return nil
}

// Start will load the config, add handler functions to the Session
// and open the websocket connection. It blocks until the process is
// interrupted.
func (b *Bot) Start() {
	configPath := flag.String("config", "./config.toml", "path to the toml config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		b.logger.error("Error loading .env file -", err)
	}

	// Check if config exists, if it doesn't use
	// createMinimalConfig to generate one.
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		b.logger.info("Config not detected, attempting to create...")
		if err := b.createMinimalConfig(*configPath); err != nil {
			b.logger.fatal("Error creating config -", err)
		}
	}

	if err := b.loadConfig(*configPath); err != nil {
		b.logger.fatal("Error loading config -", err)
	}

	if err := b.createSession(); err != nil {
		b.logger.fatal(err.Error())
	}

	b.addCommands()

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		b.logger.fatal("Error opening websocket connection -", err)
	}

	if err := b.startCron(); err != nil {
		b.logger.fatal(err.Error())
	}

	if b.Config.RESTEnabled {
		go b.startRESTApi()
	}

	b.logger.info("Bot is now running. Press CTRL-C to exit.")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-c

	b.logger.info("Bot is now shutting down.")

	b.stopActivePoll()
	<-b.cron.Stop().Done()

	if err := b.dg.Close(); err != nil {
		b.logger.fatal("Error closing discord session -", err)
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	app, err := s.Application("@me")
	if err != nil {
		b.logger.error("Error fetching application owner -", err)
	} else if app.Owner != nil {
		b.addOwner(app.Owner.ID)
	}

	if b.Config.WelcomeBackMessage != "" && b.Config.DefaultChannelID != "" {
		b.ss.SendMessage(b.Config.DefaultChannelID, b.Config.WelcomeBackMessage)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Always ignore bot users (including itself)
	if m.Author == nil || m.Author.Bot {
		return
	}

	go b.handleCommand(m)
	go b.maybeDisendorse(m)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if !b.router.dispatch(i) {
		// Component of a vote that has already ended
		b.ss.Respond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}
}

func (b *Bot) addOwner(userID string) {
	b.ownersMu.Lock()
	b.owners[userID] = true
	b.ownersMu.Unlock()
}

func (b *Bot) isOwner(userID string) bool {
	b.ownersMu.RLock()
	defer b.ownersMu.RUnlock()
	return b.owners[userID]
}

// respondToUser is a helper method around SendMessage that will
// mention the user who created the message.
func (b *Bot) respondToUser(m *discordgo.MessageCreate, response string) {
	b.ss.SendMessage(m.ChannelID, m.Author.Mention()+" "+response)
}

// attemptCommand will check if comStr is a known command. If it is,
// it will return the command response and whether a command was
// found.
func (b *Bot) attemptCommand(comStr string, c *commandContext) (resp interface{}, found bool) {
	com, found := b.commands[comStr]
	if !found {
		return nil, false
	}
	if com.OwnerOnly && !b.isOwner(c.Author.ID) {
		return b.Config.OwnerOnlyMessage, true
	}
	return com.Exec(c), true
}

func (b *Bot) handleCommand(m *discordgo.MessageCreate) {
	if !strings.HasPrefix(m.Content, b.Config.CommandPrefix) {
		return
	}

	commandText := strings.Fields(strings.ToLower(strings.TrimPrefix(m.Content, b.Config.CommandPrefix)))
	if len(commandText) == 0 {
		return
	}

	if !b.canPost(m.Author.ID) {
		b.respondToUser(m, b.Config.CooldownMessage)
		return
	}

	com := commandText[0]
	c := &commandContext{MessageCreate: m, Args: commandText[1:]}
	commandResp, found := b.attemptCommand(com, c)
	if !found {
		b.respondToUser(m, b.Config.UnknownCommandMessage)
		return
	}
	b.startCooldown(m.Author.ID)

	switch v := commandResp.(type) {
	case string:
		b.respondToUser(m, v)
	case *Embed:
		b.ss.SendEmbed(m.ChannelID, v.MessageEmbed)
	}
}

// Returns whether or not the user can issue a command based on a timer.
func (b *Bot) canPost(user string) bool {
	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()
	if userTime, isValid := b.cooldownList[user]; isValid {
		return time.Since(userTime).Seconds() > float64(b.Config.CooldownTimer)
	}
	return true
}

// Adds user to cooldown list.
func (b *Bot) startCooldown(user string) {
	b.cooldownMu.Lock()
	b.cooldownList[user] = time.Now()
	b.cooldownMu.Unlock()
}

// pruneCooldowns removes users whose cooldown has run out.
func (b *Bot) pruneCooldowns() {
	b.cooldownMu.Lock()
	defer b.cooldownMu.Unlock()
	for user, t := range b.cooldownList {
		if time.Since(t).Seconds() > float64(b.Config.CooldownTimer) {
			delete(b.cooldownList, user)
		}
	}
}
