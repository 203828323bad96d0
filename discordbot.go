package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/osbdet/osbdetweb/environment"
	"github.com/osbdet/osbdetweb/shutdown"
	"github.com/rs/zerolog"
)

type DiscordBot struct {
	config  *DiscordBotConfig
	env     environment.Environment
	control *shutdown.Control

	logger             zerolog.Logger
	session            *discordgo.Session
	registeredCommands []*discordgo.ApplicationCommand

	// Replies go through these so handlers run without a live gateway.
	respond  func(*discordgo.Interaction, *discordgo.InteractionResponse) error
	followup func(*discordgo.Interaction, *discordgo.WebhookParams) error

	ctx    context.Context
	cancel context.CancelFunc
}

type DiscordBotConfig struct {
	BotToken string `yaml:"bot-token" validate:"required"`
	GuildId  string `yaml:"guild-id"`
}

func (d *DiscordBot) Start() error {
	err := d.session.Open()
	if err != nil {
		return fmt.Errorf("cannot open the session: %w", err)
	}

	d.logger.Info().Msg("Adding commands...")
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, v := range commands {
		cmd, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, d.config.GuildId, v)
		if err != nil {
			d.registeredCommands = registeredCommands
			d.Stop()
			return fmt.Errorf("cannot create %q command: %w", v.Name, err)
		}
		registeredCommands = append(registeredCommands, cmd)
	}
	d.registeredCommands = registeredCommands

	return nil
}

func (d *DiscordBot) Stop() {
	d.cancel()

	d.logger.Info().Msg("Removing commands...")

	for _, v := range d.registeredCommands {
		err := d.session.ApplicationCommandDelete(d.session.State.User.ID, d.config.GuildId, v.ID)
		if err != nil {
			d.logger.Error().Err(err).Str("command", v.Name).Msg("Cannot delete command")
		}
	}
	d.registeredCommands = nil

	err := d.session.Close()
	if err != nil {
		d.logger.Error().Err(err).Msg("Unable to close the session")
	}

	d.logger.Info().Msg("Gracefully shutting down")
}

// interaction bundles the replies every command sends: an ephemeral
// acknowledgement followed by one or more follow-ups.
type interaction struct {
	bot    *DiscordBot
	event  *discordgo.InteractionCreate
	logger zerolog.Logger
}

// interactionUser returns the author of a command. Member is only set for
// commands sent from a guild; DMs carry the author in User.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{Username: "unknown"}
}

func (d *DiscordBot) newInteraction(i *discordgo.InteractionCreate) *interaction {
	return &interaction{
		bot:    d,
		event:  i,
		logger: d.logger.With().Str("username", interactionUser(i).Username).Logger(),
	}
}

func (it *interaction) acknowledge() bool {
	err := it.bot.respond(it.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: "⏳ Reaching the OSBDET environment… Please wait",
		},
	})
	if err != nil {
		it.logger.Error().Err(err).Msg("Failed to send interaction response")
		return false
	}
	return true
}

func (it *interaction) followup(content string) {
	err := it.bot.followup(it.event.Interaction, &discordgo.WebhookParams{
		Flags:   discordgo.MessageFlagsEphemeral,
		Content: content,
	})
	if err != nil {
		it.logger.Error().Err(err).Msg("Failed to send follow-up message")
	}
}

// state returns the environment state, or false once the failure has been
// reported to the user.
func (d *DiscordBot) state(it *interaction, failure string) (environment.State, bool) {
	state := d.env.State()

	for _, signal := range []struct {
		err error
		msg string
	}{
		{state.Running.Err, "Failed to retrieve RUNNING state"},
		{state.Reachable.Err, "Failed to retrieve REACHABLE state"},
	} {
		if signal.err != nil {
			it.logger.Error().Err(signal.err).Msg(signal.msg)
			it.followup(failure)
			return state, false
		}
	}
	return state, true
}

func (d *DiscordBot) statusHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	it := d.newInteraction(i)
	it.logger.Info().Msg("A user checks the environment status")

	if !it.acknowledge() {
		return
	}

	state, ok := d.state(it, "❌ Oops! Something went wrong while checking the environment")
	if !ok {
		return
	}

	if state.Running.Value || state.Reachable.Value {
		it.followup("🌞 OSBDET is up!")
	} else {
		it.followup("💤 OSBDET is switched off!")
	}
}

func (d *DiscordBot) monitorStartup(it *interaction) {
	it.logger.Info().Msg("Monitoring environment startup...")

	intervals, err := environment.GenerateLogarithmicIntervals(3*time.Minute, 5*time.Second, 40*time.Second, 1.5)
	if err != nil {
		it.logger.Error().Err(err).Msg("Failed to generate intervals for startup monitoring")
		return
	}

	start := time.Now()

	for _, interval := range intervals {
		it.logger.Debug().
			Dur("elapsed_time", time.Since(start).Round(time.Second)).
			Dur("next_interval", interval.Round(time.Second)).
			Msg("Waiting before next environment check")

		select {
		case <-d.ctx.Done():
			it.logger.Info().Msg("Startup monitoring stopped")
			return
		case <-time.After(interval):
		}

		state := d.env.State()
		if state.Running.Err != nil || state.Reachable.Err != nil {
			it.logger.Error().Msg("Failed to retrieve environment state during monitoring")
			continue
		}

		if state.Running.Value && state.Reachable.Value {
			it.logger.Info().Msgf("Environment started after %s", time.Since(start).Round(time.Second))
			it.followup("✅ OSBDET is now online!")
			return
		}
	}

	it.logger.Warn().Msg("Environment did not start within the timeout period")
	it.followup("😅 OSBDET is taking longer than usual to start. Please check it manually")
}

func (d *DiscordBot) powerOnHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	it := d.newInteraction(i)
	it.logger.Info().Msg("A user attempts to switch on the environment")

	if !it.acknowledge() {
		return
	}

	failure := "❌ Oops! Something went wrong while starting OSBDET"
	state, ok := d.state(it, failure)
	if !ok {
		return
	}
	if state.Running.Value || state.Reachable.Value {
		it.logger.Info().Msg("The environment is already switched on")
		it.followup("✅ OSBDET is already running!")
		return
	}

	result, err := d.env.Start(context.Background())
	if err == nil && !result.Succeeded() {
		err = fmt.Errorf("status %d: %s", result.Status, result.Output)
	}
	if err != nil {
		it.logger.Error().Err(err).Msg("A problem occurred when switching on the environment")
		it.followup(failure)
		return
	}
	it.logger.Info().Msg("Environment switched on")
	it.followup("✨ OSBDET is waking up! It’ll be ready soon")

	go d.monitorStartup(it)
}

func (d *DiscordBot) powerOffHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	it := d.newInteraction(i)
	it.logger.Info().Msg("A user attempts to switch off the environment")

	if !it.acknowledge() {
		return
	}

	result := d.control.Request(context.Background())
	if !result.Succeeded() {
		it.followup("❌ " + shutdown.MsgStopFailure + result.Output)
		return
	}
	it.followup("🛌 " + shutdown.MsgStopped)
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:         "osbdet_status",
		Description:  "Provides the current status of the OSBDET environment",
		DMPermission: new(bool),
	},
	{
		Name:         "osbdet_poweron",
		Description:  "Switches the OSBDET environment on",
		DMPermission: new(bool),
	},
	{
		Name:         "osbdet_poweroff",
		Description:  "Switches the whole OSBDET environment off",
		DMPermission: new(bool),
		DefaultMemberPermissions: func() *int64 {
			perms := int64(discordgo.PermissionAdministrator)
			return &perms
		}(),
	},
}

func NewDiscordBot(config *DiscordBotConfig, env environment.Environment, control *shutdown.Control) (*DiscordBot, error) {
	logger := newLogger("discord")

	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("invalid bot parameters: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bot := &DiscordBot{
		config:  config,
		env:     env,
		control: control,
		logger:  logger,
		session: session,
		respond: func(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
			return session.InteractionRespond(i, r)
		},
		followup: func(i *discordgo.Interaction, params *discordgo.WebhookParams) error {
			_, err := session.FollowupMessageCreate(i, true, params)
			return err
		},
		ctx:    ctx,
		cancel: cancel,
	}

	commandHandlers := map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"osbdet_status":   bot.statusHandler,
		"osbdet_poweron":  bot.powerOnHandler,
		"osbdet_poweroff": bot.powerOffHandler,
	}

	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info().
			Str("username", s.State.User.Username).
			Msg(fmt.Sprintf("Logged in as: %v", s.State.User.Username))
	})

	return bot, nil
}
