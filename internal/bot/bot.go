package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/xaenox/standdown-bot/internal/classifier"
	"github.com/xaenox/standdown-bot/internal/moderation"
	"github.com/xaenox/standdown-bot/internal/scheduler"
	"github.com/xaenox/standdown-bot/internal/standdown"
	"github.com/xaenox/standdown-bot/internal/storage"
	"github.com/xaenox/standdown-bot/pkg/config"
	"go.uber.org/zap"
)

type Bot struct {
	session    *discordgo.Session
	storage    storage.Storage
	standdown  *standdown.Manager
	moderation *moderation.Engine
	scheduler  *scheduler.Scheduler
	logger     *zap.Logger

	guildID      string
	reminderTime string
	loc          *time.Location
}

func (b *Bot) location() *time.Location { return b.loc }

func New(cfg *config.Config, store storage.Storage, clf classifier.Classifier, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Schedule.Timezone, err)
	}

	adapter := newSessionAdapter(session)
	manager := standdown.NewManager(adapter, adapter, store, cfg.Discord.GuildID, cfg.Discord.AnnounceChannelID, loc, logger)
	engine := moderation.NewEngine(store, clf, adapter, adapter, nil, logger)

	b := &Bot{
		session:      session,
		storage:      store,
		standdown:    manager,
		moderation:   engine,
		scheduler:    scheduler.New(loc, logger),
		logger:       logger,
		guildID:      cfg.Discord.GuildID,
		reminderTime: cfg.Schedule.ReminderTime,
		loc:          loc,
	}

	if err := b.setupSchedules(cfg.Schedule.StanddownTime); err != nil {
		return nil, err
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b, nil
}

func (b *Bot) setupSchedules(standdownTime string) error {
	hour, minute, err := scheduler.ParseClock(standdownTime)
	if err != nil {
		return fmt.Errorf("invalid stand-down time: %w", err)
	}
	if err := b.scheduler.ScheduleStanddown(hour, minute, b.runDailyPost); err != nil {
		return err
	}

	hour, minute, err = scheduler.ParseClock(b.reminderTime)
	if err != nil {
		return fmt.Errorf("invalid reminder time: %w", err)
	}
	if err := b.scheduler.ScheduleWeekday(hour, minute, b.runReminders); err != nil {
		return err
	}

	return b.scheduler.Schedule("0 0 * * *", b.runMidnight)
}

func (b *Bot) runDailyPost() {
	if err := b.standdown.PostDaily(context.Background()); err != nil {
		b.logger.Error("Scheduled stand-down post failed", zap.Error(err))
	}
}

func (b *Bot) runReminders() {
	if err := b.standdown.SendReminders(context.Background()); err != nil {
		b.logger.Error("Scheduled reminder failed", zap.Error(err))
	}
}

// runMidnight clears the attendance set for the new day and sweeps the
// absence role across every guild the bot is in.
func (b *Bot) runMidnight() {
	b.standdown.Tracker().Reset()

	guildIDs := make([]string, 0, len(b.session.State.Guilds))
	for _, g := range b.session.State.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}
	b.moderation.MidnightSweep(context.Background(), guildIDs)
}

// Start opens the gateway connection and begins scheduling. It does not
// block; call Stop to shut down.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	b.scheduler.Start()
	return nil
}

func (b *Bot) Stop() {
	b.scheduler.Stop()
	if err := b.session.Close(); err != nil {
		b.logger.Error("Failed to close session", zap.Error(err))
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Logged in",
		zap.String("username", r.User.Username),
		zap.String("user_id", r.User.ID))

	if err := b.registerCommands(); err != nil {
		b.logger.Error("Failed to register commands", zap.Error(err))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	// Attendance: a first message in today's thread marks the member present.
	b.standdown.Tracker().Record(m.Author.ID, m.ChannelID)

	b.moderation.HandleMessage(context.Background(), moderation.Message{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if _, ok := moderation.ParseUndoCustomID(customID); !ok {
		return
	}

	response := b.moderation.HandleUndo(context.Background(), i.GuildID, interactionUserID(i), customID)
	if response == "" {
		return
	}
	b.respondEphemeral(s, i, response)
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

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	b.respondWithFlags(s, i, content, 0)
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	b.respondWithFlags(s, i, content, discordgo.MessageFlagsEphemeral)
}

func (b *Bot) respondWithFlags(s *discordgo.Session, i *discordgo.InteractionCreate, content string, flags discordgo.MessageFlags) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction", zap.Error(err))
	}
}

func (b *Bot) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	if err != nil {
		b.logger.Error("Failed to edit interaction reply", zap.Error(err))
	}
}
