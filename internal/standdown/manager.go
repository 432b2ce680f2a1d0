package standdown

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/xaenox/standdown-bot/internal/models"
	"github.com/xaenox/standdown-bot/internal/storage"
	"go.uber.org/zap"
)

const (
	announceTitle       = "It's stand-down time!"
	announceDescription = "Please do your stand-downs before the end of the day!"
	announceImageURL    = "https://media1.tenor.com/m/jT_iSTEezBAAAAAd/catjam.gif"
	announceColor       = 0xFF00D1

	reminderText = "❗ Please don't forget to do your stand-downs before the end of the day! ❗"
)

// Messenger is the slice of the Discord session the lifecycle needs to post.
type Messenger interface {
	CreateThread(ctx context.Context, channelID, name string) (string, error)
	SendMessage(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// Directory resolves the live guild roster.
type Directory interface {
	ListMembers(ctx context.Context, guildID string) ([]models.Member, error)
}

// Manager owns the daily stand-down thread lifecycle: it creates the thread,
// posts the roster and announcement, and sends straggler reminders.
type Manager struct {
	messenger Messenger
	directory Directory
	store     storage.Storage
	tracker   *Tracker
	window    *Window

	guildID           string
	announceChannelID string
	loc               *time.Location
	logger            *zap.Logger
	now               func() time.Time
}

func NewManager(messenger Messenger, directory Directory, store storage.Storage, guildID, announceChannelID string, loc *time.Location, logger *zap.Logger) *Manager {
	return &Manager{
		messenger:         messenger,
		directory:         directory,
		store:             store,
		tracker:           NewTracker(),
		window:            NewWindow(),
		guildID:           guildID,
		announceChannelID: announceChannelID,
		loc:               loc,
		logger:            logger,
		now:               time.Now,
	}
}

func (m *Manager) Tracker() *Tracker { return m.tracker }

func (m *Manager) Window() *Window { return m.window }

func (m *Manager) absenceRoleID(ctx context.Context) string {
	return m.store.Settings(ctx).AbsenceChecker.RoleID
}

// PostDaily creates today's thread, mentions the eligible roster and posts
// the announcement embed. While the suppression window is open the whole
// transition is skipped.
func (m *Manager) PostDaily(ctx context.Context) error {
	if m.window.Suppressed() {
		m.logger.Info("Scheduled stand-down is currently disabled",
			zap.Time("disabled_until", m.window.DisabledUntil()))
		return nil
	}

	members, err := m.directory.ListMembers(ctx, m.guildID)
	if err != nil {
		return fmt.Errorf("failed to fetch guild members: %w", err)
	}

	date := m.now().In(m.loc).Format("2 January 2006")
	threadID, err := m.messenger.CreateThread(ctx, m.announceChannelID, fmt.Sprintf("Daily Stand-down (%s)", date))
	if err != nil {
		return fmt.Errorf("failed to create daily thread: %w", err)
	}

	eligible := EligibleMembers(members, m.absenceRoleID(ctx), m.store.ExcludedUsers(ctx))
	if mentions := Mentions(eligible); mentions != "" {
		if err := m.messenger.SendMessage(ctx, threadID, mentions); err != nil {
			m.logger.Error("Failed to send roster mentions",
				zap.Error(err),
				zap.String("thread_id", threadID))
		}
	}

	if err := m.messenger.SendEmbed(ctx, threadID, announceEmbed(date)); err != nil {
		m.logger.Error("Failed to send announcement embed",
			zap.Error(err),
			zap.String("thread_id", threadID))
	}

	m.tracker.SetCurrentThread(threadID)
	m.tracker.Reset()

	m.logger.Info("Daily stand-down thread created",
		zap.String("thread_id", threadID),
		zap.Int("eligible_members", len(eligible)))
	return nil
}

// SendReminders mentions everyone who still owes a stand-down in today's
// thread. Without an active thread it is a no-op.
func (m *Manager) SendReminders(ctx context.Context) error {
	threadID := m.tracker.CurrentThreadID()
	if threadID == "" {
		return nil
	}

	members, err := m.directory.ListMembers(ctx, m.guildID)
	if err != nil {
		return fmt.Errorf("failed to fetch guild members: %w", err)
	}

	missing := MissingMembers(members, m.absenceRoleID(ctx), m.store.ExcludedUsers(ctx), m.tracker.Attended)
	if len(missing) == 0 {
		return nil
	}

	text := fmt.Sprintf("❗ %s ❗%s", Mentions(missing), reminderText)
	if err := m.messenger.SendMessage(ctx, threadID, text); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	m.logger.Info("Stand-down reminder sent",
		zap.String("thread_id", threadID),
		zap.Int("missing_members", len(missing)))
	return nil
}

func announceEmbed(date string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       announceTitle,
		Description: announceDescription,
		Color:       announceColor,
		Image:       &discordgo.MessageEmbedImage{URL: announceImageURL},
		Footer:      &discordgo.MessageEmbedFooter{Text: date},
	}
}
