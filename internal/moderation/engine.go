package moderation

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/standdown-bot/internal/classifier"
	"github.com/xaenox/standdown-bot/internal/models"
	"github.com/xaenox/standdown-bot/internal/storage"
	"go.uber.org/zap"
)

const undoCustomIDPrefix = "remove_role_"

// UndoCustomID builds the component ID for the absence-undo button, scoped
// to the member the role was granted to.
func UndoCustomID(userID string) string {
	return undoCustomIDPrefix + userID
}

// ParseUndoCustomID extracts the scoped user ID from an undo button press.
func ParseUndoCustomID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, undoCustomIDPrefix) {
		return "", false
	}
	return strings.TrimPrefix(customID, undoCustomIDPrefix), true
}

// Roles is the narrow role-management surface the engine needs. Holders are
// always derived from live guild state, never cached locally.
type Roles interface {
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	RoleHolders(ctx context.Context, guildID, roleID string) ([]string, error)
}

// Replier posts watcher reactions back into the channel.
type Replier interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	ReplyWithUndo(ctx context.Context, channelID, messageID, userID string) error
}

// Message is the slice of an incoming Discord message the watchers evaluate.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorBot bool
	Content   string
}

// Engine runs the absence and smoking watchers over incoming messages and
// owns the undo flow and the midnight role sweep.
type Engine struct {
	store      storage.Storage
	classifier classifier.Classifier
	roles      Roles
	replier    Replier
	rng        *rand.Rand
	logger     *zap.Logger
}

func NewEngine(store storage.Storage, clf classifier.Classifier, roles Roles, replier Replier, rng *rand.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		store:      store,
		classifier: clf,
		roles:      roles,
		replier:    replier,
		rng:        rng,
		logger:     logger,
	}
}

// HandleMessage evaluates both watchers independently; a message in a channel
// both watchers monitor can trigger both.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) {
	if msg.AuthorBot {
		return
	}

	settings := e.store.Settings(ctx)
	eventID := uuid.New().String()

	e.checkAbsence(ctx, eventID, settings.AbsenceChecker, msg)
	e.checkSmoking(ctx, eventID, settings.SmokingChecker, msg)
}

func (e *Engine) checkAbsence(ctx context.Context, eventID string, cfg models.CheckerConfig, msg Message) {
	if !cfg.IsActive || cfg.ChannelID == "" || cfg.RoleID == "" || msg.ChannelID != cfg.ChannelID {
		return
	}

	if !e.classifier.Classify(ctx, msg.Content, classifier.VariantAbsence) {
		return
	}

	hasRole, err := e.roles.HasRole(ctx, msg.GuildID, msg.AuthorID, cfg.RoleID)
	if err != nil {
		e.logger.Error("Failed to check absence role",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("user_id", msg.AuthorID))
		return
	}

	if !hasRole {
		if err := e.roles.AddRole(ctx, msg.GuildID, msg.AuthorID, cfg.RoleID); err != nil {
			e.logger.Error("Failed to assign absence role",
				zap.Error(err),
				zap.String("event_id", eventID),
				zap.String("user_id", msg.AuthorID))
			return
		}
		e.logger.Info("Absence role assigned",
			zap.String("event_id", eventID),
			zap.String("user_id", msg.AuthorID),
			zap.String("role_id", cfg.RoleID))
	}

	if err := e.replier.ReplyWithUndo(ctx, msg.ChannelID, msg.MessageID, msg.AuthorID); err != nil {
		e.logger.Error("Failed to send absence reply",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("user_id", msg.AuthorID))
	}
}

func (e *Engine) checkSmoking(ctx context.Context, eventID string, cfg models.CheckerConfig, msg Message) {
	if !cfg.IsActive || cfg.ChannelID == "" || msg.ChannelID != cfg.ChannelID {
		return
	}

	if !e.classifier.Classify(ctx, msg.Content, classifier.VariantSmoking) {
		return
	}

	reply := cannedSmokingReplies[e.rng.Intn(len(cannedSmokingReplies))]
	if err := e.replier.Reply(ctx, msg.ChannelID, msg.MessageID, reply); err != nil {
		e.logger.Error("Failed to send smoking reply",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("user_id", msg.AuthorID))
		return
	}

	e.logger.Info("Smoking reply sent",
		zap.String("event_id", eventID),
		zap.String("user_id", msg.AuthorID))
}

// Undo-flow replies, shown ephemerally to whoever pressed the button.
const (
	undoNotYours = "This button is not for you!"
	undoRemoved  = "Your absence role has been removed."
	undoFailed   = "There was an error removing your role."
)

// HandleUndo processes an absence-undo button press and returns the
// ephemeral response text for the presser.
func (e *Engine) HandleUndo(ctx context.Context, guildID, presserID, customID string) string {
	targetID, ok := ParseUndoCustomID(customID)
	if !ok {
		return ""
	}

	if presserID != targetID {
		return undoNotYours
	}

	roleID := e.store.Settings(ctx).AbsenceChecker.RoleID
	if roleID == "" {
		return undoFailed
	}

	if err := e.roles.RemoveRole(ctx, guildID, targetID, roleID); err != nil {
		e.logger.Error("Failed to remove absence role",
			zap.Error(err),
			zap.String("user_id", targetID))
		return undoFailed
	}

	e.logger.Info("Absence role removed via undo button",
		zap.String("user_id", targetID))
	return undoRemoved
}

// MidnightSweep removes the absence role from every holder in every guild.
// This is the only automatic removal path besides the undo button.
func (e *Engine) MidnightSweep(ctx context.Context, guildIDs []string) {
	cfg := e.store.Settings(ctx).AbsenceChecker
	if !cfg.IsActive || cfg.RoleID == "" {
		return
	}

	for _, guildID := range guildIDs {
		holders, err := e.roles.RoleHolders(ctx, guildID, cfg.RoleID)
		if err != nil {
			e.logger.Error("Failed to list absence role holders",
				zap.Error(err),
				zap.String("guild_id", guildID))
			continue
		}

		for _, userID := range holders {
			if err := e.roles.RemoveRole(ctx, guildID, userID, cfg.RoleID); err != nil {
				e.logger.Error("Failed to remove absence role during sweep",
					zap.Error(err),
					zap.String("guild_id", guildID),
					zap.String("user_id", userID))
				continue
			}
		}

		e.logger.Info("Absence roles swept",
			zap.String("guild_id", guildID),
			zap.Int("holders", len(holders)))
	}
}
