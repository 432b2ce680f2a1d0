package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/xaenox/standdown-bot/internal/models"
	"github.com/xaenox/standdown-bot/internal/scheduler"
	"go.uber.org/zap"
)

var (
	manageRolesPermission   = int64(discordgo.PermissionManageRoles)
	administratorPermission = int64(discordgo.PermissionAdministrator)
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "disable",
			Description: "Disable scheduled messages for a specific duration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "duration",
					Description:  "Duration to disable (e.g., 24h, 7d)",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "enable",
			Description: "Enable scheduled messages",
		},
		{
			Name:                     "edit-standdown-time",
			Description:              "Edit the time for daily stand-down messages",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "time",
					Description: "New time in 24-hour format (e.g., 15:30)",
					Required:    true,
				},
			},
		},
		{
			Name:        "manual-standdown",
			Description: "Send the daily stand-down message immediately",
		},
		{
			Name:        "send-update",
			Description: "Send the daily update message immediately",
		},
		{
			Name:                     "reset-tracker",
			Description:              "Reset the message tracking for today's thread",
			DefaultMemberPermissions: &administratorPermission,
		},
		{
			Name:                     "test-reminder",
			Description:              "Test the reminder system by sending a reminder message now",
			DefaultMemberPermissions: &administratorPermission,
		},
		{
			Name:                     "mark-absent",
			Description:              "Mark a user as absent for the day",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to mark as absent",
					Required:    true,
				},
			},
		},
		{
			Name:                     "remove-absent",
			Description:              "Remove the absent status from a user",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to mark as no longer absent",
					Required:    true,
				},
			},
		},
		{
			Name:        "exclude",
			Description: "Exclude or include a user from stand-downs",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Exclude a user from stand-downs",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to exclude",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Include a previously excluded user in stand-downs",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to include",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all excluded users",
				},
			},
		},
		{
			Name:                     "setup-chatgpt-checker",
			Description:              "Setup a channel for ChatGPT role checking",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to monitor for messages",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to assign",
					Required:    true,
				},
			},
		},
		{
			Name:                     "toggle-chatgpt-checker",
			Description:              "Enable or disable the ChatGPT role checker",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "active",
					Description: "Enable or disable the feature",
					Required:    true,
				},
			},
		},
		{
			Name:                     "setup-smoking-checker",
			Description:              "Setup a channel for smoking detection",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to monitor for smoking talk",
					Required:    true,
				},
			},
		},
		{
			Name:                     "toggle-smoking-checker",
			Description:              "Enable or disable smoking detection",
			DefaultMemberPermissions: &manageRolesPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "active",
					Description: "Enable or disable the feature",
					Required:    true,
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.logger.Info("Slash commands registered", zap.Int("count", len(commandDefinitions())))
	return nil
}

func (b *Bot) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	b.logger.Debug("Command received",
		zap.String("command", data.Name),
		zap.String("user_id", interactionUserID(i)))

	switch data.Name {
	case "disable":
		b.handleDisable(s, i)
	case "enable":
		b.handleEnable(s, i)
	case "edit-standdown-time":
		b.handleEditStanddownTime(s, i)
	case "manual-standdown":
		b.handleSendNow(s, i, "Stand-down message sent successfully!")
	case "send-update":
		b.handleSendNow(s, i, "Update message sent successfully!")
	case "reset-tracker":
		b.handleResetTracker(s, i)
	case "test-reminder":
		b.handleTestReminder(s, i)
	case "mark-absent":
		b.handleMarkAbsent(s, i)
	case "remove-absent":
		b.handleRemoveAbsent(s, i)
	case "exclude":
		b.handleExclude(s, i)
	case "setup-chatgpt-checker":
		b.handleSetupAbsenceChecker(s, i)
	case "toggle-chatgpt-checker":
		b.handleToggleAbsenceChecker(s, i)
	case "setup-smoking-checker":
		b.handleSetupSmokingChecker(s, i)
	case "toggle-smoking-checker":
		b.handleToggleSmokingChecker(s, i)
	default:
		b.respondEphemeral(s, i, "Unknown command.")
	}
}

// parseDisableDuration accepts Nh (hours) and Nd (days).
func parseDisableDuration(value string) (time.Duration, error) {
	if len(value) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	n, err := strconv.Atoi(value[:len(value)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration format")
	}

	switch strings.ToLower(value[len(value)-1:]) {
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration format")
	}
}

func (b *Bot) handleDisable(s *discordgo.Session, i *discordgo.InteractionCreate) {
	value := i.ApplicationCommandData().Options[0].StringValue()

	duration, err := parseDisableDuration(value)
	if err != nil {
		b.respondEphemeral(s, i, "Invalid duration format. Use d for days or h for hours (e.g., 7d or 24h)")
		return
	}

	until := b.standdown.Window().DisableFor(duration)
	b.respondEphemeral(s, i, fmt.Sprintf("Scheduled messages disabled until %s",
		until.In(b.location()).Format("Monday, 2 January 2006 15:04 MST")))
}

var disableDurationChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "1 hour", Value: "1h"},
	{Name: "6 hours", Value: "6h"},
	{Name: "12 hours", Value: "12h"},
	{Name: "24 hours", Value: "24h"},
	{Name: "2 days", Value: "2d"},
	{Name: "7 days", Value: "7d"},
	{Name: "14 days", Value: "14d"},
	{Name: "30 days", Value: "30d"},
}

func (b *Bot) dispatchAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "disable" {
		return
	}

	focused := ""
	for _, opt := range data.Options {
		if opt.Focused {
			focused = strings.ToLower(opt.StringValue())
		}
	}

	filtered := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(disableDurationChoices))
	for _, choice := range disableDurationChoices {
		if focused == "" ||
			strings.Contains(strings.ToLower(choice.Name), focused) ||
			strings.Contains(choice.Value.(string), focused) {
			filtered = append(filtered, choice)
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: filtered},
	})
	if err != nil {
		b.logger.Error("Failed to respond to autocomplete", zap.Error(err))
	}
}

func (b *Bot) handleEnable(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.standdown.Window().Enable()
	b.respondEphemeral(s, i, "Scheduled messages enabled")
}

func (b *Bot) handleEditStanddownTime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	value := i.ApplicationCommandData().Options[0].StringValue()

	hour, minute, err := scheduler.ParseClock(value)
	if err != nil {
		b.respondEphemeral(s, i, "⚠️ Invalid time format! Please use 24-hour format (e.g., 15:30).")
		return
	}

	if _, err := b.scheduler.SetStanddownTime(hour, minute); err != nil {
		b.logger.Error("Failed to update stand-down time", zap.Error(err))
		b.respondEphemeral(s, i, "⚠️ There was an error updating the stand-down time.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Stand-down time updated to %s (%s). The next stand-down message will be sent at this time.",
		value, b.location()))
}

func (b *Bot) handleSendNow(s *discordgo.Session, i *discordgo.InteractionCreate, success string) {
	if err := b.deferEphemeral(s, i); err != nil {
		b.logger.Error("Failed to defer reply", zap.Error(err))
		return
	}

	if err := b.standdown.PostDaily(context.Background()); err != nil {
		b.logger.Error("Manual stand-down post failed", zap.Error(err))
		b.editReply(s, i, "⚠️ There was an error sending the stand-down message.")
		return
	}
	b.editReply(s, i, success)
}

func (b *Bot) handleResetTracker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.standdown.Tracker().CurrentThreadID() == "" {
		b.respondEphemeral(s, i, "No active thread found. Please create one first using the send-update command.")
		return
	}

	b.standdown.Tracker().Reset()
	b.respondEphemeral(s, i, "Message tracking has been reset. All members will need to send a new message in the current thread.")
}

func (b *Bot) handleTestReminder(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.deferEphemeral(s, i); err != nil {
		b.logger.Error("Failed to defer reply", zap.Error(err))
		return
	}

	if b.standdown.Tracker().CurrentThreadID() == "" {
		b.editReply(s, i, "No active thread found for today. Please create one first using the send-update command.")
		return
	}

	if err := b.standdown.SendReminders(context.Background()); err != nil {
		b.logger.Error("Reminder test failed", zap.Error(err))
		b.editReply(s, i, "⚠️ There was an error sending the reminder.")
		return
	}
	b.editReply(s, i, "Reminder test executed successfully!")
}

func (b *Bot) absenceRoleID() string {
	return b.storage.Settings(context.Background()).AbsenceChecker.RoleID
}

func (b *Bot) handleMarkAbsent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.ApplicationCommandData().Options[0].UserValue(s)

	roleID := b.absenceRoleID()
	if roleID == "" {
		b.respondEphemeral(s, i, "⚠️ No absence role is configured. Run setup-chatgpt-checker first.")
		return
	}

	if err := s.GuildMemberRoleAdd(i.GuildID, user.ID, roleID); err != nil {
		b.logger.Error("Failed to assign absence role",
			zap.Error(err),
			zap.String("user_id", user.ID))
		b.respondEphemeral(s, i, fmt.Sprintf("⚠️ There was an error marking %s as absent. Please check my permissions.", user.Mention()))
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ %s has been marked as absent for the day.", user.Mention()))
}

func (b *Bot) handleRemoveAbsent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.ApplicationCommandData().Options[0].UserValue(s)

	roleID := b.absenceRoleID()
	if roleID == "" {
		b.respondEphemeral(s, i, "⚠️ No absence role is configured. Run setup-chatgpt-checker first.")
		return
	}

	member, err := s.GuildMember(i.GuildID, user.ID)
	if err != nil {
		b.logger.Error("Failed to fetch member",
			zap.Error(err),
			zap.String("user_id", user.ID))
		b.respondEphemeral(s, i, fmt.Sprintf("⚠️ There was an error updating %s's status. Please check my permissions.", user.Mention()))
		return
	}

	hasRole := false
	for _, r := range member.Roles {
		if r == roleID {
			hasRole = true
			break
		}
	}
	if !hasRole {
		b.respondEphemeral(s, i, fmt.Sprintf("%s is not marked as absent.", user.Mention()))
		return
	}

	if err := s.GuildMemberRoleRemove(i.GuildID, user.ID, roleID); err != nil {
		b.logger.Error("Failed to remove absence role",
			zap.Error(err),
			zap.String("user_id", user.ID))
		b.respondEphemeral(s, i, fmt.Sprintf("⚠️ There was an error updating %s's status. Please check my permissions.", user.Mention()))
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ %s is no longer marked as absent.", user.Mention()))
}

func (b *Bot) handleExclude(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sub := i.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "add":
		user := sub.Options[0].UserValue(s)
		added, err := b.storage.AddExcludedUser(ctx, user.ID)
		if err != nil {
			b.logger.Error("Failed to exclude user", zap.Error(err), zap.String("user_id", user.ID))
			b.respondEphemeral(s, i, "⚠️ There was an error updating the exclusion list.")
			return
		}
		if !added {
			b.respond(s, i, fmt.Sprintf("%s is already excluded from stand-downs.", user.Username))
			return
		}
		b.respond(s, i, fmt.Sprintf("%s has been excluded from stand-downs.", user.Username))

	case "remove":
		user := sub.Options[0].UserValue(s)
		removed, err := b.storage.RemoveExcludedUser(ctx, user.ID)
		if err != nil {
			b.logger.Error("Failed to include user", zap.Error(err), zap.String("user_id", user.ID))
			b.respondEphemeral(s, i, "⚠️ There was an error updating the exclusion list.")
			return
		}
		if !removed {
			b.respond(s, i, fmt.Sprintf("%s is not excluded from stand-downs.", user.Username))
			return
		}
		b.respond(s, i, fmt.Sprintf("%s has been included in stand-downs.", user.Username))

	case "list":
		excluded := b.storage.ExcludedUsers(ctx)
		if len(excluded) == 0 {
			b.respond(s, i, "No users are currently excluded from stand-downs.")
			return
		}

		lines := make([]string, 0, len(excluded))
		for _, id := range excluded {
			if user, err := s.User(id); err == nil {
				lines = append(lines, "- "+user.Username)
			} else {
				lines = append(lines, fmt.Sprintf("- Unknown user (%s)", id))
			}
		}
		b.respond(s, i, "**Excluded users:**\n"+strings.Join(lines, "\n"))
	}
}

func (b *Bot) handleSetupAbsenceChecker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	channel := data.Options[0].ChannelValue(s)
	role := data.Options[1].RoleValue(s, i.GuildID)

	active := true
	_, err := b.storage.UpdateChecker(context.Background(), models.SectionAbsence, models.CheckerPatch{
		ChannelID: &channel.ID,
		RoleID:    &role.ID,
		IsActive:  &active,
	})
	if err != nil {
		b.logger.Error("Failed to save absence checker config", zap.Error(err))
		b.respondEphemeral(s, i, "⚠️ There was an error saving the configuration.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ ChatGPT role checker has been set up for channel %s with role %s!",
		channel.Mention(), role.Mention()))
}

func (b *Bot) handleToggleAbsenceChecker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	active := i.ApplicationCommandData().Options[0].BoolValue()

	_, err := b.storage.UpdateChecker(context.Background(), models.SectionAbsence, models.CheckerPatch{IsActive: &active})
	if err != nil {
		b.logger.Error("Failed to toggle absence checker", zap.Error(err))
		b.respondEphemeral(s, i, "⚠️ There was an error saving the configuration.")
		return
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ ChatGPT role checker has been %s.", state))
}

func (b *Bot) handleSetupSmokingChecker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channel := i.ApplicationCommandData().Options[0].ChannelValue(s)

	active := true
	_, err := b.storage.UpdateChecker(context.Background(), models.SectionSmoking, models.CheckerPatch{
		ChannelID: &channel.ID,
		IsActive:  &active,
	})
	if err != nil {
		b.logger.Error("Failed to save smoking checker config", zap.Error(err))
		b.respondEphemeral(s, i, "⚠️ There was an error saving the configuration.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("✅ Smoking detection has been enabled for %s! I'll respond with a silly message when someone talks about smoking.",
		channel.Mention()))
}

func (b *Bot) handleToggleSmokingChecker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	active := i.ApplicationCommandData().Options[0].BoolValue()

	_, err := b.storage.UpdateChecker(context.Background(), models.SectionSmoking, models.CheckerPatch{IsActive: &active})
	if err != nil {
		b.logger.Error("Failed to toggle smoking checker", zap.Error(err))
		b.respondEphemeral(s, i, "⚠️ There was an error saving the configuration.")
		return
	}

	if active {
		b.respondEphemeral(s, i, "✅ Smoking detection has been enabled. I'll now respond with a silly message when someone talks about smoking.")
		return
	}
	b.respondEphemeral(s, i, "✅ Smoking detection has been disabled. I'll stop responding to smoking mentions.")
}
