package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/xaenox/standdown-bot/internal/models"
	"github.com/xaenox/standdown-bot/internal/moderation"
)

const threadAutoArchiveMinutes = 1440 // let Discord archive the thread after a day

// sessionAdapter implements the narrow platform interfaces of the standdown
// and moderation packages on top of a discordgo session.
type sessionAdapter struct {
	session *discordgo.Session
}

func newSessionAdapter(session *discordgo.Session) *sessionAdapter {
	return &sessionAdapter{session: session}
}

func (a *sessionAdapter) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	thread, err := a.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, threadAutoArchiveMinutes)
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (a *sessionAdapter) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := a.session.ChannelMessageSend(channelID, content)
	return err
}

func (a *sessionAdapter) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := a.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (a *sessionAdapter) ListMembers(ctx context.Context, guildID string) ([]models.Member, error) {
	var members []models.Member
	after := ""
	for {
		page, err := a.session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild members: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			if m.User == nil {
				continue
			}
			members = append(members, models.Member{
				ID:       m.User.ID,
				Username: m.User.Username,
				Bot:      m.User.Bot,
				Roles:    m.Roles,
			})
		}
		after = page[len(page)-1].User.ID
		if len(page) < 1000 {
			break
		}
	}
	return members, nil
}

func (a *sessionAdapter) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := a.session.GuildMember(guildID, userID)
	if err != nil {
		return false, err
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (a *sessionAdapter) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *sessionAdapter) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (a *sessionAdapter) RoleHolders(ctx context.Context, guildID, roleID string) ([]string, error) {
	members, err := a.ListMembers(ctx, guildID)
	if err != nil {
		return nil, err
	}
	holders := []string{}
	for _, m := range members {
		if m.HasRole(roleID) {
			holders = append(holders, m.ID)
		}
	}
	return holders, nil
}

func (a *sessionAdapter) Reply(ctx context.Context, channelID, messageID, content string) error {
	_, err := a.session.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	})
	return err
}

func (a *sessionAdapter) ReplyWithUndo(ctx context.Context, channelID, messageID, userID string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Absence",
		Description: "Based on your message, it looks like you are absent today. Click the button below if this is incorrect!",
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	_, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Remove Role",
						Style:    discordgo.DangerButton,
						CustomID: moderation.UndoCustomID(userID),
					},
				},
			},
		},
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
	})
	return err
}
