package standdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/standdown-bot/internal/models"
	"github.com/xaenox/standdown-bot/internal/storage"
	"go.uber.org/zap"
)

type fakeMessenger struct {
	threads  []string
	messages map[string][]string
	embeds   map[string][]*discordgo.MessageEmbed

	createErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		messages: make(map[string][]string),
		embeds:   make(map[string][]*discordgo.MessageEmbed),
	}
}

func (f *fakeMessenger) CreateThread(_ context.Context, channelID, name string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "thread-" + name
	f.threads = append(f.threads, id)
	return id, nil
}

func (f *fakeMessenger) SendMessage(_ context.Context, channelID, content string) error {
	f.messages[channelID] = append(f.messages[channelID], content)
	return nil
}

func (f *fakeMessenger) SendEmbed(_ context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	f.embeds[channelID] = append(f.embeds[channelID], embed)
	return nil
}

type fakeDirectory struct {
	members []models.Member
	err     error
}

func (f *fakeDirectory) ListMembers(_ context.Context, _ string) ([]models.Member, error) {
	return f.members, f.err
}

func testManager(t *testing.T, messenger *fakeMessenger, directory *fakeDirectory, store storage.Storage) *Manager {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStorage()
	}
	return NewManager(messenger, directory, store, "guild-1", "announce", time.UTC, zap.NewNop())
}

func TestPostDaily_CreatesThreadAndResetsAttendance(t *testing.T) {
	messenger := newFakeMessenger()
	directory := &fakeDirectory{members: []models.Member{
		{ID: "1"},
		{ID: "2", Bot: true},
		{ID: "3"},
	}}
	m := testManager(t, messenger, directory, nil)

	// Stale attendance from a previous day.
	m.Tracker().SetCurrentThread("old-thread")
	m.Tracker().Record("1", "old-thread")

	require.NoError(t, m.PostDaily(context.Background()))

	require.Len(t, messenger.threads, 1)
	threadID := messenger.threads[0]
	require.Equal(t, threadID, m.Tracker().CurrentThreadID())
	require.Equal(t, 0, m.Tracker().Count())

	// Roster mention line, then the announcement embed.
	require.Equal(t, []string{"<@1> <@3>"}, messenger.messages[threadID])
	require.Len(t, messenger.embeds[threadID], 1)
	require.Equal(t, announceTitle, messenger.embeds[threadID][0].Title)
}

func TestPostDaily_SkippedWhileSuppressed(t *testing.T) {
	messenger := newFakeMessenger()
	directory := &fakeDirectory{members: []models.Member{{ID: "1"}}}
	m := testManager(t, messenger, directory, nil)

	m.Tracker().SetCurrentThread("old-thread")
	m.Tracker().Record("1", "old-thread")
	m.Window().DisableFor(time.Hour)

	require.NoError(t, m.PostDaily(context.Background()))

	require.Empty(t, messenger.threads)
	require.Equal(t, "old-thread", m.Tracker().CurrentThreadID())
	require.True(t, m.Tracker().Attended("1"), "attendance must be unchanged while suppressed")
}

func TestPostDaily_MemberFetchFailure(t *testing.T) {
	messenger := newFakeMessenger()
	directory := &fakeDirectory{err: errors.New("gateway down")}
	m := testManager(t, messenger, directory, nil)

	require.Error(t, m.PostDaily(context.Background()))
	require.Empty(t, messenger.threads)
}

func TestPostDaily_ExcludesConfiguredUsers(t *testing.T) {
	store := storage.NewMemoryStorage()
	_, err := store.AddExcludedUser(context.Background(), "3")
	require.NoError(t, err)

	messenger := newFakeMessenger()
	directory := &fakeDirectory{members: []models.Member{{ID: "1"}, {ID: "3"}}}
	m := testManager(t, messenger, directory, store)

	require.NoError(t, m.PostDaily(context.Background()))
	require.Equal(t, []string{"<@1>"}, messenger.messages[messenger.threads[0]])
}

func TestSendReminders_NoThreadIsNoop(t *testing.T) {
	messenger := newFakeMessenger()
	m := testManager(t, messenger, &fakeDirectory{}, nil)

	require.NoError(t, m.SendReminders(context.Background()))
	require.Empty(t, messenger.messages)
}

func TestSendReminders_MentionsOnlyMissingMembers(t *testing.T) {
	store := storage.NewMemoryStorage()
	_, err := store.AddExcludedUser(context.Background(), "5")
	require.NoError(t, err)
	_, err = store.UpdateChecker(context.Background(), models.SectionAbsence, models.CheckerPatch{
		RoleID: ptr("absence-role"),
	})
	require.NoError(t, err)

	messenger := newFakeMessenger()
	directory := &fakeDirectory{members: []models.Member{
		{ID: "1"},
		{ID: "2", Bot: true},
		{ID: "3", Roles: []string{"absence-role"}},
		{ID: "4"},
		{ID: "5"},
	}}
	m := testManager(t, messenger, directory, store)

	m.Tracker().SetCurrentThread("thread-1")
	m.Tracker().Record("1", "thread-1")

	require.NoError(t, m.SendReminders(context.Background()))

	require.Len(t, messenger.messages["thread-1"], 1)
	reminder := messenger.messages["thread-1"][0]
	require.Contains(t, reminder, "<@4>")
	require.NotContains(t, reminder, "<@1>")
	require.NotContains(t, reminder, "<@2>")
	require.NotContains(t, reminder, "<@3>")
	require.NotContains(t, reminder, "<@5>")
	require.Contains(t, reminder, "Please don't forget to do your stand-downs")
}

func TestSendReminders_EveryoneAttendedSendsNothing(t *testing.T) {
	messenger := newFakeMessenger()
	directory := &fakeDirectory{members: []models.Member{{ID: "1"}}}
	m := testManager(t, messenger, directory, nil)

	m.Tracker().SetCurrentThread("thread-1")
	m.Tracker().Record("1", "thread-1")

	require.NoError(t, m.SendReminders(context.Background()))
	require.Empty(t, messenger.messages)
}

func TestWindow_SuppressionExpires(t *testing.T) {
	w := NewWindow()
	require.False(t, w.Suppressed())

	until := w.DisableFor(time.Hour)
	require.True(t, w.Suppressed())
	require.WithinDuration(t, time.Now().Add(time.Hour), until, time.Minute)

	// A window in the past is implicitly cleared.
	w.DisableFor(-time.Second)
	require.False(t, w.Suppressed())

	w.DisableFor(time.Hour)
	w.Enable()
	require.False(t, w.Suppressed())
	require.True(t, w.DisabledUntil().IsZero())
}

func ptr(s string) *string { return &s }
