package standdown

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaenox/standdown-bot/internal/models"
)

func testMembers() []models.Member {
	return []models.Member{
		{ID: "1", Username: "alice"},
		{ID: "2", Username: "bob", Bot: true},
		{ID: "3", Username: "carol", Roles: []string{"absence-role"}},
		{ID: "4", Username: "dave"},
		{ID: "5", Username: "erin"},
	}
}

func TestEligibleMembers_FiltersBotsAbsentAndExcluded(t *testing.T) {
	eligible := EligibleMembers(testMembers(), "absence-role", []string{"5"})

	ids := make([]string, len(eligible))
	for i, m := range eligible {
		ids[i] = m.ID
	}
	require.Equal(t, []string{"1", "4"}, ids)
}

func TestEligibleMembers_NoAbsenceRoleConfigured(t *testing.T) {
	eligible := EligibleMembers(testMembers(), "", nil)

	// Only the bot is dropped; carol's role is irrelevant without a
	// configured absence role.
	require.Len(t, eligible, 4)
}

func TestMissingMembers_RemovesAttendees(t *testing.T) {
	attended := map[string]bool{"1": true}

	missing := MissingMembers(testMembers(), "absence-role", []string{"5"}, func(id string) bool {
		return attended[id]
	})

	require.Len(t, missing, 1)
	require.Equal(t, "4", missing[0].ID)
}

func TestMissingMembers_RecomputedFresh(t *testing.T) {
	attended := map[string]bool{}
	attendedFn := func(id string) bool { return attended[id] }

	require.Len(t, MissingMembers(testMembers(), "", nil, attendedFn), 4)

	attended["1"] = true
	attended["4"] = true
	require.Len(t, MissingMembers(testMembers(), "", nil, attendedFn), 2)
}

func TestMentions(t *testing.T) {
	require.Equal(t, "", Mentions(nil))
	require.Equal(t, "<@1> <@4>", Mentions([]models.Member{{ID: "1"}, {ID: "4"}}))
}
