package standdown

import (
	"fmt"
	"strings"

	"github.com/xaenox/standdown-bot/internal/models"
)

// EligibleMembers filters the guild roster down to members expected to do a
// stand-down: no bots, no absence-role holders, no excluded users.
func EligibleMembers(members []models.Member, absenceRoleID string, excluded []string) []models.Member {
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = struct{}{}
	}

	eligible := make([]models.Member, 0, len(members))
	for _, m := range members {
		if m.Bot {
			continue
		}
		if absenceRoleID != "" && m.HasRole(absenceRoleID) {
			continue
		}
		if _, ok := excludedSet[m.ID]; ok {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}

// MissingMembers returns the eligible members who have not attended yet.
// The roster is recomputed from live inputs on every call.
func MissingMembers(members []models.Member, absenceRoleID string, excluded []string, attended func(userID string) bool) []models.Member {
	missing := make([]models.Member, 0)
	for _, m := range EligibleMembers(members, absenceRoleID, excluded) {
		if attended(m.ID) {
			continue
		}
		missing = append(missing, m)
	}
	return missing
}

// Mentions renders a space-separated mention line for the given members.
func Mentions(members []models.Member) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprintf("<@%s>", m.ID)
	}
	return strings.Join(parts, " ")
}
