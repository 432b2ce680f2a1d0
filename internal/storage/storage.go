package storage

import (
	"context"

	"github.com/xaenox/standdown-bot/internal/models"
)

// Storage persists the moderation settings document and the stand-down
// exclusion list. Settings and ExcludedUsers never fail: implementations
// substitute defaults when the backing store is missing or unreadable.
type Storage interface {
	Settings(ctx context.Context) *models.GuildSettings
	SaveSettings(ctx context.Context, settings *models.GuildSettings) error
	// UpdateChecker performs a load-merge-save of one settings section and
	// returns the merged document. Section is models.SectionAbsence or
	// models.SectionSmoking.
	UpdateChecker(ctx context.Context, section string, patch models.CheckerPatch) (*models.GuildSettings, error)

	ExcludedUsers(ctx context.Context) []string
	// AddExcludedUser returns false when the user is already excluded.
	AddExcludedUser(ctx context.Context, userID string) (bool, error)
	// RemoveExcludedUser returns false when the user was not excluded.
	RemoveExcludedUser(ctx context.Context, userID string) (bool, error)

	Close() error
}

func applyPatch(settings *models.GuildSettings, section string, patch models.CheckerPatch) bool {
	switch section {
	case models.SectionAbsence:
		patch.Apply(&settings.AbsenceChecker)
	case models.SectionSmoking:
		patch.Apply(&settings.SmokingChecker)
	default:
		return false
	}
	return true
}
