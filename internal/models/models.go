package models

// CheckerConfig holds the per-watcher moderation settings. Field names match
// the persisted config.json document.
type CheckerConfig struct {
	ChannelID string `json:"channelId"`
	RoleID    string `json:"roleId,omitempty"`
	IsActive  bool   `json:"isActive"`
}

// GuildSettings is the persisted configuration document with one section per
// moderation watcher.
type GuildSettings struct {
	AbsenceChecker CheckerConfig `json:"chatGptChecker"`
	SmokingChecker CheckerConfig `json:"smokingChecker"`
}

// Section names accepted by Storage.UpdateChecker.
const (
	SectionAbsence = "chatGptChecker"
	SectionSmoking = "smokingChecker"
)

// DefaultSettings returns the settings used when no document exists or the
// stored one cannot be read.
func DefaultSettings() *GuildSettings {
	return &GuildSettings{}
}

// CheckerPatch is a partial update to a CheckerConfig; nil fields are left
// untouched by the merge.
type CheckerPatch struct {
	ChannelID *string
	RoleID    *string
	IsActive  *bool
}

// Apply merges the patch into cfg.
func (p CheckerPatch) Apply(cfg *CheckerConfig) {
	if p.ChannelID != nil {
		cfg.ChannelID = *p.ChannelID
	}
	if p.RoleID != nil {
		cfg.RoleID = *p.RoleID
	}
	if p.IsActive != nil {
		cfg.IsActive = *p.IsActive
	}
}

// ExcludedUsers is the persisted exclusion list document.
type ExcludedUsers struct {
	ExcludedUsers []string `json:"excludedUsers"`
}

// Member is the slice of guild-member state the bot cares about.
type Member struct {
	ID       string
	Username string
	Bot      bool
	Roles    []string
}

// HasRole reports whether the member carries the given role.
func (m Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
