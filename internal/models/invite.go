package models

import "time"

// InviteTTL is how long a clan invite stays usable.
const InviteTTL = 5 * time.Minute

// ClanInvite is a single-use, short-lived invitation into a clan.
// Expired rows are swept by the maintenance job; acceptance re-checks
// affiliation and capacity at the moment of the write.
type ClanInvite struct {
	Code       string `gorm:"primaryKey;type:varchar(32)" json:"code"`
	ClanRoleID string `gorm:"index;not null;type:varchar(64)" json:"clan_role_id"`
	InviterID  string `gorm:"not null;type:varchar(64)" json:"inviter_id"`
	TargetID   string `gorm:"index;not null;type:varchar(64)" json:"target_id"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ClanInvite) TableName() string {
	return "clan_invites"
}

// Expired reports whether the invite is past its window at the given instant.
func (i *ClanInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
