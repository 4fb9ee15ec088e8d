package models

import "time"

// Rank is the closed set of clan authority levels.
type Rank string

const (
	RankOwner           Rank = "owner"
	RankViceGuildMaster Rank = "vice_guild_master"
	RankOfficer         Rank = "officer"
	RankMember          Rank = "member"
)

// Per-rank slot limits. The owner slot is the owner_id column, never a
// member row, so it has no entry here.
const (
	ViceCapacity    = 4
	OfficerCapacity = 8
	MemberCapacity  = 100
)

// Level returns the precedence of a rank for authorization checks.
// Higher outranks lower; an unknown rank sinks below every real one.
func (r Rank) Level() int {
	switch r {
	case RankOwner:
		return 3
	case RankViceGuildMaster:
		return 2
	case RankOfficer:
		return 1
	case RankMember:
		return 0
	default:
		return -1
	}
}

// Valid reports whether r is one of the four known ranks.
func (r Rank) Valid() bool {
	return r.Level() >= 0
}

// Capacity returns how many members a clan may hold at this rank.
// The owner rank is a single column, not a member set.
func (r Rank) Capacity() int {
	switch r {
	case RankViceGuildMaster:
		return ViceCapacity
	case RankOfficer:
		return OfficerCapacity
	case RankMember:
		return MemberCapacity
	default:
		return 0
	}
}

func (r Rank) String() string {
	switch r {
	case RankOwner:
		return "Owner"
	case RankViceGuildMaster:
		return "Vice Guild Master"
	case RankOfficer:
		return "Officer"
	case RankMember:
		return "Member"
	default:
		return string(r)
	}
}

// Clan is one registered clan, keyed by the platform role that represents it.
type Clan struct {
	RoleID  string  `gorm:"primaryKey;type:varchar(64)" json:"role_id"`
	OwnerID string  `gorm:"uniqueIndex;not null;type:varchar(64)" json:"owner_id"`
	Motto   *string `gorm:"type:varchar(255)" json:"motto,omitempty"`

	Members []ClanMember `gorm:"foreignKey:ClanRoleID" json:"members,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Clan) TableName() string {
	return "clans"
}

// RankOf resolves a user's rank inside this clan. The owner is recognized by
// id equality only; owner ids never appear in member rows. Requires Members
// to be loaded.
func (c *Clan) RankOf(userID string) (Rank, bool) {
	if userID == c.OwnerID {
		return RankOwner, true
	}
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return c.Members[i].Rank, true
		}
	}
	return "", false
}

// CountAtRank counts loaded member rows holding the given rank.
func (c *Clan) CountAtRank(rank Rank) int {
	n := 0
	for i := range c.Members {
		if c.Members[i].Rank == rank {
			n++
		}
	}
	return n
}

// UsersAtRank returns the user ids of loaded member rows at the given rank.
func (c *Clan) UsersAtRank(rank Rank) []string {
	var ids []string
	for i := range c.Members {
		if c.Members[i].Rank == rank {
			ids = append(ids, c.Members[i].UserID)
		}
	}
	return ids
}

// ClanMember is one user's membership row. UserID is the sole primary key,
// so the store itself refuses a second affiliation for the same user.
type ClanMember struct {
	UserID     string `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	ClanRoleID string `gorm:"index;not null;type:varchar(64)" json:"clan_role_id"`
	Rank       Rank   `gorm:"not null;type:varchar(32)" json:"rank"`

	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

func (ClanMember) TableName() string {
	return "clan_members"
}
