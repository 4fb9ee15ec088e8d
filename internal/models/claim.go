package models

import (
	"time"

	"github.com/bits-and-blooms/bitset"
)

// ClaimType distinguishes the two reward schedules.
type ClaimType string

const (
	ClaimDaily  ClaimType = "daily"
	ClaimWeekly ClaimType = "weekly"
)

// weeklySlots is the number of day-of-week slots tracked per rolling week.
const weeklySlots = 7

// ClaimRecord stores the last successful claim per user and type. Daily
// records additionally carry the rolling-week bitmap: one bit per weekday
// (Sunday = bit 0), reset when a new week starts.
type ClaimRecord struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	ClaimType ClaimType `gorm:"primaryKey;type:varchar(16)" json:"claim_type"`

	LastClaimedAt time.Time `gorm:"not null" json:"last_claimed_at"`
	WeeklyState   []byte    `json:"-"`
}

func (ClaimRecord) TableName() string {
	return "claim_records"
}

// WeeklySlots decodes the stored weekday bitmap. A missing or corrupt blob
// decodes as an empty week rather than failing the claim path.
func (c *ClaimRecord) WeeklySlots() *bitset.BitSet {
	b := bitset.New(weeklySlots)
	if len(c.WeeklyState) == 0 {
		return b
	}
	if err := b.UnmarshalBinary(c.WeeklyState); err != nil {
		return bitset.New(weeklySlots)
	}
	return b
}

// SetWeeklySlots encodes the weekday bitmap back onto the record.
func (c *ClaimRecord) SetWeeklySlots(b *bitset.BitSet) error {
	raw, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	c.WeeklyState = raw
	return nil
}
