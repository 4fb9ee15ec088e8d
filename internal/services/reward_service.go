package services

import (
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// Reward sizes and the weekly cooldown. Rewards always land in the bank,
// never on hand: claiming stays safe even with a full sanctuary, and a full
// bank is the player's capacity planning problem.
const (
	DailyReward    int64 = 25
	WeeklyReward   int64 = 175
	WeeklyCooldown       = 168 * time.Hour
)

// RewardService runs the daily and weekly claim schedules. The daily grid is
// a rolling week of day-of-week slots (Sunday = slot 0) that resets when a
// new week starts on the configured wall clock.
type RewardService struct {
	db  *gorm.DB
	log *logger.Logger
	loc *time.Location
	now func() time.Time
}

func NewRewardService(db *gorm.DB, log *logger.Logger, loc *time.Location) *RewardService {
	if loc == nil {
		loc = time.UTC
	}
	return &RewardService{db: db, log: log, loc: loc, now: time.Now}
}

// weekStart is midnight of the Sunday on or before t.
func (s *RewardService) weekStart(t time.Time) time.Time {
	t = t.In(s.loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	return midnight.AddDate(0, 0, -int(t.Weekday()))
}

// DailyStatus is the user-facing view of the daily claim grid.
type DailyStatus struct {
	Claimable bool    `json:"claimable"`
	Claimed   [7]bool `json:"claimed"`
}

// GetDailyStatus reports whether today's daily is claimable and which slots
// of the current week are already used.
func (s *RewardService) GetDailyStatus(userID string) (*DailyStatus, error) {
	record, err := repositories.NewClaimRepository(s.db).Get(userID, models.ClaimDaily)
	if err != nil {
		return nil, storeErr(err)
	}

	status := &DailyStatus{}
	now := s.now().In(s.loc)
	if record != nil && s.weekStart(record.LastClaimedAt).Equal(s.weekStart(now)) {
		slots := record.WeeklySlots()
		for i := 0; i < 7; i++ {
			status.Claimed[i] = slots.Test(uint(i))
		}
	}
	status.Claimable = !status.Claimed[int(now.Weekday())]
	return status, nil
}

// ClaimResult reports a successful claim credit.
type ClaimResult struct {
	Reward       int64 `json:"reward"`
	Bank         int64 `json:"bank"`
	BankCapacity int64 `json:"bank_capacity"`
}

// ClaimDaily credits the daily reward into the bank and marks today's slot.
// The credit, the slot flip and the claim timestamp are one transaction.
func (s *RewardService) ClaimDaily(userID string) (*ClaimResult, error) {
	result := &ClaimResult{Reward: DailyReward}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		claims := repositories.NewClaimRepository(tx)
		wallets := repositories.NewWalletRepository(tx)

		now := s.now().In(s.loc)
		record, err := claims.Get(userID, models.ClaimDaily)
		if err != nil {
			return storeErr(err)
		}

		slots := s.currentWeekSlots(record, now)
		today := uint(now.Weekday())
		if slots.Test(today) {
			return fmt.Errorf("%w: today's daily reward is already claimed", ErrAlreadyClaimed)
		}

		wallet, err := wallets.GetOrCreate(userID, models.CurrencyGold)
		if err != nil {
			return storeErr(err)
		}
		if wallet.Bank+DailyReward > wallet.BankCapacity {
			return fmt.Errorf("%w: need %d free, have %d", ErrBankFull, DailyReward, wallet.BankSpace())
		}
		wallet.Bank += DailyReward
		if err := wallets.Save(wallet); err != nil {
			return storeErr(err)
		}

		slots.Set(today)
		fresh := &models.ClaimRecord{
			UserID:        userID,
			ClaimType:     models.ClaimDaily,
			LastClaimedAt: now,
		}
		if err := fresh.SetWeeklySlots(slots); err != nil {
			return storeErr(err)
		}
		if err := claims.Upsert(fresh); err != nil {
			return storeErr(err)
		}

		result.Bank = wallet.Bank
		result.BankCapacity = wallet.BankCapacity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("daily reward claimed", zap.String("user_id", userID), zap.Int64("reward", DailyReward))
	return result, nil
}

// WeeklyStatus is the user-facing view of the weekly cooldown.
type WeeklyStatus struct {
	Claimable   bool      `json:"claimable"`
	NextClaimAt time.Time `json:"next_claim_at,omitempty"`
}

// GetWeeklyStatus reports whether the weekly reward is off cooldown.
func (s *RewardService) GetWeeklyStatus(userID string) (*WeeklyStatus, error) {
	record, err := repositories.NewClaimRepository(s.db).Get(userID, models.ClaimWeekly)
	if err != nil {
		return nil, storeErr(err)
	}
	if record == nil {
		return &WeeklyStatus{Claimable: true}, nil
	}
	next := record.LastClaimedAt.Add(WeeklyCooldown)
	if s.now().Before(next) {
		return &WeeklyStatus{Claimable: false, NextClaimAt: next}, nil
	}
	return &WeeklyStatus{Claimable: true}, nil
}

// ClaimWeekly credits the weekly reward into the bank. Claimable once every
// 168 hours from the last claim.
func (s *RewardService) ClaimWeekly(userID string) (*ClaimResult, error) {
	result := &ClaimResult{Reward: WeeklyReward}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		claims := repositories.NewClaimRepository(tx)
		wallets := repositories.NewWalletRepository(tx)

		now := s.now()
		record, err := claims.Get(userID, models.ClaimWeekly)
		if err != nil {
			return storeErr(err)
		}
		if record != nil {
			elapsed := now.Sub(record.LastClaimedAt)
			if elapsed < WeeklyCooldown {
				remaining := (WeeklyCooldown - elapsed).Round(time.Minute)
				return fmt.Errorf("%w: weekly reward available in %s", ErrAlreadyClaimed, remaining)
			}
		}

		wallet, err := wallets.GetOrCreate(userID, models.CurrencyGold)
		if err != nil {
			return storeErr(err)
		}
		if wallet.Bank+WeeklyReward > wallet.BankCapacity {
			return fmt.Errorf("%w: need %d free, have %d", ErrBankFull, WeeklyReward, wallet.BankSpace())
		}
		wallet.Bank += WeeklyReward
		if err := wallets.Save(wallet); err != nil {
			return storeErr(err)
		}

		if err := claims.Upsert(&models.ClaimRecord{
			UserID:        userID,
			ClaimType:     models.ClaimWeekly,
			LastClaimedAt: now,
		}); err != nil {
			return storeErr(err)
		}

		result.Bank = wallet.Bank
		result.BankCapacity = wallet.BankCapacity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("weekly reward claimed", zap.String("user_id", userID), zap.Int64("reward", WeeklyReward))
	return result, nil
}

// currentWeekSlots returns the record's weekday bitmap if the last claim
// falls in the current week, otherwise a fresh one (new week, grid resets).
func (s *RewardService) currentWeekSlots(record *models.ClaimRecord, now time.Time) *bitset.BitSet {
	if record != nil && s.weekStart(record.LastClaimedAt).Equal(s.weekStart(now)) {
		return record.WeeklySlots()
	}
	return (&models.ClaimRecord{}).WeeklySlots()
}
