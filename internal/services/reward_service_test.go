package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
)

func newTestRewardService(t *testing.T, at time.Time) *RewardService {
	t.Helper()
	s := NewRewardService(setupTestDB(t), testLogger(), time.UTC)
	s.now = func() time.Time { return at }
	return s
}

// A Wednesday.
var testClock = time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)

func TestClaimDaily(t *testing.T) {
	s := newTestRewardService(t, testClock)

	status, err := s.GetDailyStatus("u1")
	require.NoError(t, err)
	assert.True(t, status.Claimable)

	result, err := s.ClaimDaily("u1")
	require.NoError(t, err)
	assert.Equal(t, DailyReward, result.Reward)
	assert.Equal(t, DailyReward, result.Bank)

	// The reward lands in the bank, never on hand.
	wallet, err := repositories.NewWalletRepository(s.db).GetOrCreate("u1", models.CurrencyGold)
	require.NoError(t, err)
	assert.Equal(t, int64(0), wallet.Balance)
	assert.Equal(t, DailyReward, wallet.Bank)

	status, err = s.GetDailyStatus("u1")
	require.NoError(t, err)
	assert.False(t, status.Claimable)
	assert.True(t, status.Claimed[int(time.Wednesday)])

	_, err = s.ClaimDaily("u1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimDaily_NextDayReopens(t *testing.T) {
	s := newTestRewardService(t, testClock)

	_, err := s.ClaimDaily("u1")
	require.NoError(t, err)

	s.now = func() time.Time { return testClock.AddDate(0, 0, 1) }

	status, err := s.GetDailyStatus("u1")
	require.NoError(t, err)
	assert.True(t, status.Claimable)
	// Wednesday's slot is still marked within the same week.
	assert.True(t, status.Claimed[int(time.Wednesday)])

	result, err := s.ClaimDaily("u1")
	require.NoError(t, err)
	assert.Equal(t, 2*DailyReward, result.Bank)
}

func TestClaimDaily_WeekResetsOnSunday(t *testing.T) {
	s := newTestRewardService(t, testClock)

	_, err := s.ClaimDaily("u1")
	require.NoError(t, err)

	// The following Sunday starts a fresh grid.
	sunday := time.Date(2025, 6, 8, 0, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return sunday }

	status, err := s.GetDailyStatus("u1")
	require.NoError(t, err)
	assert.True(t, status.Claimable)
	for i := range status.Claimed {
		assert.False(t, status.Claimed[i])
	}

	_, err = s.ClaimDaily("u1")
	assert.NoError(t, err)
}

func TestClaimDaily_BankFull(t *testing.T) {
	s := newTestRewardService(t, testClock)

	wallets := repositories.NewWalletRepository(s.db)
	wallet, err := wallets.GetOrCreate("u1", models.CurrencyGold)
	require.NoError(t, err)
	wallet.Bank = wallet.BankCapacity
	require.NoError(t, wallets.Save(wallet))

	_, err = s.ClaimDaily("u1")
	assert.ErrorIs(t, err, ErrBankFull)

	// The rejected claim must not burn today's slot.
	status, err := s.GetDailyStatus("u1")
	require.NoError(t, err)
	assert.True(t, status.Claimable)
}

func TestClaimWeekly(t *testing.T) {
	s := newTestRewardService(t, testClock)

	result, err := s.ClaimWeekly("u1")
	require.NoError(t, err)
	assert.Equal(t, WeeklyReward, result.Reward)
	assert.Equal(t, WeeklyReward, result.Bank)

	_, err = s.ClaimWeekly("u1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// One hour short of the cooldown still fails.
	s.now = func() time.Time { return testClock.Add(WeeklyCooldown - time.Hour) }
	_, err = s.ClaimWeekly("u1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	status, err := s.GetWeeklyStatus("u1")
	require.NoError(t, err)
	assert.False(t, status.Claimable)
	assert.Equal(t, testClock.Add(WeeklyCooldown), status.NextClaimAt)

	// Exactly 168 hours later it reopens.
	s.now = func() time.Time { return testClock.Add(WeeklyCooldown) }
	result, err = s.ClaimWeekly("u1")
	require.NoError(t, err)
	assert.Equal(t, 2*WeeklyReward, result.Bank)
}

func TestClaims_AreIndependentSchedules(t *testing.T) {
	s := newTestRewardService(t, testClock)

	_, err := s.ClaimDaily("u1")
	require.NoError(t, err)
	result, err := s.ClaimWeekly("u1")
	require.NoError(t, err)
	assert.Equal(t, DailyReward+WeeklyReward, result.Bank)
}

func TestWeekStart(t *testing.T) {
	s := newTestRewardService(t, testClock)

	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, sunday, s.weekStart(testClock))
	assert.Equal(t, sunday, s.weekStart(sunday))
	assert.Equal(t, sunday, s.weekStart(sunday.Add(time.Second)))
	assert.Equal(t, sunday.AddDate(0, 0, 7), s.weekStart(sunday.AddDate(0, 0, 7)))
}
