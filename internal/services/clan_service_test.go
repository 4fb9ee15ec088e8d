package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmount/ClanBot/internal/models"
)

func newTestClanService(t *testing.T) *ClanService {
	t.Helper()
	return NewClanService(setupTestDB(t), testLogger())
}

func TestCreateClan_AutoEnrollsHolders(t *testing.T) {
	s := newTestClanService(t)

	holders := []string{"owner1", "u1", "u2", "u3"}
	result, err := s.CreateClan("role1", "owner1", holders)
	require.NoError(t, err)

	// The owner holds the role but never gets a member row.
	assert.Equal(t, 3, result.AutoEnrolledCount)

	clan, err := s.GetClan("role1")
	require.NoError(t, err)
	assert.Equal(t, "owner1", clan.OwnerID)
	assert.Len(t, clan.Members, 3)
	for _, m := range clan.Members {
		assert.Equal(t, models.RankMember, m.Rank)
	}

	rank, ok := clan.RankOf("owner1")
	require.True(t, ok)
	assert.Equal(t, models.RankOwner, rank)
}

func TestCreateClan_StopsAtMemberCapacity(t *testing.T) {
	s := newTestClanService(t)

	holders := make([]string, 150)
	for i := range holders {
		holders[i] = fmt.Sprintf("user%03d", i)
	}

	result, err := s.CreateClan("role1", "owner1", holders)
	require.NoError(t, err)
	assert.Equal(t, models.MemberCapacity, result.AutoEnrolledCount)

	clan, err := s.GetClan("role1")
	require.NoError(t, err)
	assert.Len(t, clan.Members, models.MemberCapacity)
}

func TestCreateClan_SkipsAffiliatedHolders(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1", "u2"})
	require.NoError(t, err)

	// u1 and u2 already belong to role1; only u3 is free to join.
	result, err := s.CreateClan("role2", "owner2", []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoEnrolledCount)
}

func TestCreateClan_RejectsDuplicateRole(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	_, err = s.CreateClan("role1", "owner2", nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestCreateClan_RejectsAffiliatedOwner(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	_, err = s.CreateClan("role2", "owner1", nil)
	assert.ErrorIs(t, err, ErrOwnerAlreadyAffiliated)

	// A plain member cannot own a second clan either.
	_, err = s.CreateClan("role3", "u1", nil)
	assert.ErrorIs(t, err, ErrOwnerAlreadyAffiliated)
}

func TestAddMember_OneClanPerUser(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)
	_, err = s.CreateClan("role2", "owner2", nil)
	require.NoError(t, err)

	require.NoError(t, s.AddMember("role1", "u1", models.RankMember))
	err = s.AddMember("role2", "u1", models.RankMember)
	assert.ErrorIs(t, err, ErrUserAlreadyAffiliated)
}

func TestAddMember_RejectsRestrictedRanks(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	err = s.AddMember("role1", "u1", models.RankViceGuildMaster)
	assert.ErrorIs(t, err, ErrInvalidRank)
	err = s.AddMember("role1", "u1", models.RankOwner)
	assert.ErrorIs(t, err, ErrInvalidRank)
}

func TestChangeRank_AuthorityRules(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1", "u2", "u3"})
	require.NoError(t, err)

	// A plain member cannot promote anyone.
	err = s.ChangeRank("role1", "u1", models.RankOfficer, "u2")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	// The owner promotes u1 to vice.
	require.NoError(t, s.ChangeRank("role1", "u1", models.RankViceGuildMaster, "owner1"))

	// A vice can promote to officer but not to vice.
	require.NoError(t, s.ChangeRank("role1", "u2", models.RankOfficer, "u1"))
	err = s.ChangeRank("role1", "u3", models.RankViceGuildMaster, "u1")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	// The owner's own rank is out of reach.
	err = s.ChangeRank("role1", "owner1", models.RankMember, "owner1")
	assert.ErrorIs(t, err, ErrTargetIsOwner)
}

func TestChangeRank_FullRankLeavesMemberInPlace(t *testing.T) {
	s := newTestClanService(t)

	holders := []string{"u1", "u2", "u3", "u4", "u5"}
	_, err := s.CreateClan("role1", "owner1", holders)
	require.NoError(t, err)

	for _, u := range holders[:models.ViceCapacity] {
		require.NoError(t, s.ChangeRank("role1", u, models.RankViceGuildMaster, "owner1"))
	}

	err = s.ChangeRank("role1", "u5", models.RankViceGuildMaster, "owner1")
	assert.ErrorIs(t, err, ErrRankFull)

	// The failed promotion must not have moved u5 out of the member set.
	clan, err := s.GetClan("role1")
	require.NoError(t, err)
	rank, ok := clan.RankOf("u5")
	require.True(t, ok)
	assert.Equal(t, models.RankMember, rank)
}

func TestKick_RequiresStrictOutrank(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	require.NoError(t, s.ChangeRank("role1", "u1", models.RankOfficer, "owner1"))
	require.NoError(t, s.ChangeRank("role1", "u2", models.RankOfficer, "owner1"))

	// Officer vs officer is not a strict outrank.
	_, err = s.Kick("role1", "u2", "u1")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	// Members cannot kick at all.
	_, err = s.Kick("role1", "u1", "u3")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	// Officer over member works.
	removed, err := s.Kick("role1", "u3", "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	// The owner is untouchable.
	_, err = s.Kick("role1", "owner1", "u1")
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)

	// Kicking someone already gone reports false without error.
	removed, err = s.Kick("role1", "u3", "owner1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLeave(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	left, err := s.Leave("u1")
	require.NoError(t, err)
	assert.Equal(t, "role1", left)

	_, err = s.Leave("u1")
	assert.ErrorIs(t, err, ErrNotAffiliated)

	_, err = s.Leave("owner1")
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
}

func TestSetMotto(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	motto := "strength in numbers"
	require.NoError(t, s.SetMotto("role1", &motto, "owner1"))

	clan, err := s.GetClan("role1")
	require.NoError(t, err)
	require.NotNil(t, clan.Motto)
	assert.Equal(t, motto, *clan.Motto)

	err = s.SetMotto("role1", &motto, "u1")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	// A blank motto clears it.
	blank := "   "
	require.NoError(t, s.SetMotto("role1", &blank, "owner1"))
	clan, err = s.GetClan("role1")
	require.NoError(t, err)
	assert.Nil(t, clan.Motto)
}

func TestDeleteClan_FreesOwnerForNewClan(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	ownerID, err := s.DeleteClan("role1")
	require.NoError(t, err)
	assert.Equal(t, "owner1", ownerID)

	_, err = s.GetClan("role1")
	assert.ErrorIs(t, err, ErrClanNotFound)

	// Members of the deleted clan are unaffiliated again.
	clan, err := s.FindClanContainingUser("u1")
	require.NoError(t, err)
	assert.Nil(t, clan)

	_, err = s.CreateClan("role2", "owner1", nil)
	assert.NoError(t, err)
}

func TestInviteFlow(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	invite, err := s.CreateInvite("role1", "owner1", "u1")
	require.NoError(t, err)
	assert.Len(t, invite.Code, 8)

	// Only the target may redeem the code.
	_, err = s.AcceptInvite(invite.Code, "u2")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	clan, err := s.AcceptInvite(invite.Code, "u1")
	require.NoError(t, err)
	rank, ok := clan.RankOf("u1")
	require.True(t, ok)
	assert.Equal(t, models.RankMember, rank)

	// Invites are single-use.
	_, err = s.AcceptInvite(invite.Code, "u1")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInvite_RequiresOfficer(t *testing.T) {
	s := newTestClanService(t)

	_, err := s.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	_, err = s.CreateInvite("role1", "u1", "u2")
	assert.ErrorIs(t, err, ErrInvalidAuthority)

	require.NoError(t, s.ChangeRank("role1", "u1", models.RankOfficer, "owner1"))
	_, err = s.CreateInvite("role1", "u1", "u2")
	assert.NoError(t, err)
}

func TestAcceptInvite_Expired(t *testing.T) {
	s := newTestClanService(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	_, err := s.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)
	invite, err := s.CreateInvite("role1", "owner1", "u1")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(models.InviteTTL + time.Second) }
	_, err = s.AcceptInvite(invite.Code, "u1")
	assert.ErrorIs(t, err, ErrInviteExpired)

	// The expired code is consumed, not left behind.
	_, err = s.AcceptInvite(invite.Code, "u1")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}
