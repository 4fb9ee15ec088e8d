package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmount/ClanBot/internal/models"
)

func newTestReconcileService(t *testing.T) (*ReconcileService, *ClanService) {
	t.Helper()
	db := setupTestDB(t)
	log := testLogger()
	return NewReconcileService(db, log), NewClanService(db, log)
}

func TestHandleRoleGranted_EnrollsAndReplaysClean(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	require.NoError(t, r.HandleRoleGranted("role1", "u1"))

	clan, err := clans.GetClan("role1")
	require.NoError(t, err)
	rank, ok := clan.RankOf("u1")
	require.True(t, ok)
	assert.Equal(t, models.RankMember, rank)

	// Replaying the same signal lands on the same state.
	require.NoError(t, r.HandleRoleGranted("role1", "u1"))
	clan, err = clans.GetClan("role1")
	require.NoError(t, err)
	assert.Len(t, clan.Members, 1)
}

func TestHandleRoleGranted_IgnoresUnknownRole(t *testing.T) {
	r, _ := newTestReconcileService(t)
	assert.NoError(t, r.HandleRoleGranted("unregistered", "u1"))
}

func TestHandleRoleGranted_OwnerIsNoOp(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	require.NoError(t, r.HandleRoleGranted("role1", "owner1"))

	clan, err := clans.GetClan("role1")
	require.NoError(t, err)
	assert.Empty(t, clan.Members)
}

func TestHandleRoleGranted_AffiliatedElsewhereIsLeftAlone(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)
	_, err = clans.CreateClan("role2", "owner2", nil)
	require.NoError(t, err)

	// The conflicting grant is logged, not enforced.
	require.NoError(t, r.HandleRoleGranted("role2", "u1"))

	clan, err := clans.FindClanContainingUser("u1")
	require.NoError(t, err)
	require.NotNil(t, clan)
	assert.Equal(t, "role1", clan.RoleID)
}

func TestHandleRoleGranted_FullClanIsLeftAlone(t *testing.T) {
	r, clans := newTestReconcileService(t)

	holders := make([]string, models.MemberCapacity)
	for i := range holders {
		holders[i] = fmt.Sprintf("user%03d", i)
	}
	_, err := clans.CreateClan("role1", "owner1", holders)
	require.NoError(t, err)

	require.NoError(t, r.HandleRoleGranted("role1", "latecomer"))

	clan, err := clans.FindClanContainingUser("latecomer")
	require.NoError(t, err)
	assert.Nil(t, clan)
}

func TestHandleRoleRevoked_RemovesMember(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)

	require.NoError(t, r.HandleRoleRevoked("role1", "u1"))

	clan, err := clans.FindClanContainingUser("u1")
	require.NoError(t, err)
	assert.Nil(t, clan)

	// Replaying the revocation is a no-op.
	assert.NoError(t, r.HandleRoleRevoked("role1", "u1"))
}

func TestHandleRoleRevoked_OwnerUntouched(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", nil)
	require.NoError(t, err)

	require.NoError(t, r.HandleRoleRevoked("role1", "owner1"))

	clan, err := clans.GetClan("role1")
	require.NoError(t, err)
	assert.Equal(t, "owner1", clan.OwnerID)
}

func TestHandleRoleRevoked_RevokesAnyRank(t *testing.T) {
	r, clans := newTestReconcileService(t)

	_, err := clans.CreateClan("role1", "owner1", []string{"u1"})
	require.NoError(t, err)
	require.NoError(t, clans.ChangeRank("role1", "u1", models.RankViceGuildMaster, "owner1"))

	require.NoError(t, r.HandleRoleRevoked("role1", "u1"))

	clan, err := clans.FindClanContainingUser("u1")
	require.NoError(t, err)
	assert.Nil(t, clan)
}
