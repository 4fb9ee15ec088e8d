package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
)

// ClanRepository persists clan records, membership rows and invites.
// Construct it over a transaction handle to make a group of reads and
// writes a single atomic step.
type ClanRepository struct {
	db *gorm.DB
}

func NewClanRepository(db *gorm.DB) *ClanRepository {
	return &ClanRepository{db: db}
}

// CreateClan inserts the clan row. Member rows are inserted separately so
// auto-enrollment and invite acceptance share one code path.
func (r *ClanRepository) CreateClan(clan *models.Clan) error {
	return r.db.Create(clan).Error
}

// GetClan loads a clan with its member rows. Returns gorm.ErrRecordNotFound
// if the role is not registered.
func (r *ClanRepository) GetClan(roleID string) (*models.Clan, error) {
	var clan models.Clan
	err := r.db.Preload("Members").Where("role_id = ?", roleID).First(&clan).Error
	if err != nil {
		return nil, err
	}
	return &clan, nil
}

// ClanExists checks registration without loading members.
func (r *ClanRepository) ClanExists(roleID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Clan{}).Where("role_id = ?", roleID).Count(&count).Error
	return count > 0, err
}

// ListClans loads every clan with members, for roster rendering.
func (r *ClanRepository) ListClans() ([]models.Clan, error) {
	var clans []models.Clan
	err := r.db.Preload("Members").Order("created_at").Find(&clans).Error
	return clans, err
}

// FindClanByOwner returns the clan the user owns, or nil if none.
func (r *ClanRepository) FindClanByOwner(userID string) (*models.Clan, error) {
	var clan models.Clan
	err := r.db.Preload("Members").Where("owner_id = ?", userID).First(&clan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &clan, nil
}

// FindClanContainingUser returns the clan the user belongs to in any slot,
// owner included, or nil if unaffiliated. This is the single source of truth
// for "is this user already in a clan" and is re-run inside every mutating
// transaction rather than trusted from an earlier read.
func (r *ClanRepository) FindClanContainingUser(userID string) (*models.Clan, error) {
	clan, err := r.FindClanByOwner(userID)
	if err != nil || clan != nil {
		return clan, err
	}

	var member models.ClanMember
	err = r.db.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetClan(member.ClanRoleID)
}

// AddMember inserts a membership row at the given rank.
func (r *ClanRepository) AddMember(member *models.ClanMember) error {
	return r.db.Create(member).Error
}

// GetMembership loads the user's membership row, or nil if unaffiliated.
func (r *ClanRepository) GetMembership(userID string) (*models.ClanMember, error) {
	var member models.ClanMember
	err := r.db.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// CountAtRank counts the occupied slots at one rank of one clan.
func (r *ClanRepository) CountAtRank(clanRoleID string, rank models.Rank) (int64, error) {
	var count int64
	err := r.db.Model(&models.ClanMember{}).
		Where("clan_role_id = ? AND rank = ?", clanRoleID, rank).
		Count(&count).Error
	return count, err
}

// UpdateMemberRank moves a user to a new rank inside their clan. A single
// row update, so the user is never observable without a rank.
func (r *ClanRepository) UpdateMemberRank(clanRoleID, userID string, rank models.Rank) error {
	return r.db.Model(&models.ClanMember{}).
		Where("clan_role_id = ? AND user_id = ?", clanRoleID, userID).
		Update("rank", rank).Error
}

// RemoveMember deletes the user's membership row in the clan. Reports
// whether a row was actually removed.
func (r *ClanRepository) RemoveMember(clanRoleID, userID string) (bool, error) {
	res := r.db.Where("clan_role_id = ? AND user_id = ?", clanRoleID, userID).
		Delete(&models.ClanMember{})
	return res.RowsAffected > 0, res.Error
}

// SetMotto updates the clan motto; nil clears it.
func (r *ClanRepository) SetMotto(clanRoleID string, motto *string) error {
	return r.db.Model(&models.Clan{}).
		Where("role_id = ?", clanRoleID).
		Update("motto", motto).Error
}

// DeleteClan removes the clan, its member rows and its open invites in one
// transaction. External role assignments are untouched.
func (r *ClanRepository) DeleteClan(roleID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clan_role_id = ?", roleID).Delete(&models.ClanMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("clan_role_id = ?", roleID).Delete(&models.ClanInvite{}).Error; err != nil {
			return err
		}
		return tx.Where("role_id = ?", roleID).Delete(&models.Clan{}).Error
	})
}

// CreateInvite inserts an invite row.
func (r *ClanRepository) CreateInvite(invite *models.ClanInvite) error {
	return r.db.Create(invite).Error
}

// GetInvite loads an invite by code. Returns gorm.ErrRecordNotFound if the
// code is unknown (or already consumed).
func (r *ClanRepository) GetInvite(code string) (*models.ClanInvite, error) {
	var invite models.ClanInvite
	err := r.db.Where("code = ?", code).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// DeleteInvite consumes an invite; invites are single-use.
func (r *ClanRepository) DeleteInvite(code string) error {
	return r.db.Where("code = ?", code).Delete(&models.ClanInvite{}).Error
}

// DeleteExpiredInvites sweeps every invite past its window. Called by the
// maintenance job; acceptance also rejects expired codes on its own.
func (r *ClanRepository) DeleteExpiredInvites(now time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", now).Delete(&models.ClanInvite{})
	return res.RowsAffected, res.Error
}
