package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// ClanService is the clan directory: membership, rank hierarchy and the
// invariants across them. Every mutating operation runs in one transaction
// and re-derives affiliation from the store at that moment, never from a
// snapshot carried across calls, because reconciliation can change the
// directory between a caller's read and write.
type ClanService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewClanService(db *gorm.DB, log *logger.Logger) *ClanService {
	return &ClanService{db: db, log: log, now: time.Now}
}

// CreateClanResult reports what clan creation actually did.
type CreateClanResult struct {
	Clan              *models.Clan `json:"clan"`
	AutoEnrolledCount int          `json:"auto_enrolled_count"`
}

// CreateClan registers a platform role as a clan under the given owner and
// auto-enrolls existing role holders as Members until the member cap fills.
// Holders beyond the cap, and holders already in some clan, are silently
// skipped; the count reports who actually made it in.
func (s *ClanService) CreateClan(roleID, ownerID string, existingRoleHolders []string) (*CreateClanResult, error) {
	result := &CreateClanResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		exists, err := repo.ClanExists(roleID)
		if err != nil {
			return storeErr(err)
		}
		if exists {
			return fmt.Errorf("%w: role %s", ErrAlreadyRegistered, roleID)
		}

		if existing, err := repo.FindClanContainingUser(ownerID); err != nil {
			return storeErr(err)
		} else if existing != nil {
			return fmt.Errorf("%w: user %s is in clan %s", ErrOwnerAlreadyAffiliated, ownerID, existing.RoleID)
		}

		clan := &models.Clan{RoleID: roleID, OwnerID: ownerID}
		if err := repo.CreateClan(clan); err != nil {
			return storeErr(err)
		}

		enrolled := 0
		for _, holderID := range existingRoleHolders {
			if holderID == ownerID {
				continue
			}
			if enrolled >= models.MemberCapacity {
				break
			}
			affiliated, err := repo.FindClanContainingUser(holderID)
			if err != nil {
				return storeErr(err)
			}
			if affiliated != nil {
				continue
			}
			member := &models.ClanMember{
				UserID:     holderID,
				ClanRoleID: roleID,
				Rank:       models.RankMember,
				JoinedAt:   s.now(),
			}
			if err := repo.AddMember(member); err != nil {
				return storeErr(err)
			}
			enrolled++
		}

		result.Clan = clan
		result.AutoEnrolledCount = enrolled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("clan created",
		zap.String("role_id", roleID),
		zap.String("owner_id", ownerID),
		zap.Int("auto_enrolled", result.AutoEnrolledCount))
	return result, nil
}

// GetClan loads a clan with its roster.
func (s *ClanService) GetClan(roleID string) (*models.Clan, error) {
	clan, err := repositories.NewClanRepository(s.db).GetClan(roleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role %s", ErrClanNotFound, roleID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return clan, nil
}

// ListClans returns every registered clan with members loaded.
func (s *ClanService) ListClans() ([]models.Clan, error) {
	clans, err := repositories.NewClanRepository(s.db).ListClans()
	if err != nil {
		return nil, storeErr(err)
	}
	return clans, nil
}

// FindClanByOwner returns the clan the user owns, or nil.
func (s *ClanService) FindClanByOwner(userID string) (*models.Clan, error) {
	clan, err := repositories.NewClanRepository(s.db).FindClanByOwner(userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return clan, nil
}

// FindClanContainingUser returns the clan holding the user in any slot, or nil.
func (s *ClanService) FindClanContainingUser(userID string) (*models.Clan, error) {
	clan, err := repositories.NewClanRepository(s.db).FindClanContainingUser(userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return clan, nil
}

// AddMember enrolls a user at the named rank. Vice Guild Masters can only be
// made through the promotion path, so only Officer and Member are accepted
// here. Affiliation and capacity are re-checked inside the transaction.
func (s *ClanService) AddMember(clanRoleID, userID string, rank models.Rank) error {
	if rank != models.RankOfficer && rank != models.RankMember {
		return fmt.Errorf("%w: cannot add at rank %s, use the promotion path", ErrInvalidRank, rank)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		if err := s.requireClan(repo, clanRoleID); err != nil {
			return err
		}
		if existing, err := repo.FindClanContainingUser(userID); err != nil {
			return storeErr(err)
		} else if existing != nil {
			return fmt.Errorf("%w: user %s is in clan %s", ErrUserAlreadyAffiliated, userID, existing.RoleID)
		}
		if err := s.requireRankSpace(repo, clanRoleID, rank); err != nil {
			return err
		}

		return wrapStore(repo.AddMember(&models.ClanMember{
			UserID:     userID,
			ClanRoleID: clanRoleID,
			Rank:       rank,
			JoinedAt:   s.now(),
		}))
	})
}

// ChangeRank moves a clan member to a new rank. Promotion to Vice Guild
// Master takes the Owner; any other move takes Owner or Vice. The rank swap
// is a single row update, so a capacity failure leaves the member exactly
// where they were.
func (s *ClanService) ChangeRank(clanRoleID, userID string, newRank models.Rank, actingUserID string) error {
	if newRank != models.RankViceGuildMaster && newRank != models.RankOfficer && newRank != models.RankMember {
		return fmt.Errorf("%w: cannot assign rank %s", ErrInvalidRank, newRank)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, clanRoleID)
		if err != nil {
			return err
		}
		if userID == clan.OwnerID {
			return fmt.Errorf("%w: ownership changes take an explicit admin action", ErrTargetIsOwner)
		}

		currentRank, inClan := clan.RankOf(userID)
		if !inClan {
			return fmt.Errorf("%w: user %s", ErrNotAffiliated, userID)
		}

		actingRank, actingInClan := clan.RankOf(actingUserID)
		if !actingInClan {
			return fmt.Errorf("%w: user %s is not in clan %s", ErrInvalidAuthority, actingUserID, clanRoleID)
		}
		if newRank == models.RankViceGuildMaster {
			if actingRank != models.RankOwner {
				return fmt.Errorf("%w: only the Owner may promote to Vice Guild Master", ErrInvalidAuthority)
			}
		} else if actingRank != models.RankOwner && actingRank != models.RankViceGuildMaster {
			return fmt.Errorf("%w: Owner or Vice Guild Master required", ErrInvalidAuthority)
		}

		if currentRank == newRank {
			return nil
		}
		if err := s.requireRankSpace(repo, clanRoleID, newRank); err != nil {
			return err
		}
		return wrapStore(repo.UpdateMemberRank(clanRoleID, userID, newRank))
	})
}

// RemoveMember drops a user from the clan's rank sets. Returns false without
// error when the user was not in the clan; the owner is never removable.
func (s *ClanService) RemoveMember(clanRoleID, userID string) (bool, error) {
	var removed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, clanRoleID)
		if err != nil {
			return err
		}
		if userID == clan.OwnerID {
			return fmt.Errorf("%w: transfer ownership or delete the clan instead", ErrCannotRemoveOwner)
		}

		removed, err = repo.RemoveMember(clanRoleID, userID)
		return wrapStore(err)
	})
	return removed, err
}

// Kick removes a member on another member's authority. The acting user must
// hold Officer or better and strictly outrank the target; the Owner bypasses
// both checks.
func (s *ClanService) Kick(clanRoleID, targetUserID, actingUserID string) (bool, error) {
	var removed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, clanRoleID)
		if err != nil {
			return err
		}
		if targetUserID == clan.OwnerID {
			return fmt.Errorf("%w", ErrCannotRemoveOwner)
		}

		targetRank, inClan := clan.RankOf(targetUserID)
		if !inClan {
			return nil
		}

		actingRank, actingInClan := clan.RankOf(actingUserID)
		if !actingInClan {
			return fmt.Errorf("%w: user %s is not in clan %s", ErrInvalidAuthority, actingUserID, clanRoleID)
		}
		if actingRank != models.RankOwner {
			if actingRank.Level() < models.RankOfficer.Level() || actingRank.Level() <= targetRank.Level() {
				return fmt.Errorf("%w: %s cannot kick %s", ErrInvalidAuthority, actingRank, targetRank)
			}
		}

		removed, err = repo.RemoveMember(clanRoleID, targetUserID)
		return wrapStore(err)
	})
	return removed, err
}

// Leave removes the caller from whichever clan contains them. Owners must
// hand the clan off or delete it; they cannot walk away from it.
func (s *ClanService) Leave(userID string) (string, error) {
	var clanRoleID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := repo.FindClanContainingUser(userID)
		if err != nil {
			return storeErr(err)
		}
		if clan == nil {
			return fmt.Errorf("%w: user %s", ErrNotAffiliated, userID)
		}
		if userID == clan.OwnerID {
			return fmt.Errorf("%w: transfer ownership or delete the clan instead", ErrCannotRemoveOwner)
		}

		clanRoleID = clan.RoleID
		_, err = repo.RemoveMember(clan.RoleID, userID)
		return wrapStore(err)
	})
	return clanRoleID, err
}

// SetMotto updates the clan motto (nil clears it). Owner or Vice only.
func (s *ClanService) SetMotto(clanRoleID string, motto *string, actingUserID string) error {
	if motto != nil && strings.TrimSpace(*motto) == "" {
		motto = nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, clanRoleID)
		if err != nil {
			return err
		}
		actingRank, inClan := clan.RankOf(actingUserID)
		if !inClan || (actingRank != models.RankOwner && actingRank != models.RankViceGuildMaster) {
			return fmt.Errorf("%w: Owner or Vice Guild Master required", ErrInvalidAuthority)
		}
		return wrapStore(repo.SetMotto(clanRoleID, motto))
	})
}

// DeleteClan removes the clan record entirely and hands the prior owner id
// back to the caller for external cleanup. Platform role assignments are
// left alone.
func (s *ClanService) DeleteClan(roleID string) (string, error) {
	var ownerID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, roleID)
		if err != nil {
			return err
		}
		ownerID = clan.OwnerID
		return wrapStore(repo.DeleteClan(roleID))
	})
	if err != nil {
		return "", err
	}

	s.log.Info("clan deleted", zap.String("role_id", roleID), zap.String("prior_owner", ownerID))
	return ownerID, nil
}

// CreateInvite issues a single-use invite for the target user, valid for
// five minutes. Officer or better may invite.
func (s *ClanService) CreateInvite(clanRoleID, inviterID, targetID string) (*models.ClanInvite, error) {
	var invite *models.ClanInvite
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := s.loadClan(repo, clanRoleID)
		if err != nil {
			return err
		}
		inviterRank, inClan := clan.RankOf(inviterID)
		if !inClan || inviterRank.Level() < models.RankOfficer.Level() {
			return fmt.Errorf("%w: Officer or better required to invite", ErrInvalidAuthority)
		}
		if existing, err := repo.FindClanContainingUser(targetID); err != nil {
			return storeErr(err)
		} else if existing != nil {
			return fmt.Errorf("%w: user %s is in clan %s", ErrUserAlreadyAffiliated, targetID, existing.RoleID)
		}
		if err := s.requireRankSpace(repo, clanRoleID, models.RankMember); err != nil {
			return err
		}

		now := s.now()
		invite = &models.ClanInvite{
			Code:       strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
			ClanRoleID: clanRoleID,
			InviterID:  inviterID,
			TargetID:   targetID,
			ExpiresAt:  now.Add(models.InviteTTL),
			CreatedAt:  now,
		}
		return wrapStore(repo.CreateInvite(invite))
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInvite consumes an invite and enrolls the caller as Member.
// Affiliation and capacity are re-derived here, not trusted from invite
// time: the directory may have moved while the invite sat open.
func (s *ClanService) AcceptInvite(code, userID string) (*models.Clan, error) {
	var clan *models.Clan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		invite, err := repo.GetInvite(code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: code %s", ErrInviteNotFound, code)
		}
		if err != nil {
			return storeErr(err)
		}
		if invite.TargetID != userID {
			return fmt.Errorf("%w: code %s", ErrInviteNotFound, code)
		}
		if invite.Expired(s.now()) {
			if err := repo.DeleteInvite(code); err != nil {
				return storeErr(err)
			}
			return fmt.Errorf("%w: code %s", ErrInviteExpired, code)
		}

		if existing, err := repo.FindClanContainingUser(userID); err != nil {
			return storeErr(err)
		} else if existing != nil {
			return fmt.Errorf("%w: user %s is in clan %s", ErrUserAlreadyAffiliated, userID, existing.RoleID)
		}
		if err := s.requireRankSpace(repo, invite.ClanRoleID, models.RankMember); err != nil {
			return err
		}

		if err := repo.AddMember(&models.ClanMember{
			UserID:     userID,
			ClanRoleID: invite.ClanRoleID,
			Rank:       models.RankMember,
			JoinedAt:   s.now(),
		}); err != nil {
			return storeErr(err)
		}
		if err := repo.DeleteInvite(code); err != nil {
			return storeErr(err)
		}

		clan, err = repo.GetClan(invite.ClanRoleID)
		return wrapStore(err)
	})
	if err != nil {
		return nil, err
	}
	return clan, nil
}

// loadClan fetches a clan with the roster, mapping a missing row to the
// domain error.
func (s *ClanService) loadClan(repo *repositories.ClanRepository, roleID string) (*models.Clan, error) {
	clan, err := repo.GetClan(roleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role %s", ErrClanNotFound, roleID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return clan, nil
}

func (s *ClanService) requireClan(repo *repositories.ClanRepository, roleID string) error {
	exists, err := repo.ClanExists(roleID)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: role %s", ErrClanNotFound, roleID)
	}
	return nil
}

func (s *ClanService) requireRankSpace(repo *repositories.ClanRepository, clanRoleID string, rank models.Rank) error {
	count, err := repo.CountAtRank(clanRoleID, rank)
	if err != nil {
		return storeErr(err)
	}
	if count >= int64(rank.Capacity()) {
		return fmt.Errorf("%w: %s slots %d/%d", ErrRankFull, rank, count, rank.Capacity())
	}
	return nil
}

// wrapStore tags a non-nil repo error as a store failure.
func wrapStore(err error) error {
	if err != nil {
		return storeErr(err)
	}
	return nil
}
