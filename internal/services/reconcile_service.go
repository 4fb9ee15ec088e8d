package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// ReconcileService keeps the clan directory consistent with the platform's
// role assignments, which can change entirely outside the bot. Both handlers
// are idempotent: replaying a signal lands on the same directory state.
type ReconcileService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewReconcileService(db *gorm.DB, log *logger.Logger) *ReconcileService {
	return &ReconcileService{db: db, log: log, now: time.Now}
}

// HandleRoleGranted reacts to the platform granting role to user. Unknown
// roles are ignored. An unaffiliated user is enrolled as Member if the cap
// allows; a user already in a different clan is left alone and logged, since
// the grant is a soft conflict, not something the bot reverts.
func (s *ReconcileService) HandleRoleGranted(roleID, userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := repo.GetClan(roleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return storeErr(err)
		}

		if userID == clan.OwnerID {
			return nil
		}

		existing, err := repo.FindClanContainingUser(userID)
		if err != nil {
			return storeErr(err)
		}
		if existing != nil {
			if existing.RoleID != roleID {
				s.log.Warn("role granted to user affiliated elsewhere, not enrolling",
					zap.String("role_id", roleID),
					zap.String("user_id", userID),
					zap.String("current_clan", existing.RoleID))
			}
			return nil
		}

		count, err := repo.CountAtRank(roleID, models.RankMember)
		if err != nil {
			return storeErr(err)
		}
		if count >= int64(models.MemberCapacity) {
			s.log.Warn("role granted but clan member slots are full, not enrolling",
				zap.String("role_id", roleID),
				zap.String("user_id", userID))
			return nil
		}

		if err := repo.AddMember(&models.ClanMember{
			UserID:     userID,
			ClanRoleID: roleID,
			Rank:       models.RankMember,
			JoinedAt:   s.now(),
		}); err != nil {
			return storeErr(err)
		}

		s.log.Info("auto-enrolled member from role grant",
			zap.String("role_id", roleID), zap.String("user_id", userID))
		return nil
	})
}

// HandleRoleRevoked reacts to the platform revoking role from user. The
// owner is never touched here; ownership changes take explicit admin
// action. Anyone else is dropped from whichever rank held them; a user
// already absent is a no-op.
func (s *ReconcileService) HandleRoleRevoked(roleID, userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewClanRepository(tx)

		clan, err := repo.GetClan(roleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return storeErr(err)
		}

		if userID == clan.OwnerID {
			s.log.Warn("role revoked from clan owner, directory left untouched",
				zap.String("role_id", roleID), zap.String("user_id", userID))
			return nil
		}

		removed, err := repo.RemoveMember(roleID, userID)
		if err != nil {
			return storeErr(err)
		}
		if removed {
			s.log.Info("member removed from role revocation",
				zap.String("role_id", roleID), zap.String("user_id", userID))
		}
		return nil
	})
}
