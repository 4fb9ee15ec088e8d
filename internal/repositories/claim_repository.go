package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashmount/ClanBot/internal/models"
)

// ClaimRepository persists reward claim records.
type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Get loads the claim record for a user and claim type, or nil if the user
// has never claimed.
func (r *ClaimRepository) Get(userID string, claimType models.ClaimType) (*models.ClaimRecord, error) {
	var record models.ClaimRecord
	err := r.db.Where("user_id = ? AND claim_type = ?", userID, claimType).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert writes the claim record, overwriting any previous one.
func (r *ClaimRepository) Upsert(record *models.ClaimRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "claim_type"}},
		UpdateAll: true,
	}).Create(record).Error
}
