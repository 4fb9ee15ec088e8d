package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
)

// WalletRepository persists wallet rows. Every multi-field mutation in the
// ledger goes through a repository bound to a transaction handle, so a crash
// mid-operation never leaves a partial write behind.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate loads the wallet, lazily initializing it with tier-1 defaults
// on first reference. Wallets are never deleted.
func (r *WalletRepository) GetOrCreate(userID string, currency models.Currency) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Where("user_id = ? AND currency = ?", userID, currency).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := models.NewWallet(userID, currency)
		if err := r.db.Create(fresh).Error; err != nil {
			return nil, err
		}
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Save writes the full wallet row back.
func (r *WalletRepository) Save(wallet *models.Wallet) error {
	return r.db.Save(wallet).Error
}

// Count returns the number of wallet rows, for the economy snapshot job.
func (r *WalletRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Wallet{}).Count(&count).Error
	return count, err
}

// TotalGold sums balance+bank across all wallets of a currency, for the
// economy snapshot job.
func (r *WalletRepository) TotalGold(currency models.Currency) (int64, error) {
	var total *int64
	err := r.db.Model(&models.Wallet{}).
		Where("currency = ?", currency).
		Select("SUM(balance + bank)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
