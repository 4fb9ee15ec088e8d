package models

import "time"

// Currency is the closed set of currencies the ledger tracks. The deployment
// runs a single currency but every wallet row is keyed by it.
type Currency string

const CurrencyGold Currency = "gold"

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == CurrencyGold
}

// Tier-1 wallet defaults and the bank growth step per tier.
const (
	BaseBankCapacity      int64 = 100000
	BankCapacityPerTier   int64 = 25000
	BaseSanctuaryCapacity int64 = 3500
)

// Wallet is one user's holdings in one currency, split across on-hand
// balance (bounded by the sanctuary) and the bank (bounded by tier).
type Wallet struct {
	UserID   string   `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Currency Currency `gorm:"primaryKey;type:varchar(16)" json:"currency"`

	Balance           int64 `gorm:"not null;default:0" json:"balance"`
	Bank              int64 `gorm:"not null;default:0" json:"bank"`
	BankTier          int   `gorm:"not null;default:1" json:"bank_tier"`
	BankCapacity      int64 `gorm:"not null" json:"bank_capacity"`
	SanctuaryCapacity int64 `gorm:"not null" json:"sanctuary_capacity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// NewWallet returns a tier-1 wallet with default capacities and nothing in it.
func NewWallet(userID string, currency Currency) *Wallet {
	return &Wallet{
		UserID:            userID,
		Currency:          currency,
		BankTier:          1,
		BankCapacity:      BaseBankCapacity,
		SanctuaryCapacity: BaseSanctuaryCapacity,
	}
}

// SanctuarySpace is how much more gold the on-hand balance can take.
func (w *Wallet) SanctuarySpace() int64 {
	return w.SanctuaryCapacity - w.Balance
}

// BankSpace is how much more gold the bank can take at the current tier.
func (w *Wallet) BankSpace() int64 {
	return w.BankCapacity - w.Bank
}
