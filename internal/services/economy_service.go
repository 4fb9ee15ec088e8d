package services

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// Destination is the closed set of places admin adjustments may land.
// Never derived from raw input strings without ParseDestination.
type Destination string

const (
	DestinationBalance Destination = "balance"
	DestinationBank    Destination = "bank"
)

// ParseDestination validates an externally supplied destination name.
func ParseDestination(s string) (Destination, error) {
	switch Destination(s) {
	case DestinationBalance:
		return DestinationBalance, nil
	case DestinationBank:
		return DestinationBank, nil
	default:
		return "", fmt.Errorf("%w: unknown destination %q", ErrInvalidAmount, s)
	}
}

// EconomyService is the wallet ledger. Every mutation runs inside one
// transaction and re-reads the wallet there, so concurrent interactions
// never observe or produce a partial write.
type EconomyService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEconomyService(db *gorm.DB, log *logger.Logger) *EconomyService {
	return &EconomyService{db: db, log: log}
}

// BankUpgradeCost is the bank cost to leave the given tier.
func BankUpgradeCost(tier int) int64 {
	return int64(math.Floor(5000 * math.Pow(float64(tier), 2.1)))
}

// BankCapacityForTier is the bank ceiling once a wallet reaches the tier.
func BankCapacityForTier(tier int) int64 {
	return models.BaseBankCapacity + models.BankCapacityPerTier*int64(tier-1)
}

// GetWallet loads the wallet, creating it with tier-1 defaults on first
// reference.
func (s *EconomyService) GetWallet(userID string, currency models.Currency) (*models.Wallet, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}
	wallet, err := repositories.NewWalletRepository(s.db).GetOrCreate(userID, currency)
	if err != nil {
		return nil, storeErr(err)
	}
	return wallet, nil
}

// Adjust is the admin-only mutation: a signed delta applied to one of the
// two allowed destinations, exempt from capacity caps but never allowed to
// drive a pool negative.
func (s *EconomyService) Adjust(userID string, dest Destination, delta int64, currency models.Currency) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.inWalletTx(userID, currency, func(repo *repositories.WalletRepository, w *models.Wallet) error {
		switch dest {
		case DestinationBalance:
			if w.Balance+delta < 0 {
				return fmt.Errorf("%w: balance is %d, cannot apply %d", ErrInvalidAmount, w.Balance, delta)
			}
			w.Balance += delta
		case DestinationBank:
			if w.Bank+delta < 0 {
				return fmt.Errorf("%w: bank is %d, cannot apply %d", ErrInvalidAmount, w.Bank, delta)
			}
			w.Bank += delta
		default:
			return fmt.Errorf("%w: unknown destination %q", ErrInvalidAmount, dest)
		}
		wallet = w
		return repo.Save(w)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("admin wallet adjustment",
		zap.String("user_id", userID),
		zap.String("destination", string(dest)),
		zap.Int64("delta", delta))
	return wallet, nil
}

// SetBalance overwrites the on-hand balance outright (admin override, no
// capacity clamp).
func (s *EconomyService) SetBalance(userID string, amount int64, currency models.Currency) (*models.Wallet, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	var wallet *models.Wallet
	err := s.inWalletTx(userID, currency, func(repo *repositories.WalletRepository, w *models.Wallet) error {
		w.Balance = amount
		wallet = w
		return repo.Save(w)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// DepositToBank moves gold from on-hand balance into the bank.
func (s *EconomyService) DepositToBank(userID string, amount int64, currency models.Currency) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	var wallet *models.Wallet
	err := s.inWalletTx(userID, currency, func(repo *repositories.WalletRepository, w *models.Wallet) error {
		if w.Balance < amount {
			return fmt.Errorf("%w: have %d on hand, need %d", ErrInsufficientBalance, w.Balance, amount)
		}
		if w.Bank+amount > w.BankCapacity {
			return fmt.Errorf("%w: %d of %d used, %d more would overflow", ErrBankFull, w.Bank, w.BankCapacity, amount)
		}
		w.Balance -= amount
		w.Bank += amount
		wallet = w
		return repo.Save(w)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// WithdrawResult reports what a bank withdrawal actually moved. When the
// sanctuary cannot hold the whole amount the shortfall goes straight back
// into the bank; a withdrawal never loses gold.
type WithdrawResult struct {
	Moved    int64          `json:"moved"`
	Refunded int64          `json:"refunded"`
	Wallet   *models.Wallet `json:"wallet"`
}

// WithdrawFromBank moves gold from the bank to the on-hand balance, clamped
// by the sanctuary's free space.
func (s *EconomyService) WithdrawFromBank(userID string, amount int64, currency models.Currency) (*WithdrawResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	result := &WithdrawResult{}
	err := s.inWalletTx(userID, currency, func(repo *repositories.WalletRepository, w *models.Wallet) error {
		if w.Bank < amount {
			return fmt.Errorf("%w: have %d banked, need %d", ErrInsufficientBank, w.Bank, amount)
		}
		space := w.SanctuarySpace()
		if space <= 0 {
			return fmt.Errorf("%w: holding %d of %d", ErrSanctuaryFull, w.Balance, w.SanctuaryCapacity)
		}

		moved := min(amount, space)
		refund := amount - moved
		w.Bank -= amount
		w.Bank += refund
		w.Balance += moved

		result.Moved = moved
		result.Refunded = refund
		result.Wallet = w
		return repo.Save(w)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferResult reports a completed gold transfer. Like withdrawal, the
// recipient's sanctuary cap clamps the amount and the shortfall refunds to
// the sender, keeping the balance invariant intact on both sides.
type TransferResult struct {
	Moved    int64 `json:"moved"`
	Refunded int64 `json:"refunded"`
}

// TransferGold moves on-hand gold between two users' wallets atomically.
func (s *EconomyService) TransferGold(fromUserID, toUserID string, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("%w: cannot transfer to yourself", ErrInvalidAmount)
	}

	result := &TransferResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewWalletRepository(tx)

		sender, err := repo.GetOrCreate(fromUserID, models.CurrencyGold)
		if err != nil {
			return storeErr(err)
		}
		if sender.Balance < amount {
			return fmt.Errorf("%w: have %d on hand, need %d", ErrInsufficientBalance, sender.Balance, amount)
		}

		recipient, err := repo.GetOrCreate(toUserID, models.CurrencyGold)
		if err != nil {
			return storeErr(err)
		}
		space := recipient.SanctuarySpace()
		if space <= 0 {
			return fmt.Errorf("%w: recipient holds %d of %d", ErrSanctuaryFull, recipient.Balance, recipient.SanctuaryCapacity)
		}

		moved := min(amount, space)
		sender.Balance -= moved
		recipient.Balance += moved

		if err := repo.Save(sender); err != nil {
			return storeErr(err)
		}
		if err := repo.Save(recipient); err != nil {
			return storeErr(err)
		}

		result.Moved = moved
		result.Refunded = amount - moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpgradeResult reports a completed bank tier upgrade.
type UpgradeResult struct {
	NewTier     int            `json:"new_tier"`
	NewCapacity int64          `json:"new_capacity"`
	Cost        int64          `json:"cost"`
	Wallet      *models.Wallet `json:"wallet"`
}

// UpgradeBankTier pays the tier cost out of the bank and raises the ceiling.
func (s *EconomyService) UpgradeBankTier(userID string, currency models.Currency) (*UpgradeResult, error) {
	result := &UpgradeResult{}
	err := s.inWalletTx(userID, currency, func(repo *repositories.WalletRepository, w *models.Wallet) error {
		cost := BankUpgradeCost(w.BankTier)
		if w.Bank < cost {
			return fmt.Errorf("%w: upgrade costs %d, have %d banked", ErrInsufficientBank, cost, w.Bank)
		}
		w.Bank -= cost
		w.BankTier++
		w.BankCapacity = BankCapacityForTier(w.BankTier)

		result.NewTier = w.BankTier
		result.NewCapacity = w.BankCapacity
		result.Cost = cost
		result.Wallet = w
		return repo.Save(w)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bank tier upgraded",
		zap.String("user_id", userID),
		zap.Int("new_tier", result.NewTier),
		zap.Int64("cost", result.Cost))
	return result, nil
}

// PurchaseItem debits the item price from the buyer's on-hand balance.
// Granting the platform role afterwards is the caller's responsibility.
func (s *EconomyService) PurchaseItem(userID, roleID string) (*models.ShopItem, error) {
	var item *models.ShopItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		shop := repositories.NewShopRepository(tx)
		wallets := repositories.NewWalletRepository(tx)

		found, err := shop.Get(roleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: role %s", ErrItemNotFound, roleID)
		}
		if err != nil {
			return storeErr(err)
		}

		wallet, err := wallets.GetOrCreate(userID, found.Currency)
		if err != nil {
			return storeErr(err)
		}
		if wallet.Balance < found.Price {
			return fmt.Errorf("%w: %s costs %d, have %d on hand", ErrInsufficientBalance, found.Name, found.Price, wallet.Balance)
		}
		wallet.Balance -= found.Price
		if err := wallets.Save(wallet); err != nil {
			return storeErr(err)
		}

		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shop purchase",
		zap.String("user_id", userID),
		zap.String("role_id", roleID),
		zap.Int64("price", item.Price))
	return item, nil
}

// inWalletTx loads (or lazily creates) the wallet inside a transaction and
// hands it to fn; any error rolls the whole step back.
func (s *EconomyService) inWalletTx(userID string, currency models.Currency, fn func(*repositories.WalletRepository, *models.Wallet) error) error {
	if !currency.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewWalletRepository(tx)
		wallet, err := repo.GetOrCreate(userID, currency)
		if err != nil {
			return storeErr(err)
		}
		if err := fn(repo, wallet); err != nil {
			if errors.Is(err, ErrStoreIO) || isDomainErr(err) {
				return err
			}
			return storeErr(err)
		}
		return nil
	})
}

// isDomainErr reports whether err is one of the typed domain failures, as
// opposed to a raw persistence error that still needs tagging.
func isDomainErr(err error) bool {
	for _, kind := range []error{
		ErrInvalidAmount, ErrInsufficientBalance, ErrInsufficientBank,
		ErrBankFull, ErrSanctuaryFull, ErrInvalidCurrency, ErrAlreadyClaimed,
		ErrItemNotFound,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
