package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// ShopService manages the role catalog. Pure lookup/CRUD; purchases debit
// through the economy ledger.
type ShopService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShopService(db *gorm.DB, log *logger.Logger) *ShopService {
	return &ShopService{db: db, log: log}
}

// UpsertItem creates or replaces a listing.
func (s *ShopService) UpsertItem(item *models.ShopItem) error {
	if item.Price < 0 {
		return fmt.Errorf("%w: price %d", ErrInvalidAmount, item.Price)
	}
	if !item.Currency.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCurrency, item.Currency)
	}
	if err := repositories.NewShopRepository(s.db).Upsert(item); err != nil {
		return storeErr(err)
	}
	s.log.Info("shop item upserted", zap.String("role_id", item.RoleID), zap.Int64("price", item.Price))
	return nil
}

// GetItem loads one listing.
func (s *ShopService) GetItem(roleID string) (*models.ShopItem, error) {
	item, err := repositories.NewShopRepository(s.db).Get(roleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: role %s", ErrItemNotFound, roleID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return item, nil
}

// DeleteItem removes a listing.
func (s *ShopService) DeleteItem(roleID string) error {
	existed, err := repositories.NewShopRepository(s.db).Delete(roleID)
	if err != nil {
		return storeErr(err)
	}
	if !existed {
		return fmt.Errorf("%w: role %s", ErrItemNotFound, roleID)
	}
	return nil
}

// ListItems returns the whole catalog, cheapest first.
func (s *ShopService) ListItems() ([]models.ShopItem, error) {
	items, err := repositories.NewShopRepository(s.db).List()
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}
