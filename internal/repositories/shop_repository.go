package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashmount/ClanBot/internal/models"
)

// ShopRepository persists the shop catalog.
type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// Get loads one item. Returns gorm.ErrRecordNotFound for unknown roles.
func (r *ShopRepository) Get(roleID string) (*models.ShopItem, error) {
	var item models.ShopItem
	err := r.db.Where("role_id = ?", roleID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert creates or replaces an item's listing.
func (r *ShopRepository) Upsert(item *models.ShopItem) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}},
		UpdateAll: true,
	}).Create(item).Error
}

// Delete removes an item from the catalog. Reports whether it existed.
func (r *ShopRepository) Delete(roleID string) (bool, error) {
	res := r.db.Where("role_id = ?", roleID).Delete(&models.ShopItem{})
	return res.RowsAffected > 0, res.Error
}

// List returns the catalog ordered by price.
func (r *ShopRepository) List() ([]models.ShopItem, error) {
	var items []models.ShopItem
	err := r.db.Order("price").Find(&items).Error
	return items, err
}
