package models

import "time"

// ShopItem is one purchasable platform role and its price tag.
// Granting the role after purchase is the interaction layer's job.
type ShopItem struct {
	RoleID      string   `gorm:"primaryKey;type:varchar(64)" json:"role_id"`
	Price       int64    `gorm:"not null" json:"price"`
	Name        string   `gorm:"not null;type:varchar(255)" json:"name"`
	Description string   `gorm:"type:varchar(1024)" json:"description"`
	Currency    Currency `gorm:"not null;type:varchar(16)" json:"currency"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShopItem) TableName() string {
	return "shop_items"
}
