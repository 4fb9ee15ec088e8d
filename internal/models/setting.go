package models

import "time"

// Setting is a free-form key/value row for surface bookkeeping such as
// dashboard channel and message ids. Nothing in the core reads these.
type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(128)" json:"key"`
	Value string `gorm:"not null;type:varchar(1024)" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
