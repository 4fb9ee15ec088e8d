package services

import (
	"gorm.io/gorm"

	"github.com/ashmount/ClanBot/internal/repositories"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// Well-known setting keys used by the dashboard surface.
const (
	SettingDashboardChannel = "dashboard_channel_id"
	SettingDashboardMessage = "dashboard_message_id"
)

// SettingService is a thin pass-through over the settings table.
type SettingService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingService(db *gorm.DB, log *logger.Logger) *SettingService {
	return &SettingService{db: db, log: log}
}

func (s *SettingService) Get(key string) (string, bool, error) {
	value, ok, err := repositories.NewSettingRepository(s.db).Get(key)
	if err != nil {
		return "", false, storeErr(err)
	}
	return value, ok, nil
}

func (s *SettingService) Set(key, value string) error {
	if err := repositories.NewSettingRepository(s.db).Set(key, value); err != nil {
		return storeErr(err)
	}
	return nil
}
