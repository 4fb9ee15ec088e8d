package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

type SettingHandler struct {
	SettingService *services.SettingService
	Log            *logger.Logger
}

func NewSettingHandler(settingService *services.SettingService, log *logger.Logger) *SettingHandler {
	return &SettingHandler{
		SettingService: settingService,
		Log:            log,
	}
}

// GetSetting returns one setting value.
func (h *SettingHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, ok, err := h.SettingService.Get(key)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

type setSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetSetting writes one setting value. Admin only.
func (h *SettingHandler) SetSetting(c *gin.Context) {
	req := setSettingRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	key := c.Param("key")
	if err := h.SettingService.Set(key, req.Value); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
