package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

type ShopHandler struct {
	ShopService    *services.ShopService
	EconomyService *services.EconomyService
	Log            *logger.Logger
}

func NewShopHandler(shopService *services.ShopService, economyService *services.EconomyService, log *logger.Logger) *ShopHandler {
	return &ShopHandler{
		ShopService:    shopService,
		EconomyService: economyService,
		Log:            log,
	}
}

// ListItems returns the catalog, cheapest first.
func (h *ShopHandler) ListItems(c *gin.Context) {
	items, err := h.ShopService.ListItems()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetItem returns one listing.
func (h *ShopHandler) GetItem(c *gin.Context) {
	item, err := h.ShopService.GetItem(c.Param("role_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// BuyItem debits the price from the caller's on-hand gold. Role granting on
// the platform happens out of band.
func (h *ShopHandler) BuyItem(c *gin.Context) {
	item, err := h.EconomyService.PurchaseItem(c.GetString("user_id"), c.Param("role_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchased": item})
}

type upsertItemRequest struct {
	RoleID      string `json:"role_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// UpsertItem creates or replaces a listing. Admin only.
func (h *ShopHandler) UpsertItem(c *gin.Context) {
	req := upsertItemRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	item := &models.ShopItem{
		RoleID:      req.RoleID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    models.CurrencyGold,
	}
	if err := h.ShopService.UpsertItem(item); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteItem removes a listing. Admin only.
func (h *ShopHandler) DeleteItem(c *gin.Context) {
	if err := h.ShopService.DeleteItem(c.Param("role_id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("role_id")})
}
