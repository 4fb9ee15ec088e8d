package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

type EconomyHandler struct {
	EconomyService *services.EconomyService
	Log            *logger.Logger
}

func NewEconomyHandler(economyService *services.EconomyService, log *logger.Logger) *EconomyHandler {
	return &EconomyHandler{
		EconomyService: economyService,
		Log:            log,
	}
}

// GetWallet returns the caller's gold wallet, creating it on first reference.
func (h *EconomyHandler) GetWallet(c *gin.Context) {
	wallet, err := h.EconomyService.GetWallet(c.GetString("user_id"), models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// Deposit moves on-hand gold into the bank.
func (h *EconomyHandler) Deposit(c *gin.Context) {
	req := amountRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	wallet, err := h.EconomyService.DepositToBank(c.GetString("user_id"), req.Amount, models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// Withdraw moves banked gold back on hand, clamped by sanctuary space.
func (h *EconomyHandler) Withdraw(c *gin.Context) {
	req := amountRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	result, err := h.EconomyService.WithdrawFromBank(c.GetString("user_id"), req.Amount, models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type transferRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

// Transfer moves on-hand gold to another user.
func (h *EconomyHandler) Transfer(c *gin.Context) {
	req := transferRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	result, err := h.EconomyService.TransferGold(c.GetString("user_id"), req.ToUserID, req.Amount)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpgradeBank pays the next tier's cost out of the bank and raises the cap.
func (h *EconomyHandler) UpgradeBank(c *gin.Context) {
	result, err := h.EconomyService.UpgradeBankTier(c.GetString("user_id"), models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type adjustRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Delta       int64  `json:"delta" binding:"required"`
}

// Adjust applies a signed admin delta to one wallet pool.
func (h *EconomyHandler) Adjust(c *gin.Context) {
	req := adjustRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	dest, err := services.ParseDestination(req.Destination)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	wallet, err := h.EconomyService.Adjust(req.UserID, dest, req.Delta, models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

type setBalanceRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount int64  `json:"amount"`
}

// SetBalance overwrites a user's on-hand balance. Admin override.
func (h *EconomyHandler) SetBalance(c *gin.Context) {
	req := setBalanceRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	wallet, err := h.EconomyService.SetBalance(req.UserID, req.Amount, models.CurrencyGold)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}
