package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
	"github.com/ashmount/ClanBot/pkg/confirm"
)

// ConfirmWindow is how long a claim prompt stays pressable.
const ConfirmWindow = 60 * time.Second

// RewardHandler runs the two-step claim flow: a claim opens a confirmation
// prompt, and only confirming the prompt credits the reward. An expired
// prompt goes inert without touching the ledger.
type RewardHandler struct {
	RewardService *services.RewardService
	Prompts       *confirm.Manager
	Log           *logger.Logger

	mu         sync.Mutex
	claimTypes map[string]models.ClaimType
}

func NewRewardHandler(rewardService *services.RewardService, prompts *confirm.Manager, log *logger.Logger) *RewardHandler {
	return &RewardHandler{
		RewardService: rewardService,
		Prompts:       prompts,
		Log:           log,
		claimTypes:    make(map[string]models.ClaimType),
	}
}

// DailyStatus reports today's claimability and the week's used slots.
func (h *RewardHandler) DailyStatus(c *gin.Context) {
	status, err := h.RewardService.GetDailyStatus(c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// WeeklyStatus reports the weekly cooldown state.
func (h *RewardHandler) WeeklyStatus(c *gin.Context) {
	status, err := h.RewardService.GetWeeklyStatus(c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// StartDailyClaim opens the confirmation prompt for a daily claim.
func (h *RewardHandler) StartDailyClaim(c *gin.Context) {
	h.startClaim(c, models.ClaimDaily)
}

// StartWeeklyClaim opens the confirmation prompt for a weekly claim.
func (h *RewardHandler) StartWeeklyClaim(c *gin.Context) {
	h.startClaim(c, models.ClaimWeekly)
}

func (h *RewardHandler) startClaim(c *gin.Context, claimType models.ClaimType) {
	userID := c.GetString("user_id")
	prompt := h.Prompts.Create(userID, ConfirmWindow, func(id string) {
		h.mu.Lock()
		delete(h.claimTypes, id)
		h.mu.Unlock()
		h.Log.Info("claim prompt expired", zap.String("prompt_id", id), zap.String("user_id", userID))
	})

	h.mu.Lock()
	h.claimTypes[prompt.ID] = claimType
	h.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"prompt_id":  prompt.ID,
		"claim_type": claimType,
		"expires_at": prompt.ExpiresAt,
	})
}

// ConfirmClaim resolves an open prompt and credits the reward. The prompt
// must belong to the caller and still be pending.
func (h *RewardHandler) ConfirmClaim(c *gin.Context) {
	promptID := c.Param("prompt_id")
	userID := c.GetString("user_id")

	prompt, ok := h.Prompts.Get(promptID)
	if !ok || prompt.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such open prompt"})
		return
	}

	h.mu.Lock()
	claimType, ok := h.claimTypes[promptID]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such open prompt"})
		return
	}

	if !h.Prompts.Resolve(promptID) {
		c.JSON(http.StatusConflict, gin.H{"error": "prompt already resolved or expired"})
		return
	}
	h.mu.Lock()
	delete(h.claimTypes, promptID)
	h.mu.Unlock()

	var (
		result *services.ClaimResult
		err    error
	)
	if claimType == models.ClaimWeekly {
		result, err = h.RewardService.ClaimWeekly(userID)
	} else {
		result, err = h.RewardService.ClaimDaily(userID)
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
