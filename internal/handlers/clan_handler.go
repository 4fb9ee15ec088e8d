package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/internal/models"
	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

type ClanHandler struct {
	ClanService *services.ClanService
	Log         *logger.Logger
}

func NewClanHandler(clanService *services.ClanService, log *logger.Logger) *ClanHandler {
	return &ClanHandler{
		ClanService: clanService,
		Log:         log,
	}
}

type createClanRequest struct {
	RoleID      string   `json:"role_id" binding:"required"`
	OwnerID     string   `json:"owner_id" binding:"required"`
	RoleHolders []string `json:"role_holders"`
}

// CreateClan registers a platform role as a clan. Admin only.
func (h *ClanHandler) CreateClan(c *gin.Context) {
	req := createClanRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	result, err := h.ClanService.CreateClan(req.RoleID, req.OwnerID, req.RoleHolders)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// DeleteClan unregisters a clan. Admin only; the platform role itself is
// untouched.
func (h *ClanHandler) DeleteClan(c *gin.Context) {
	ownerID, err := h.ClanService.DeleteClan(c.Param("role_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prior_owner_id": ownerID})
}

// GetClan returns a clan with its roster.
func (h *ClanHandler) GetClan(c *gin.Context) {
	clan, err := h.ClanService.GetClan(c.Param("role_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, clan)
}

// ListClans returns every registered clan.
func (h *ClanHandler) ListClans(c *gin.Context) {
	clans, err := h.ClanService.ListClans()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clans": clans})
}

// MyClan returns the caller's clan, if any.
func (h *ClanHandler) MyClan(c *gin.Context) {
	clan, err := h.ClanService.FindClanContainingUser(c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	if clan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "you are not in a clan"})
		return
	}
	c.JSON(http.StatusOK, clan)
}

type addMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Rank   string `json:"rank" binding:"required"`
}

// AddMember enrolls a user directly at Officer or Member. Admin only; the
// interactive path goes through invites.
func (h *ClanHandler) AddMember(c *gin.Context) {
	req := addMemberRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	if err := h.ClanService.AddMember(c.Param("role_id"), req.UserID, models.Rank(req.Rank)); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": req.UserID, "rank": req.Rank})
}

type changeRankRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Rank   string `json:"rank" binding:"required"`
}

// ChangeRank promotes or demotes a clan member on the caller's authority.
func (h *ClanHandler) ChangeRank(c *gin.Context) {
	req := changeRankRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	err := h.ClanService.ChangeRank(c.Param("role_id"), req.UserID, models.Rank(req.Rank), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "rank": req.Rank})
}

type kickRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Kick removes a member on the caller's authority.
func (h *ClanHandler) Kick(c *gin.Context) {
	req := kickRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	removed, err := h.ClanService.Kick(c.Param("role_id"), req.UserID, c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Leave removes the caller from their clan.
func (h *ClanHandler) Leave(c *gin.Context) {
	clanRoleID, err := h.ClanService.Leave(c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"left_clan": clanRoleID})
}

type setMottoRequest struct {
	Motto *string `json:"motto"`
}

// SetMotto updates or clears the clan motto.
func (h *ClanHandler) SetMotto(c *gin.Context) {
	req := setMottoRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	if err := h.ClanService.SetMotto(c.Param("role_id"), req.Motto, c.GetString("user_id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"motto": req.Motto})
}

type inviteRequest struct {
	TargetID string `json:"target_id" binding:"required"`
}

// CreateInvite issues a short-lived invite for another user.
func (h *ClanHandler) CreateInvite(c *gin.Context) {
	req := inviteRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	invite, err := h.ClanService.CreateInvite(c.Param("role_id"), c.GetString("user_id"), req.TargetID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// AcceptInvite consumes an invite code and joins the caller as Member.
func (h *ClanHandler) AcceptInvite(c *gin.Context) {
	clan, err := h.ClanService.AcceptInvite(c.Param("code"), c.GetString("user_id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, clan)
}
