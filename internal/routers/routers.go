package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ashmount/ClanBot/internal/handlers"
	"github.com/ashmount/ClanBot/middleware/jwt"
	"github.com/ashmount/ClanBot/pkg/cooldown"
	"github.com/ashmount/ClanBot/pkg/middlewares"
)

// SetupRoutes wires every HTTP surface: user-facing command routes behind the
// per-user cooldown, and the admin group behind the bearer token.
func SetupRoutes(r *gin.Engine,
	clanHandler *handlers.ClanHandler,
	economyHandler *handlers.EconomyHandler,
	rewardHandler *handlers.RewardHandler,
	shopHandler *handlers.ShopHandler,
	settingHandler *handlers.SettingHandler,
	tokenManager *jwt.TokenManager,
	guard *cooldown.Guard,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-Trace-ID"}
	r.Use(cors.New(corsConfig))
	r.Use(middlewares.TraceID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerClanRoutes(r, clanHandler, guard)
	registerEconomyRoutes(r, economyHandler, guard)
	registerRewardRoutes(r, rewardHandler, guard)
	registerShopRoutes(r, shopHandler, guard)
	registerAdminRoutes(r, clanHandler, economyHandler, shopHandler, settingHandler, tokenManager)
}

func userGroup(r *gin.Engine, path string, guard *cooldown.Guard) *gin.RouterGroup {
	g := r.Group(path)
	g.Use(middlewares.RequireUser())
	g.Use(middlewares.CommandCooldown(guard))
	return g
}

func registerClanRoutes(r *gin.Engine, h *handlers.ClanHandler, guard *cooldown.Guard) {
	g := userGroup(r, "/api/v1/clans", guard)
	{
		g.GET("", h.ListClans)
		g.GET("/mine", h.MyClan)
		g.GET("/:role_id", h.GetClan)

		g.POST("/:role_id/invites", h.CreateInvite)
		g.POST("/invites/:code/accept", h.AcceptInvite)

		g.PATCH("/:role_id/members/rank", h.ChangeRank)
		g.POST("/:role_id/kick", h.Kick)
		g.POST("/leave", h.Leave)
		g.PUT("/:role_id/motto", h.SetMotto)
	}
}

func registerEconomyRoutes(r *gin.Engine, h *handlers.EconomyHandler, guard *cooldown.Guard) {
	g := userGroup(r, "/api/v1/wallet", guard)
	{
		g.GET("", h.GetWallet)
		g.POST("/deposit", h.Deposit)
		g.POST("/withdraw", h.Withdraw)
		g.POST("/transfer", h.Transfer)
		g.POST("/bank/upgrade", h.UpgradeBank)
	}
}

func registerRewardRoutes(r *gin.Engine, h *handlers.RewardHandler, guard *cooldown.Guard) {
	g := userGroup(r, "/api/v1/rewards", guard)
	{
		g.GET("/daily", h.DailyStatus)
		g.GET("/weekly", h.WeeklyStatus)
		g.POST("/daily/claims", h.StartDailyClaim)
		g.POST("/weekly/claims", h.StartWeeklyClaim)
		g.POST("/claims/:prompt_id/confirm", h.ConfirmClaim)
	}
}

func registerShopRoutes(r *gin.Engine, h *handlers.ShopHandler, guard *cooldown.Guard) {
	g := userGroup(r, "/api/v1/shop", guard)
	{
		g.GET("/items", h.ListItems)
		g.GET("/items/:role_id", h.GetItem)
		g.POST("/items/:role_id/buy", h.BuyItem)
	}
}

func registerAdminRoutes(r *gin.Engine,
	clanHandler *handlers.ClanHandler,
	economyHandler *handlers.EconomyHandler,
	shopHandler *handlers.ShopHandler,
	settingHandler *handlers.SettingHandler,
	tokenManager *jwt.TokenManager,
) {
	g := r.Group("/api/v1/admin")
	g.Use(middlewares.RequireAdmin(tokenManager))
	{
		g.POST("/clans", clanHandler.CreateClan)
		g.DELETE("/clans/:role_id", clanHandler.DeleteClan)
		g.POST("/clans/:role_id/members", clanHandler.AddMember)

		g.POST("/wallets/adjust", economyHandler.Adjust)
		g.POST("/wallets/balance", economyHandler.SetBalance)

		g.PUT("/shop/items", shopHandler.UpsertItem)
		g.DELETE("/shop/items/:role_id", shopHandler.DeleteItem)

		g.GET("/settings/:key", settingHandler.GetSetting)
		g.PUT("/settings/:key", settingHandler.SetSetting)
	}
}
