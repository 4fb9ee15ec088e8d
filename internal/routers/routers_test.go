package routers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashmount/ClanBot/internal/handlers"
	"github.com/ashmount/ClanBot/internal/services"
	"github.com/ashmount/ClanBot/internal/storage"
	"github.com/ashmount/ClanBot/middleware/jwt"
	logger "github.com/ashmount/ClanBot/middleware/log"
	"github.com/ashmount/ClanBot/pkg/confirm"
	"github.com/ashmount/ClanBot/pkg/cooldown"
)

type testEnv struct {
	router *gin.Engine
	redis  *miniredis.Miniredis
	tokens *jwt.TokenManager
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := &logger.Logger{Logger: zap.NewNop()}
	tokens := jwt.NewTokenManager("test-secret", 1)

	clanService := services.NewClanService(db, log)
	economyService := services.NewEconomyService(db, log)
	rewardService := services.NewRewardService(db, log, time.UTC)
	shopService := services.NewShopService(db, log)
	settingService := services.NewSettingService(db, log)

	r := gin.New()
	SetupRoutes(r,
		handlers.NewClanHandler(clanService, log),
		handlers.NewEconomyHandler(economyService, log),
		handlers.NewRewardHandler(rewardService, confirm.NewManager(), log),
		handlers.NewShopHandler(shopService, economyService, log),
		handlers.NewSettingHandler(settingService, log),
		tokens,
		cooldown.NewGuard(rdb, 2500*time.Millisecond),
	)
	return &testEnv{router: r, redis: mr, tokens: tokens}
}

func (e *testEnv) do(method, path, userID, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := setupRouter(t)
	w := env.do(http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserRoutesRequireIdentity(t *testing.T) {
	env := setupRouter(t)
	w := env.do(http.MethodGet, "/api/v1/wallet", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletFlowThroughRouter(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/api/v1/wallet", "u1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0`)

	// Second command inside the cooldown window is throttled.
	w = env.do(http.MethodGet, "/api/v1/wallet", "u1", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	env.redis.FastForward(3 * time.Second)

	// Nothing on hand yet, so a deposit conflicts.
	w = env.do(http.MethodPost, "/api/v1/wallet/deposit", "u1", "", `{"amount":100}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupRouter(t)

	body := `{"role_id":"role1","owner_id":"owner1"}`
	w := env.do(http.MethodPost, "/api/v1/admin/clans", "", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := env.tokens.GenerateToken("admin1")
	require.NoError(t, err)

	w = env.do(http.MethodPost, "/api/v1/admin/clans", "", token, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// The clan is now visible on the user surface.
	w = env.do(http.MethodGet, "/api/v1/clans/role1", "u1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner_id":"owner1"`)
}

func TestTraceIDHeaderEcho(t *testing.T) {
	env := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-from-caller")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "trace-from-caller", w.Header().Get("X-Trace-ID"))
}
