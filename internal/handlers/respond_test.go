package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{services.ErrClanNotFound, http.StatusNotFound},
		{services.ErrItemNotFound, http.StatusNotFound},
		{services.ErrInviteNotFound, http.StatusNotFound},
		{services.ErrInvalidAuthority, http.StatusForbidden},
		{services.ErrInvalidAmount, http.StatusBadRequest},
		{services.ErrInvalidRank, http.StatusBadRequest},
		{services.ErrInvalidCurrency, http.StatusBadRequest},
		{services.ErrAlreadyRegistered, http.StatusConflict},
		{services.ErrUserAlreadyAffiliated, http.StatusConflict},
		{services.ErrRankFull, http.StatusConflict},
		{services.ErrNotAffiliated, http.StatusConflict},
		{services.ErrCannotRemoveOwner, http.StatusConflict},
		{services.ErrInviteExpired, http.StatusConflict},
		{services.ErrInsufficientBalance, http.StatusConflict},
		{services.ErrInsufficientBank, http.StatusConflict},
		{services.ErrBankFull, http.StatusConflict},
		{services.ErrSanctuaryFull, http.StatusConflict},
		{services.ErrAlreadyClaimed, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, testLogger(), fmt.Errorf("%w: detail", tc.err))

			assert.Equal(t, tc.status, w.Code)
			// The wrapped detail must survive to the caller.
			assert.Contains(t, w.Body.String(), "detail")
		})
	}
}

func TestRespondError_StoreFailureIsMasked(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, testLogger(), fmt.Errorf("%w: connection refused", services.ErrStoreIO))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "internal error")
}
