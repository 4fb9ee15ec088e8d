package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/internal/services"
	logger "github.com/ashmount/ClanBot/middleware/log"
)

// respondError maps a service failure to a status code and renders the
// specific, actionable message the error carries. Store failures are the
// exception: they are logged and masked behind a generic internal error.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if errors.Is(err, services.ErrStoreIO) {
		log.ErrorContext(c.Request.Context(), "store failure", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrClanNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidAuthority):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidRank),
		errors.Is(err, services.ErrInvalidCurrency):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrOwnerAlreadyAffiliated),
		errors.Is(err, services.ErrUserAlreadyAffiliated),
		errors.Is(err, services.ErrRankFull),
		errors.Is(err, services.ErrNotAffiliated),
		errors.Is(err, services.ErrTargetIsOwner),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInsufficientBank),
		errors.Is(err, services.ErrBankFull),
		errors.Is(err, services.ErrSanctuaryFull),
		errors.Is(err, services.ErrAlreadyClaimed):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
