package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docshare/internal/middleware"
	"github.com/xxxsen/docshare/internal/pkg/errcode"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
	"github.com/xxxsen/docshare/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

func queryUint(c *gin.Context, name string, def, max uint) uint {
	value := c.Query(name)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return def
	}
	if max > 0 && uint(parsed) > max {
		return max
	}
	return uint(parsed)
}

type passwordChallenge struct {
	RequiresPassword bool `json:"requires_password"`
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrPasswordRequired):
		response.ErrorWithData(c, http.StatusUnauthorized, errcode.ErrPasswordRequired, "password required", passwordChallenge{RequiresPassword: true})
	case errors.Is(err, appErr.ErrPasswordIncorrect):
		response.ErrorWithData(c, http.StatusUnauthorized, errcode.ErrPasswordRequired, "password incorrect", passwordChallenge{RequiresPassword: true})
	case errors.Is(err, appErr.ErrShareRevoked):
		response.Error(c, http.StatusForbidden, errcode.ErrShareRevoked, "revoked")
	case errors.Is(err, appErr.ErrShareExpired):
		response.Error(c, http.StatusForbidden, errcode.ErrShareExpired, "expired")
	case errors.Is(err, appErr.ErrShareExhausted):
		response.Error(c, http.StatusForbidden, errcode.ErrShareExhausted, "view limit reached")
	case errors.Is(err, appErr.ErrAccessLevelDenied):
		response.Error(c, http.StatusForbidden, errcode.ErrAccessLevelDenied, "download not allowed")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, "too many attempts")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	default:
		logger.Error("request failed")
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
		return
	}
	logger.Debug("request denied")
}
