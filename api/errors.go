package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/slotbooking/internal/api/rpcerr"
	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberHeader carries the authenticated member id, set by the gateway.
const MemberHeader = "X-Member-ID"

var errNoMember = errors.New("missing or invalid " + MemberHeader + " header")

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func statusFor(kind domain.Kind) int {
	return rpcerr.HTTPStatus(kind)
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()

	switch kind {
	case domain.KindTransient:
		c.Header("Retry-After", "1")
	case domain.KindInternal:
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = "internal error"
	}
	c.JSON(statusFor(kind), errorResponse{Error: msg, Kind: kind.String()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: domain.KindValidation.String()})
}

// memberID reads the caller id. It writes 401 and returns false when the
// header is absent or malformed.
func memberID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader(MemberHeader))
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: errNoMember.Error(), Kind: "unauthenticated"})
		return uuid.Nil, false
	}
	return id, true
}
