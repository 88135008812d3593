package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"votechain/models"
)

var statusByCode = map[string]int{
	"VALIDATION_ERROR":      http.StatusBadRequest,
	"USERNAME_EXISTS":       http.StatusBadRequest,
	"TOTP_ALREADY_ENABLED":  http.StatusBadRequest,
	"FACE_ALREADY_ENROLLED": http.StatusBadRequest,
	"CANDIDATE_NOT_FOUND":   http.StatusBadRequest,
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	"INVALID_TOTP":          http.StatusUnauthorized,
	"FACE_MISMATCH":         http.StatusUnauthorized,
	"ACCESS_TOKEN_MISSING":  http.StatusUnauthorized,
	"TOKEN_INVALID":         http.StatusUnauthorized,
	"ELECTION_INACTIVE":     http.StatusForbidden,
	"DUPLICATE_VOTE":        http.StatusForbidden,
	"TOTP_REQUIRED":         http.StatusForbidden,
	"FACE_REQUIRED":         http.StatusForbidden,
	"USER_NOT_FOUND":        http.StatusNotFound,
	"ELECTION_NOT_FOUND":    http.StatusNotFound,
}

// writeError maps a domain error onto its HTTP status and a body carrying
// both the stable code and the message. Anything without a code is a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	var de *models.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"code": de.Code, "error": err.Error()})
		return
	}
	s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "error": "internal server error"})
}

func (s *Server) writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": models.ErrValidation.Code, "error": err.Error()})
}
