package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votechain/models"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	user, token, err := s.auth.Register(req.Username, req.Password, req.FullName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  viewOf(user),
	})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TotpCode string `json:"totpCode"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	result, err := s.auth.Login(req.Username, req.Password, req.TotpCode)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if result.RequiresTotp {
		c.JSON(http.StatusUnauthorized, gin.H{"requiresTotp": true})
		return
	}

	body := gin.H{
		"token": result.Token,
		"user":  viewOf(result.User),
	}
	switch {
	case result.RequiresTotpSetup:
		body["requiresTotpSetup"] = true
	case result.RequiresFaceSetup:
		body["requiresFaceSetup"] = true
	case result.RequiresFaceVerify:
		// The client performs the third stage against the enrolled
		// descriptor, so this response alone carries it.
		body["requiresFaceVerify"] = true
		body["faceDescriptor"] = result.User.FaceDescriptor
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleTotpSetup(c *gin.Context) {
	provisioning, err := s.auth.SetupTotp(currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":         provisioning.Secret,
		"qrCodeImage":    provisioning.QRCodeImage,
		"manualEntryKey": provisioning.ManualEntryKey,
	})
}

type totpVerifyRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

func (s *Server) handleTotpVerify(c *gin.Context) {
	var req totpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	backupCodes, err := s.auth.VerifyTotp(currentUserID(c), req.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backupCodes": backupCodes})
}

type faceEnrollRequest struct {
	FaceDescriptor models.Descriptor `json:"faceDescriptor" binding:"required"`
}

func (s *Server) handleFaceEnroll(c *gin.Context) {
	var req faceEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	if err := s.auth.EnrollFace(currentUserID(c), req.FaceDescriptor); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"faceEnabled": true})
}

type faceVerifyRequest struct {
	Username       string            `json:"username" binding:"required"`
	FaceDescriptor models.Descriptor `json:"faceDescriptor" binding:"required"`
}

func (s *Server) handleFaceVerify(c *gin.Context) {
	var req faceVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	result, err := s.auth.VerifyFace(req.Username, req.FaceDescriptor)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if !result.IsMatch {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":       models.ErrFaceMismatch.Code,
			"error":      models.ErrFaceMismatch.Message,
			"isMatch":    false,
			"confidence": result.Confidence,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isMatch":    true,
		"confidence": result.Confidence,
		"token":      result.Token,
		"user":       viewOf(result.User),
	})
}
