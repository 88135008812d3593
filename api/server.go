package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"votechain/auth"
	"votechain/models"
	"votechain/service"
)

type Server struct {
	auth   *service.AuthService
	voting *service.VotingService
	tokens *auth.TokenService
	log    *zap.Logger
}

func NewServer(authSvc *service.AuthService, voting *service.VotingService, tokens *auth.TokenService, log *zap.Logger) *Server {
	return &Server{
		auth:   authSvc,
		voting: voting,
		tokens: tokens,
		log:    log,
	}
}

// Router wires every route. Setup endpoints accept any valid token; casting
// a vote re-checks factor completion inside the orchestrator.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)
		api.POST("/auth/face/verify", s.handleFaceVerify)

		authed := api.Group("/")
		authed.Use(s.requireAuth())
		{
			authed.POST("/auth/totp/setup", s.handleTotpSetup)
			authed.POST("/auth/totp/verify", s.handleTotpVerify)
			authed.POST("/auth/face/enroll", s.handleFaceEnroll)
			authed.POST("/votes", s.handleCastVote)
		}

		api.GET("/elections", s.handleElections)
		api.GET("/elections/:id", s.handleElection)
		api.GET("/elections/:id/results", s.handleResults)

		api.GET("/ledger", s.handleLedger)
		api.GET("/ledger/validate", s.handleLedgerValidate)
		api.GET("/ledger/receipt", s.handleReceipt)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// userView is the user representation returned to clients; credential
// material never leaves the server through it.
type userView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	TotpEnabled bool   `json:"totpEnabled"`
	FaceEnabled bool   `json:"faceEnabled"`
}

func viewOf(u *models.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		TotpEnabled: u.TotpEnabled,
		FaceEnabled: u.FaceEnabled,
	}
}
