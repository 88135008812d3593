package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"votechain/models"
)

type castVoteRequest struct {
	ElectionID  string `json:"electionId" binding:"required"`
	CandidateID string `json:"candidateId" binding:"required"`
}

func (s *Server) handleCastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	receipt, err := s.voting.CastVote(currentUserID(c), req.ElectionID, req.CandidateID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (s *Server) handleElections(c *gin.Context) {
	elections, err := s.voting.Elections()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"elections": elections,
		"count":     len(elections),
	})
}

func (s *Server) handleElection(c *gin.Context) {
	election, err := s.voting.Election(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, election)
}

func (s *Server) handleResults(c *gin.Context) {
	results, err := s.voting.Results(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleLedger(c *gin.Context) {
	view, err := s.voting.Ledger()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleLedgerValidate(c *gin.Context) {
	if err := s.voting.ValidateLedger(); err != nil {
		c.JSON(http.StatusOK, gin.H{"isValid": false, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": true})
}

func (s *Server) handleReceipt(c *gin.Context) {
	hash := c.Query("hash")
	if hash == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  models.ErrValidation.Code,
			"error": "block hash is required",
		})
		return
	}

	status, err := s.voting.VerifyReceipt(hash, c.Query("signature"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
