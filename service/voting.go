package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"votechain/ledger"
	"votechain/models"
	"votechain/storage"
)

// VotingService turns an authenticated vote into a sealed ledger entry,
// enforcing every eligibility gate on the way.
type VotingService struct {
	store  storage.Store
	engine *ledger.Engine
	log    *zap.Logger
	now    func() time.Time

	// mu serializes chain extension: the duplicate-vote check, the
	// latest-block read, sealing, and the persist happen under one lock so
	// block numbering and previous-hash links are strictly linear.
	mu sync.Mutex
}

func NewVotingService(store storage.Store, engine *ledger.Engine, log *zap.Logger) *VotingService {
	return &VotingService{
		store:  store,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

// VoteReceipt is returned to the voter after their block is sealed.
// Signature is the authority's signature over BlockHash.
type VoteReceipt struct {
	BlockHash   string `json:"blockHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Signature   string `json:"signature,omitempty"`
}

// CastVote runs the eligibility gates in order, each one short-circuiting
// with its own error, then seals and persists the vote and block as a single
// compound write.
func (s *VotingService) CastVote(userID, electionID, candidateID string) (*VoteReceipt, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if !user.TotpEnabled {
		return nil, models.ErrTotpRequired
	}
	if !user.FaceEnabled {
		return nil, models.ErrFaceRequired
	}

	election, err := s.store.ElectionByID(electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, models.ErrElectionNotFound
	}
	if !election.IsOpen(s.now()) {
		return nil, models.ErrElectionInactive
	}
	if !election.HasCandidate(candidateID) {
		return nil, models.ErrCandidateNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.VoteByVoterAndElection(userID, electionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateVote
	}

	prev, err := s.store.LatestBlock()
	if err != nil {
		return nil, err
	}
	previousHash := ledger.PreviousHashOf(prev)

	now := s.now()
	payload := ledger.Payload{
		VoterID:     userID,
		ElectionID:  electionID,
		CandidateID: candidateID,
		Timestamp:   now.Unix(),
	}
	seal, err := s.engine.Seal(payload, previousHash)
	if err != nil {
		return nil, err
	}

	vote := &models.Vote{
		ID:           uuid.New().String(),
		VoterID:      userID,
		ElectionID:   electionID,
		CandidateID:  candidateID,
		BlockHash:    seal.Hash,
		PreviousHash: previousHash,
		Nonce:        seal.Nonce,
		Timestamp:    now.Unix(),
	}
	block := ledger.NextBlock(prev, seal, []models.Vote{*vote}, now.Unix())

	if err := s.store.AppendVoteBlock(vote, block); err != nil {
		return nil, err
	}

	signature, err := s.engine.SignReceipt(block.Hash)
	if err != nil {
		// The vote is already sealed and durable; the receipt is just
		// missing its signature.
		s.log.Warn("failed to sign vote receipt", zap.Error(err))
	}

	s.log.Info("vote sealed",
		zap.Uint64("block", block.Number),
		zap.String("hash", block.Hash),
		zap.Uint64("nonce", block.Nonce),
	)

	return &VoteReceipt{
		BlockHash:   block.Hash,
		BlockNumber: block.Number,
		Signature:   signature,
	}, nil
}

// LedgerView is the full chain plus its verification status.
type LedgerView struct {
	Blocks             []models.Block `json:"blocks"`
	Length             int            `json:"length"`
	IsValid            bool           `json:"isValid"`
	LastHash           string         `json:"lastHash"`
	AuthorityPublicKey string         `json:"authorityPublicKey"`
}

func (s *VotingService) Ledger() (*LedgerView, error) {
	blocks, err := s.store.Blocks()
	if err != nil {
		return nil, err
	}

	view := &LedgerView{
		Blocks:             blocks,
		Length:             len(blocks),
		IsValid:            s.engine.Verify(blocks) == nil,
		AuthorityPublicKey: s.engine.AuthorityPublicKey(),
	}
	if len(blocks) > 0 {
		view.LastHash = blocks[len(blocks)-1].Hash
	}
	return view, nil
}

// ValidateLedger re-verifies every link and fingerprint in the chain.
func (s *VotingService) ValidateLedger() error {
	blocks, err := s.store.Blocks()
	if err != nil {
		return err
	}
	return s.engine.Verify(blocks)
}

// ReceiptStatus answers whether a block hash is in the chain and whether a
// presented signature was produced by this authority.
type ReceiptStatus struct {
	Found          bool   `json:"found"`
	BlockNumber    uint64 `json:"blockNumber,omitempty"`
	SignatureValid bool   `json:"signatureValid"`
}

func (s *VotingService) VerifyReceipt(blockHash, signature string) (*ReceiptStatus, error) {
	blocks, err := s.store.Blocks()
	if err != nil {
		return nil, err
	}
	status := &ReceiptStatus{}
	for i := range blocks {
		if blocks[i].Hash == blockHash {
			status.Found = true
			status.BlockNumber = blocks[i].Number
			break
		}
	}
	if status.Found && signature != "" {
		status.SignatureValid = s.engine.VerifyReceipt(blockHash, signature)
	}
	return status, nil
}

func (s *VotingService) Elections() ([]models.Election, error) {
	return s.store.Elections()
}

func (s *VotingService) Election(id string) (*models.Election, error) {
	election, err := s.store.ElectionByID(id)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, models.ErrElectionNotFound
	}
	return election, nil
}

// EnsureSeedElection creates a default election when the store is empty so a
// fresh deployment is immediately usable.
func (s *VotingService) EnsureSeedElection() error {
	existing, err := s.store.Elections()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := s.now()
	election := &models.Election{
		ID:          uuid.New().String(),
		Title:       "General Election",
		Description: "Default election created on first start",
		StartTime:   now,
		EndTime:     now.AddDate(0, 0, 30),
		Active:      true,
		CreatedAt:   now,
	}
	election.Candidates = []models.Candidate{
		{ID: uuid.New().String(), ElectionID: election.ID, Name: "Ada Lovelace", Affiliation: "Independent"},
		{ID: uuid.New().String(), ElectionID: election.ID, Name: "Alan Turing", Affiliation: "Independent"},
		{ID: uuid.New().String(), ElectionID: election.ID, Name: "Grace Hopper", Affiliation: "Independent"},
	}

	if err := s.store.CreateElection(election); err != nil {
		return err
	}
	s.log.Info("seeded default election", zap.String("electionId", election.ID))
	return nil
}
