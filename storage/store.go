package storage

import "votechain/models"

// Store is the credential store: users, elections, and the append-only
// vote/block ledger. Lookups for absent records return (nil, nil); only
// infrastructure failures surface as errors, except where a domain error is
// documented below.
//
// AppendVoteBlock is the arbitration point for both double votes and chain
// extension: the vote and its sealing block are persisted in one atomic
// write, and a (voter, election) collision fails the whole write with
// models.ErrDuplicateVote.
type Store interface {
	// CreateUser fails with models.ErrUsernameExists on a username collision.
	CreateUser(u *models.User) error
	UserByID(id string) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	UpdateUser(u *models.User) error

	ReplaceBackupCodes(userID string, codes []models.BackupCode) error
	BackupCodesByUser(userID string) ([]models.BackupCode, error)
	MarkBackupCodeUsed(id string) error

	CreateElection(e *models.Election) error
	ElectionByID(id string) (*models.Election, error)
	Elections() ([]models.Election, error)

	VoteByVoterAndElection(voterID, electionID string) (*models.Vote, error)
	VotesByElection(electionID string) ([]models.Vote, error)

	AppendVoteBlock(v *models.Vote, b *models.Block) error
	// LatestBlock returns the block with the highest number, or nil on an
	// empty chain.
	LatestBlock() (*models.Block, error)
	// Blocks returns the whole chain in ascending block-number order.
	Blocks() ([]models.Block, error)
}
