package models

// Vote is one cast ballot, immutable once created. The hash of the block
// sealing it and the previous block's hash are duplicated here for audit
// reads that never touch the block table.
type Vote struct {
	ID           string `json:"id" gorm:"primaryKey"`
	VoterID      string `json:"voterId" gorm:"uniqueIndex:idx_votes_voter_election"`
	ElectionID   string `json:"electionId" gorm:"uniqueIndex:idx_votes_voter_election"`
	CandidateID  string `json:"candidateId"`
	BlockHash    string `json:"blockHash"`
	PreviousHash string `json:"previousHash"`
	Nonce        uint64 `json:"nonce"`
	Timestamp    int64  `json:"timestamp"`
}

// Block is one ledger entry. Number starts at 1 and increases by exactly one
// per block; PreviousHash of block 1 is the genesis sentinel "0".
type Block struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Number       uint64 `json:"number" gorm:"uniqueIndex"`
	Hash         string `json:"hash" gorm:"uniqueIndex"`
	PreviousHash string `json:"previousHash"`
	Votes        []Vote `json:"votes" gorm:"foreignKey:BlockHash;references:Hash"`
	Nonce        uint64 `json:"nonce"`
	Timestamp    int64  `json:"timestamp"`
}
