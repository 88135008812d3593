package service

import "votechain/models"

// LedgerStats summarizes the chain alongside tally results.
type LedgerStats struct {
	TotalBlocks   int    `json:"totalBlocks"`
	LastBlockHash string `json:"lastBlockHash"`
}

// ElectionResults is the per-candidate count for one election. Every listed
// candidate appears with an explicit count, zero included; votes carrying a
// candidate id no longer on the list are still counted, since ledger rows
// outlive candidate-list mistakes.
type ElectionResults struct {
	Election        *models.Election `json:"election"`
	Results         map[string]int   `json:"results"`
	TotalVotes      int              `json:"totalVotes"`
	BlockchainStats LedgerStats      `json:"blockchainStats"`
}

// Results recomputes the tally from the stored votes on every call.
func (s *VotingService) Results(electionID string) (*ElectionResults, error) {
	election, err := s.store.ElectionByID(electionID)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, models.ErrElectionNotFound
	}

	votes, err := s.store.VotesByElection(electionID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(election.Candidates))
	for _, c := range election.Candidates {
		counts[c.ID] = 0
	}
	for _, v := range votes {
		counts[v.CandidateID]++
	}

	blocks, err := s.store.Blocks()
	if err != nil {
		return nil, err
	}
	stats := LedgerStats{TotalBlocks: len(blocks)}
	if len(blocks) > 0 {
		stats.LastBlockHash = blocks[len(blocks)-1].Hash
	}

	return &ElectionResults{
		Election:        election,
		Results:         counts,
		TotalVotes:      len(votes),
		BlockchainStats: stats,
	}, nil
}
