package storage

import (
	"sort"
	"sync"

	"votechain/models"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// default development mode; semantics match GormStore, including the unique
// (voter, election) arbitration inside AppendVoteBlock.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User // by id
	usernames   map[string]string      // username -> id
	backupCodes map[string][]models.BackupCode
	elections   map[string]models.Election
	votes       map[string]models.Vote // (voterID+"/"+electionID) -> vote
	blocks      []models.Block         // ascending by number
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]models.User),
		usernames:   make(map[string]string),
		backupCodes: make(map[string][]models.BackupCode),
		elections:   make(map[string]models.Election),
		votes:       make(map[string]models.Vote),
	}
}

func voteKey(voterID, electionID string) string {
	return voterID + "/" + electionID
}

func copyUser(u models.User) *models.User {
	out := u
	out.FaceDescriptor = append(models.Descriptor(nil), u.FaceDescriptor...)
	return &out
}

func copyElection(e models.Election) *models.Election {
	out := e
	out.Candidates = append([]models.Candidate(nil), e.Candidates...)
	return &out
}

func copyBlock(b models.Block) models.Block {
	out := b
	out.Votes = append([]models.Vote(nil), b.Votes...)
	return out
}

func (s *MemoryStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[u.Username]; taken {
		return models.ErrUsernameExists
	}
	s.users[u.ID] = *copyUser(*u)
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *MemoryStore) UserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemoryStore) UserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, nil
	}
	u := s.users[id]
	return copyUser(u), nil
}

func (s *MemoryStore) UpdateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return models.ErrUserNotFound
	}
	s.users[u.ID] = *copyUser(*u)
	return nil
}

func (s *MemoryStore) ReplaceBackupCodes(userID string, codes []models.BackupCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backupCodes[userID] = append([]models.BackupCode(nil), codes...)
	return nil
}

func (s *MemoryStore) BackupCodesByUser(userID string) ([]models.BackupCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.BackupCode(nil), s.backupCodes[userID]...), nil
}

func (s *MemoryStore) MarkBackupCodeUsed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, codes := range s.backupCodes {
		for i := range codes {
			if codes[i].ID == id {
				codes[i].Used = true
				s.backupCodes[userID] = codes
				return nil
			}
		}
	}
	return nil
}

func (s *MemoryStore) CreateElection(e *models.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elections[e.ID] = *copyElection(*e)
	return nil
}

func (s *MemoryStore) ElectionByID(id string) (*models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.elections[id]
	if !ok {
		return nil, nil
	}
	return copyElection(e), nil
}

func (s *MemoryStore) Elections() ([]models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, *copyElection(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) VoteByVoterAndElection(voterID, electionID string) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.votes[voteKey(voterID, electionID)]
	if !ok {
		return nil, nil
	}
	out := v
	return &out, nil
}

func (s *MemoryStore) VotesByElection(electionID string) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Vote
	for _, v := range s.votes {
		if v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *MemoryStore) AppendVoteBlock(v *models.Vote, b *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey(v.VoterID, v.ElectionID)
	if _, exists := s.votes[key]; exists {
		return models.ErrDuplicateVote
	}
	s.votes[key] = *v
	s.blocks = append(s.blocks, copyBlock(*b))
	return nil
}

func (s *MemoryStore) LatestBlock() (*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return nil, nil
	}
	out := copyBlock(s.blocks[len(s.blocks)-1])
	return &out, nil
}

func (s *MemoryStore) Blocks() ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = copyBlock(b)
	}
	return out, nil
}
