package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"votechain/models"
)

const (
	// GenesisHash is the previous-hash sentinel carried by the first block.
	GenesisHash = "0"

	DefaultDifficulty = 2

	// MaxDifficulty caps the leading-zero requirement. Sealing at 6 already
	// expects ~16^6 fingerprint trials; anything above that is a
	// misconfiguration, not a tuning choice.
	MaxDifficulty = 6

	maxSealAttempts = 1 << 28
)

// ErrSealExhausted is returned when the proof-of-work loop hits its
// iteration ceiling without finding a qualifying nonce.
var ErrSealExhausted = errors.New("sealing exhausted the maximum number of attempts")

// Payload is the structured content a fingerprint is computed over.
// Serialization order follows the struct declaration, so the digest is
// identical for identical input on any platform.
type Payload struct {
	VoterID     string `json:"voterId"`
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
	Timestamp   int64  `json:"timestamp"`
}

// Seal is the result of a successful proof-of-work run.
type Seal struct {
	Hash  string `json:"hash"`
	Nonce uint64 `json:"nonce"`
}

// Fingerprint returns the hex-encoded sha256 digest of the payload chained
// to the previous hash and trial nonce.
func Fingerprint(p Payload, previousHash string, nonce uint64) string {
	env := struct {
		Payload      Payload `json:"payload"`
		PreviousHash string  `json:"previousHash"`
		Nonce        uint64  `json:"nonce"`
	}{p, previousHash, nonce}

	data, _ := json.Marshal(env)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SealPayload increments a nonce from 1 until the fingerprint starts with
// difficulty zero characters. CPU-bound and synchronous; the caller blocks
// for the duration.
func SealPayload(p Payload, previousHash string, difficulty int) (Seal, error) {
	target := strings.Repeat("0", difficulty)
	for nonce := uint64(1); nonce <= maxSealAttempts; nonce++ {
		hash := Fingerprint(p, previousHash, nonce)
		if strings.HasPrefix(hash, target) {
			return Seal{Hash: hash, Nonce: nonce}, nil
		}
	}
	return Seal{}, ErrSealExhausted
}

// PreviousHashOf resolves the hash the next block must chain to.
func PreviousHashOf(prev *models.Block) string {
	if prev == nil {
		return GenesisHash
	}
	return prev.Hash
}

// NextBlock builds the successor of prev around an already-computed seal.
// A nil prev produces block number 1.
func NextBlock(prev *models.Block, seal Seal, votes []models.Vote, timestamp int64) *models.Block {
	number := uint64(1)
	if prev != nil {
		number = prev.Number + 1
	}
	return &models.Block{
		ID:           uuid.New().String(),
		Number:       number,
		Hash:         seal.Hash,
		PreviousHash: PreviousHashOf(prev),
		Votes:        votes,
		Nonce:        seal.Nonce,
		Timestamp:    timestamp,
	}
}

// Verify walks the chain in block-number order and checks the hash links,
// the recomputed fingerprints, and the proof-of-work prefix.
func Verify(blocks []models.Block, difficulty int) error {
	target := strings.Repeat("0", difficulty)
	for i := range blocks {
		b := &blocks[i]
		if b.Number != uint64(i)+1 {
			return fmt.Errorf("block at position %d: number %d out of sequence", i, b.Number)
		}
		want := GenesisHash
		if i > 0 {
			want = blocks[i-1].Hash
		}
		if b.PreviousHash != want {
			return fmt.Errorf("block %d: previous hash %q, chain expects %q", b.Number, b.PreviousHash, want)
		}
		if len(b.Votes) != 1 {
			return fmt.Errorf("block %d: seals %d votes, expected exactly one", b.Number, len(b.Votes))
		}
		v := b.Votes[0]
		p := Payload{
			VoterID:     v.VoterID,
			ElectionID:  v.ElectionID,
			CandidateID: v.CandidateID,
			Timestamp:   v.Timestamp,
		}
		if got := Fingerprint(p, b.PreviousHash, b.Nonce); got != b.Hash {
			return fmt.Errorf("block %d: stored hash does not match recomputed fingerprint", b.Number)
		}
		if !strings.HasPrefix(b.Hash, target) {
			return fmt.Errorf("block %d: hash lacks the %d-zero prefix", b.Number, difficulty)
		}
	}
	return nil
}

// Engine seals vote payloads into blocks and signs receipts with the
// election authority key.
type Engine struct {
	difficulty int
	authority  *Authority
}

func NewEngine(difficulty int, authority *Authority) *Engine {
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}
	return &Engine{difficulty: difficulty, authority: authority}
}

func (e *Engine) Difficulty() int {
	return e.difficulty
}

func (e *Engine) Seal(p Payload, previousHash string) (Seal, error) {
	return SealPayload(p, previousHash, e.difficulty)
}

func (e *Engine) Verify(blocks []models.Block) error {
	return Verify(blocks, e.difficulty)
}

// SignReceipt signs a sealed block hash so voters can later prove their
// vote was accepted by this authority.
func (e *Engine) SignReceipt(blockHash string) (string, error) {
	return e.authority.Sign(blockHash)
}

func (e *Engine) VerifyReceipt(blockHash, signature string) bool {
	return e.authority.VerifySignature(blockHash, signature)
}

func (e *Engine) AuthorityPublicKey() string {
	return e.authority.PublicKeyHex()
}
