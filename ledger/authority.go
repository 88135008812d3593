package ledger

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Authority holds the election's ECDSA signing key. The key is generated on
// first start and reloaded from disk afterwards, so receipts stay verifiable
// across restarts.
type Authority struct {
	key *ecdsa.PrivateKey
}

type authorityCredentials struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

func LoadOrCreateAuthority(storagePath string) (*Authority, error) {
	keyPath := filepath.Join(storagePath, "authority_key.json")

	if data, err := os.ReadFile(keyPath); err == nil {
		var creds authorityCredentials
		if err := json.Unmarshal(data, &creds); err != nil {
			return nil, fmt.Errorf("failed to parse authority credentials: %w", err)
		}
		privateKeyHex := strings.TrimPrefix(creds.PrivateKey, "0x")
		key, err := crypto.HexToECDSA(privateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("failed to restore authority key: %w", err)
		}
		return &Authority{key: key}, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate authority key: %w", err)
	}

	creds := authorityCredentials{
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal authority credentials: %w", err)
	}
	if err := os.WriteFile(keyPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to save authority credentials: %w", err)
	}

	return &Authority{key: key}, nil
}

// NewEphemeralAuthority generates a throwaway key. Used by tests and by
// deployments that do not need durable receipts.
func NewEphemeralAuthority() (*Authority, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Authority{key: key}, nil
}

// Sign produces a hex-encoded secp256k1 signature over the Keccak256 digest
// of the block hash.
func (a *Authority) Sign(blockHash string) (string, error) {
	digest := crypto.Keccak256([]byte(blockHash))
	sig, err := crypto.Sign(digest, a.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign block hash: %w", err)
	}
	return hexutil.Encode(sig), nil
}

func (a *Authority) VerifySignature(blockHash, signature string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) < 64 {
		return false
	}
	digest := crypto.Keccak256([]byte(blockHash))
	pub := crypto.CompressPubkey(&a.key.PublicKey)
	// Drop the recovery id; VerifySignature expects the 64-byte form.
	return crypto.VerifySignature(pub, digest, sig[:64])
}

func (a *Authority) PublicKeyHex() string {
	return hexutil.Encode(crypto.FromECDSAPub(&a.key.PublicKey))
}
