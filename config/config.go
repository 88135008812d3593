package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"votechain/ledger"
)

type Config struct {
	Addr        string
	StorageDir  string
	DatabaseDSN string
	JWTSecret   string
	TotpIssuer  string
	Difficulty  int
	TokenTTL    time.Duration
}

// Load reads flags plus environment. A .env file is honored when present so
// development matches the deployed shape.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	flag.StringVar(&cfg.Addr, "addr", ":8080", "HTTP listen address")
	flag.StringVar(&cfg.StorageDir, "storage", "data", "Directory for the authority key")
	flag.IntVar(&cfg.Difficulty, "difficulty", ledger.DefaultDifficulty, "Proof-of-work difficulty (leading zero hex characters)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", 24*time.Hour, "Bearer token lifetime")
	flag.StringVar(&cfg.TotpIssuer, "totp-issuer", "votechain", "Issuer label shown in authenticator apps")
	flag.Parse()

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")

	if cfg.Difficulty < 1 || cfg.Difficulty > ledger.MaxDifficulty {
		return nil, fmt.Errorf("difficulty must be between 1 and %d", ledger.MaxDifficulty)
	}

	return cfg, nil
}
