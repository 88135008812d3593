package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"votechain/models"
)

// GormStore persists through PostgreSQL. The unique index on
// (voter_id, election_id) and the single transaction in AppendVoteBlock are
// what make vote casting safe against concurrent submissions.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.BackupCode{},
		&models.Election{},
		&models.Candidate{},
		&models.Vote{},
		&models.Block{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateUser(u *models.User) error {
	if err := s.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *GormStore) UserByID(id string) (*models.User, error) {
	var u models.User
	err := s.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) UserByUsername(username string) (*models.User, error) {
	var u models.User
	err := s.db.First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) UpdateUser(u *models.User) error {
	if err := s.db.Save(u).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *GormStore) ReplaceBackupCodes(userID string, codes []models.BackupCode) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.BackupCode{}).Error; err != nil {
			return fmt.Errorf("failed to clear backup codes: %w", err)
		}
		if len(codes) == 0 {
			return nil
		}
		if err := tx.Create(&codes).Error; err != nil {
			return fmt.Errorf("failed to store backup codes: %w", err)
		}
		return nil
	})
}

func (s *GormStore) BackupCodesByUser(userID string) ([]models.BackupCode, error) {
	var codes []models.BackupCode
	if err := s.db.Where("user_id = ?", userID).Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to load backup codes: %w", err)
	}
	return codes, nil
}

func (s *GormStore) MarkBackupCodeUsed(id string) error {
	if err := s.db.Model(&models.BackupCode{}).Where("id = ?", id).Update("used", true).Error; err != nil {
		return fmt.Errorf("failed to mark backup code used: %w", err)
	}
	return nil
}

func (s *GormStore) CreateElection(e *models.Election) error {
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}
	return nil
}

func (s *GormStore) ElectionByID(id string) (*models.Election, error) {
	var e models.Election
	err := s.db.Preload("Candidates").First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load election: %w", err)
	}
	return &e, nil
}

func (s *GormStore) Elections() ([]models.Election, error) {
	var out []models.Election
	if err := s.db.Preload("Candidates").Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	return out, nil
}

func (s *GormStore) VoteByVoterAndElection(voterID, electionID string) (*models.Vote, error) {
	var v models.Vote
	err := s.db.First(&v, "voter_id = ? AND election_id = ?", voterID, electionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vote: %w", err)
	}
	return &v, nil
}

func (s *GormStore) VotesByElection(electionID string) ([]models.Vote, error) {
	var out []models.Vote
	if err := s.db.Where("election_id = ?", electionID).Order("timestamp").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return out, nil
}

func (s *GormStore) AppendVoteBlock(v *models.Vote, b *models.Block) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		// The block row only; its vote association is already persisted.
		return tx.Omit("Votes").Create(b).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("failed to append vote block: %w", err)
	}
	return nil
}

func (s *GormStore) LatestBlock() (*models.Block, error) {
	var b models.Block
	err := s.db.Preload("Votes").Order("number DESC").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest block: %w", err)
	}
	return &b, nil
}

func (s *GormStore) Blocks() ([]models.Block, error) {
	var out []models.Block
	if err := s.db.Preload("Votes").Order("number").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return out, nil
}
