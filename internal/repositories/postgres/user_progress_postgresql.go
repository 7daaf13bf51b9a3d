package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &progress, nil
}

// RecordAttempt locks the user's row so concurrent saves see each other's counts
func (p *ProgressPostgreSQL) RecordAttempt(ctx context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.UserProgress{UserID: userID}
		} else if err != nil {
			return err
		}

		progress.RecordAttempt(scorePercent, at)
		return tx.Save(&progress).Error
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Migrator creates the interview tables
type Migrator struct {
	db *gorm.DB
}

func NewMigrator(db *gorm.DB) repositories.Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Migrate(ctx context.Context) error {
	return m.db.WithContext(ctx).AutoMigrate(&models.InterviewAttempt{}, &models.UserProgress{})
}
