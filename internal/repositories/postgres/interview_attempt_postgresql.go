package postgres

import (
	"context"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.InterviewAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	var attempt models.InterviewAttempt
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.InterviewAttempt, int64, error) {
	var attempts []*models.InterviewAttempt
	var total int64

	// apply filter first
	query := a.db.WithContext(ctx).Model(&models.InterviewAttempt{}).Where("user_id = ?", userID)
	query = ApplyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then paging, newest first
	query = ApplyPagination(query.Order("timestamp DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}
