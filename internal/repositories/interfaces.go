package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every driver when a record does not exist
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the record does not exist,
// whichever driver produced it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, mongo.ErrNoDocuments)
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	Type     string     `json:"type" form:"type"`
	Mode     string     `json:"mode" form:"mode"`
	DateFrom *time.Time `json:"date_from" form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `json:"date_to" form:"date_to" time_format:"2006-01-02"`
	Limit    int        `json:"limit" form:"limit"`
	Offset   int        `json:"offset" form:"offset"`
}

const (
	DefaultAttemptLimit = 50
	MaxAttemptLimit     = 500
)

// Normalize clamps paging to sane bounds
func (f AttemptFilters) Normalize() AttemptFilters {
	if f.Limit <= 0 {
		f.Limit = DefaultAttemptLimit
	}
	if f.Limit > MaxAttemptLimit {
		f.Limit = MaxAttemptLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ===== REPOSITORIES =====

// AttemptRepository stores completed interview attempts
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.InterviewAttempt) error
	GetByID(ctx context.Context, id string) (*models.InterviewAttempt, error)

	// ListByUser returns attempts newest first together with the total count
	// matching the filters before paging.
	ListByUser(ctx context.Context, userID string, filters AttemptFilters) ([]*models.InterviewAttempt, int64, error)
}

// ProgressRepository stores the per-user running statistics
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProgress, error)

	// RecordAttempt folds one attempt into the user's progress, creating the
	// row on first use, and returns the updated progress.
	RecordAttempt(ctx context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error)
}

// Migrator prepares the schema or indexes for a driver
type Migrator interface {
	Migrate(ctx context.Context) error
}
