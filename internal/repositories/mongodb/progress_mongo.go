package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type progressDocument struct {
	UserID              string    `bson:"_id"`
	InterviewsCompleted int       `bson:"interviewsCompleted"`
	AverageScore        int       `bson:"averageScore"`
	LastActivity        time.Time `bson:"lastActivity"`
	CreatedAt           time.Time `bson:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

type progressRepo struct {
	collection *mongo.Collection
}

func NewProgressRepo(db *mongo.Database) repositories.ProgressRepository {
	return &progressRepo{collection: db.Collection(progressCollection)}
}

func (r *progressRepo) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	var doc progressDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.UserProgress{
		UserID:              doc.UserID,
		InterviewsCompleted: doc.InterviewsCompleted,
		AverageScore:        doc.AverageScore,
		LastActivity:        doc.LastActivity,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}, nil
}

// RecordAttempt is a read-modify-write; concurrent saves for the same user
// are serialized by the progress service.
func (r *progressRepo) RecordAttempt(ctx context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error) {
	progress, err := r.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		progress = &models.UserProgress{UserID: userID, CreatedAt: at}
	} else if err != nil {
		return nil, err
	}

	progress.RecordAttempt(scorePercent, at)
	progress.UpdatedAt = at

	doc := progressDocument{
		UserID:              progress.UserID,
		InterviewsCompleted: progress.InterviewsCompleted,
		AverageScore:        progress.AverageScore,
		LastActivity:        progress.LastActivity,
		CreatedAt:           progress.CreatedAt,
		UpdatedAt:           progress.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": userID}, doc, opts); err != nil {
		return nil, err
	}
	return progress, nil
}

// Migrator creates the attempt listing index
type Migrator struct {
	db *mongo.Database
}

func NewMigrator(db *mongo.Database) repositories.Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Migrate(ctx context.Context) error {
	_, err := m.db.Collection(attemptsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}
