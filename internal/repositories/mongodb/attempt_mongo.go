package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

const (
	attemptsCollection = "interview_attempts"
	progressCollection = "user_progress"
)

// attemptDocument keeps the JSON payloads as nested documents so they stay
// queryable from the mongo shell.
type attemptDocument struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"userId"`
	Type         string    `bson:"type"`
	Mode         string    `bson:"mode"`
	ScorePercent *int      `bson:"scorePercent,omitempty"`
	Answers      bson.D    `bson:"answers,omitempty"`
	Report       bson.D    `bson:"report,omitempty"`
	Plan         bson.D    `bson:"plan,omitempty"`
	Timestamp    time.Time `bson:"timestamp"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func jsonToDoc(raw datatypes.JSON) (bson.D, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func docToJSON(doc bson.D) (datatypes.JSON, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func toDocument(a *models.InterviewAttempt) (*attemptDocument, error) {
	answers, err := jsonToDoc(a.Answers)
	if err != nil {
		return nil, fmt.Errorf("answers: %w", err)
	}
	report, err := jsonToDoc(a.Report)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	plan, err := jsonToDoc(a.Plan)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return &attemptDocument{
		ID:           a.ID,
		UserID:       a.UserID,
		Type:         a.Type,
		Mode:         a.Mode,
		ScorePercent: a.ScorePercent,
		Answers:      answers,
		Report:       report,
		Plan:         plan,
		Timestamp:    a.Timestamp,
		CreatedAt:    a.CreatedAt,
	}, nil
}

func (d *attemptDocument) toModel() (*models.InterviewAttempt, error) {
	answers, err := docToJSON(d.Answers)
	if err != nil {
		return nil, err
	}
	report, err := docToJSON(d.Report)
	if err != nil {
		return nil, err
	}
	plan, err := docToJSON(d.Plan)
	if err != nil {
		return nil, err
	}
	return &models.InterviewAttempt{
		ID:           d.ID,
		UserID:       d.UserID,
		Type:         d.Type,
		Mode:         d.Mode,
		ScorePercent: d.ScorePercent,
		Answers:      answers,
		Report:       report,
		Plan:         plan,
		Timestamp:    d.Timestamp,
		CreatedAt:    d.CreatedAt,
	}, nil
}

type attemptRepo struct {
	collection *mongo.Collection
}

func NewAttemptRepo(db *mongo.Database) repositories.AttemptRepository {
	return &attemptRepo{collection: db.Collection(attemptsCollection)}
}

func (r *attemptRepo) Create(ctx context.Context, attempt *models.InterviewAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	doc, err := toDocument(attempt)
	if err != nil {
		return err
	}
	_, err = r.collection.InsertOne(ctx, doc)
	return err
}

func (r *attemptRepo) GetByID(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	var doc attemptDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.InterviewAttempt, int64, error) {
	filter := attemptFilter(userID, filters)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit))
	}
	if filters.Offset > 0 {
		opts.SetSkip(int64(filters.Offset))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []attemptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	attempts := make([]*models.InterviewAttempt, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, nil
}

func attemptFilter(userID string, filters repositories.AttemptFilters) bson.M {
	filter := bson.M{"userId": userID}
	if filters.Type != "" {
		filter["type"] = filters.Type
	}
	if filters.Mode != "" {
		filter["mode"] = filters.Mode
	}
	if filters.DateFrom != nil || filters.DateTo != nil {
		ts := bson.M{}
		if filters.DateFrom != nil {
			ts["$gte"] = *filters.DateFrom
		}
		if filters.DateTo != nil {
			ts["$lte"] = *filters.DateTo
		}
		filter["timestamp"] = ts
	}
	return filter
}
