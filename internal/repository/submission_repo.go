package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitasurvey/internal/model"
)

// SubmissionRepo stores finished surveys
type SubmissionRepo interface {
	Create(ctx context.Context, submission *model.Submission) (string, error)
	GetByMemberID(ctx context.Context, memberID string) ([]*model.Submission, error)
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection("survey_submissions"),
	}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) (string, error) {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, submission)
	if err != nil {
		return "", err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		submission.ID = oid.Hex()
	}
	return submission.ID, nil
}

// GetByMemberID lists a member's submissions, newest first
func (r *submissionRepo) GetByMemberID(ctx context.Context, memberID string) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var submissions []*model.Submission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}
