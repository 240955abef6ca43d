package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitasurvey/internal/model"
)

// MemberRepo reads member profiles owned by the account service
type MemberRepo interface {
	GetByID(ctx context.Context, id string) (*model.Member, error)
	GetGender(ctx context.Context, id string) (string, error)
	Upsert(ctx context.Context, member *model.Member) error
}

type memberRepo struct {
	collection *mongo.Collection
}

// NewMemberRepo creates a new member repository
func NewMemberRepo(db *mongo.Database) MemberRepo {
	return &memberRepo{
		collection: db.Collection("members"),
	}
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetGender returns the gender on file, or "" for unknown members
func (r *memberRepo) GetGender(ctx context.Context, id string) (string, error) {
	member, err := r.GetByID(ctx, id)
	if err != nil || member == nil {
		return "", err
	}
	return member.Gender, nil
}

func (r *memberRepo) Upsert(ctx context.Context, member *model.Member) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": member.ID}, member, options.Replace().SetUpsert(true))
	return err
}
