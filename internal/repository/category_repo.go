package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vitasurvey/internal/model"
)

// CategoryRepo handles MongoDB operations for the questionnaire catalog.
// Each document is one category with its subcategories and questions embedded.
type CategoryRepo interface {
	LoadTree(ctx context.Context) (model.Tree, error)
	ReplaceTree(ctx context.Context, tree model.Tree) error
}

const (
	categoriesCollection = "survey_categories"
	stagingCollection    = "survey_categories_staging"
)

type categoryRepo struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *mongo.Database) CategoryRepo {
	return &categoryRepo{
		db:         db,
		collection: db.Collection(categoriesCollection),
	}
}

func (r *categoryRepo) LoadTree(ctx context.Context) (model.Tree, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return model.Tree{}, err
	}
	defer cursor.Close(ctx)

	var categories []model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return model.Tree{}, err
	}
	return model.NewTree(categories)
}

// ReplaceTree swaps the whole catalog for tree. The new categories are written to a
// staging collection which is then renamed over the live one, so readers see either
// the old catalog or the new one.
func (r *categoryRepo) ReplaceTree(ctx context.Context, tree model.Tree) error {
	if tree.Empty() {
		if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		return nil
	}

	staging := r.db.Collection(stagingCollection)
	if err := staging.Drop(ctx); err != nil {
		return fmt.Errorf("drop staging categories: %w", err)
	}
	docs := make([]interface{}, len(tree.Categories))
	for i, c := range tree.Categories {
		docs[i] = c
	}
	if _, err := staging.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}

	rename := bson.D{
		{Key: "renameCollection", Value: r.db.Name() + "." + stagingCollection},
		{Key: "to", Value: r.db.Name() + "." + categoriesCollection},
		{Key: "dropTarget", Value: true},
	}
	if err := r.db.Client().Database("admin").RunCommand(ctx, rename).Err(); err != nil {
		return fmt.Errorf("swap in categories: %w", err)
	}
	return nil
}
