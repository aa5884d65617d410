package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finsight/api/models"
)

// UpsertAnalysisResult stores the analysis record for a document. A re-run
// replaces the previous record rather than accumulating versions.
func UpsertAnalysisResult(ctx context.Context, result *models.AnalysisResult) error {
	filter := bson.M{"document_id": result.DocumentID}
	opts := options.Replace().SetUpsert(true)
	if _, err := collection(AnalysisCollection).ReplaceOne(ctx, filter, result, opts); err != nil {
		return fmt.Errorf("error storing analysis result: %w", err)
	}
	return nil
}

func GetAnalysisResult(ctx context.Context, documentID string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := collection(AnalysisCollection).FindOne(ctx, bson.M{"document_id": documentID}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching analysis result: %w", err)
	}
	return &result, nil
}

func DeleteAnalysisResult(ctx context.Context, documentID string) error {
	if _, err := collection(AnalysisCollection).DeleteMany(ctx, bson.M{"document_id": documentID}); err != nil {
		return fmt.Errorf("error deleting analysis result: %w", err)
	}
	return nil
}
