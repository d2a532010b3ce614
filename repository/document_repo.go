package repository

import (
	"context"
	"errors"

	"github.com/tieubaoca/docchat-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type DocumentRepo interface {
	CreateRecord(ctx context.Context, record *types.DocumentRecord) error
	GetRecord(ctx context.Context, fileID string) (*types.DocumentRecord, error)
	ListRecords(ctx context.Context) ([]*types.DocumentRecord, error)
	DeleteRecord(ctx context.Context, fileID string) error
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(collection *mongo.Collection) DocumentRepo {
	return &documentRepo{
		collection: collection,
	}
}

func (r *documentRepo) CreateRecord(ctx context.Context, record *types.DocumentRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *documentRepo) GetRecord(ctx context.Context, fileID string) (*types.DocumentRecord, error) {
	var record types.DocumentRecord
	err := r.collection.FindOne(ctx, map[string]string{"_id": fileID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *documentRepo) ListRecords(ctx context.Context) ([]*types.DocumentRecord, error) {
	cursor, err := r.collection.Find(ctx, map[string]string{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*types.DocumentRecord
	for cursor.Next(ctx) {
		var record types.DocumentRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, cursor.Err()
}

func (r *documentRepo) DeleteRecord(ctx context.Context, fileID string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]string{"_id": fileID})
	return err
}
