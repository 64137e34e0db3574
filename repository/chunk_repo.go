package repository

import (
	"context"

	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChunkRepo holds the pending (not yet embedded) chunk texts between the
// upload and embed steps. Embedded vectors live in the vector store, never
// here.
type ChunkRepo interface {
	BatchCreateChunks(ctx context.Context, chunks []types.Chunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]types.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}

type chunkRepo struct {
	collection *mongo.Collection
}

func NewChunkRepo(collection *mongo.Collection) ChunkRepo {
	return &chunkRepo{
		collection: collection,
	}
}

func (r *chunkRepo) BatchCreateChunks(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chunk
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *chunkRepo) GetChunksByDocument(ctx context.Context, documentID string) ([]types.Chunk, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"document_id": documentID},
		options.Find().SetSort(bson.M{"index": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chunks []types.Chunk
	for cursor.Next(ctx) {
		var chunk types.Chunk
		if err := cursor.Decode(&chunk); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, cursor.Err()
}

func (r *chunkRepo) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"document_id": documentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *chunkRepo) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
