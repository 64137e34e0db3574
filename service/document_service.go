package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DocumentService owns the document lifecycle: upload (extract, classify,
// chunk), embed (vectorize, all or nothing), list, and the scoped deletes.
type DocumentService struct {
	documentRepo repository.DocumentRepo
	chunkRepo    repository.ChunkRepo
	sessionRepo  repository.SessionRepo
	vectorStore  database.VectorStore
	embedder     Embedder
	classifier   *Classifier
	chunker      *Chunker
	locks        *SessionLocks
}

func NewDocumentService(
	documentRepo repository.DocumentRepo,
	chunkRepo repository.ChunkRepo,
	sessionRepo repository.SessionRepo,
	vectorStore database.VectorStore,
	embedder Embedder,
	classifier *Classifier,
	chunker *Chunker,
	locks *SessionLocks,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		sessionRepo:  sessionRepo,
		vectorStore:  vectorStore,
		embedder:     embedder,
		classifier:   classifier,
		chunker:      chunker,
		locks:        locks,
	}
}

// CreateSession registers a new isolation boundary. Callers may bring their
// own id; reusing a live session's id is a conflict, not a merge.
func (s *DocumentService) CreateSession(ctx context.Context, id, description string) (*types.Session, error) {
	if id == "" {
		id = uuid.New().String()
	} else if _, err := s.sessionRepo.GetSession(ctx, id); err == nil {
		return nil, types.NewAppError(types.ErrKindScopeConflict, "session %s already exists", id)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("looking up session %s: %w", id, err)
	}

	session := &types.Session{
		ID:          id,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	log.Printf("created session %s", session.ID)
	return session, nil
}

// Upload extracts, classifies and chunks the file, then stores the chunk
// texts as pending. Nothing touches the vector store until Embed.
func (s *DocumentService) Upload(ctx context.Context, sessionID, filename string, data []byte) (*types.Document, error) {
	if len(data) == 0 {
		return nil, types.NewAppError(types.ErrKindValidation, "uploaded file is empty")
	}
	if sessionID != "" {
		if _, err := s.sessionRepo.GetSession(ctx, sessionID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, types.NewAppError(types.ErrKindNotFound, "session %s not found", sessionID)
			}
			return nil, fmt.Errorf("looking up session %s: %w", sessionID, err)
		}
	}

	text, err := ExtractText(filename, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, types.NewAppError(types.ErrKindValidation, "no text could be extracted from %s", filename)
	}

	documentType, matches := s.classifier.Classify(text, filename)
	log.Printf("classified %s as %s (%d keyword matches)", filename, documentType, matches)

	texts := s.chunker.Split(text)
	doc := &types.Document{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		Filename:     filename,
		DocumentType: documentType,
		UploadedAt:   time.Now(),
		TotalChunks:  len(texts),
	}

	chunks := make([]types.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = types.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			SessionID:  sessionID,
			Text:       t,
			Index:      i,
		}
	}

	if err := s.documentRepo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document record: %w", err)
	}
	if err := s.chunkRepo.BatchCreateChunks(ctx, chunks); err != nil {
		// Keep the registry consistent: no document record without its chunks.
		if delErr := s.documentRepo.DeleteDocument(ctx, doc.ID); delErr != nil {
			log.Printf("failed to roll back document %s: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("saving chunks: %w", err)
	}
	return doc, nil
}

// Embed vectorizes a document's pending chunks and stores them. The write
// is all or nothing: any failure rolls back whatever partial inserts made
// it in, so a document is never half-searchable.
func (s *DocumentService) Embed(ctx context.Context, documentID string, overrideType types.DocumentType) (*types.EmbedResponse, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Embedded {
		return nil, types.NewAppError(types.ErrKindValidation, "document %s is already embedded", documentID)
	}
	if overrideType != "" {
		doc.DocumentType = overrideType
	}

	chunks, err := s.chunkRepo.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks for %s: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return nil, types.NewAppError(types.ErrKindValidation, "document %s has no chunks to embed", documentID)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, types.NewAppError(types.ErrKindUpstream,
			"embedding backend returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	if err := s.vectorStore.BatchInsertChunks(ctx, doc, chunks, embeddings); err != nil {
		s.rollbackVectors(ctx, documentID)
		return nil, err
	}

	doc.Embedded = true
	if err := s.documentRepo.UpdateDocument(ctx, doc); err != nil {
		s.rollbackVectors(ctx, documentID)
		return nil, fmt.Errorf("marking document %s embedded: %w", documentID, err)
	}

	log.Printf("embedded document %s (%d chunks)", documentID, len(chunks))
	return &types.EmbedResponse{
		DocumentID:      documentID,
		Status:          "success",
		ChunksProcessed: len(chunks),
		VectorsStored:   len(embeddings),
		Message:         "document embedded",
	}, nil
}

func (s *DocumentService) rollbackVectors(ctx context.Context, documentID string) {
	deleted, err := s.vectorStore.DeleteInScope(ctx, types.ScopePredicate{DocumentID: documentID})
	if err != nil {
		log.Printf("rollback of document %s vectors failed: %v", documentID, err)
		return
	}
	if deleted > 0 {
		log.Printf("rolled back %d partial vectors for document %s", deleted, documentID)
	}
}

// ListDocuments returns document records, optionally restricted to one
// session.
func (s *DocumentService) ListDocuments(ctx context.Context, sessionID string) ([]*types.Document, error) {
	docs, err := s.documentRepo.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// GetDocument loads one document record, translating a missing record into
// a not-found error.
func (s *DocumentService) GetDocument(ctx context.Context, documentID string) (*types.Document, error) {
	return s.getDocument(ctx, documentID)
}

func (s *DocumentService) getDocument(ctx context.Context, documentID string) (*types.Document, error) {
	doc, err := s.documentRepo.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.NewAppError(types.ErrKindNotFound, "document %s not found", documentID)
		}
		return nil, fmt.Errorf("looking up document %s: %w", documentID, err)
	}
	return doc, nil
}

// DeleteDocument removes a document's vectors, pending chunks and record.
// The session write lock keeps in-flight queries from reading a
// half-deleted document.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.SessionID != "" {
		unlock := s.locks.Lock(doc.SessionID)
		defer unlock()
	}

	if doc.Embedded {
		if _, err := s.vectorStore.DeleteInScope(ctx, types.ScopePredicate{DocumentID: documentID}); err != nil {
			return fmt.Errorf("deleting vectors for %s: %w", documentID, err)
		}
	}
	if _, err := s.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", documentID, err)
	}
	if err := s.documentRepo.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document record %s: %w", documentID, err)
	}
	log.Printf("deleted document %s", documentID)
	return nil
}

// DeleteSession tears down a session: vectors first, then pending chunks,
// document records and the session itself. Returns the number of vectors
// removed.
func (s *DocumentService) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	if _, err := s.sessionRepo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, types.NewAppError(types.ErrKindNotFound, "session %s not found", sessionID)
		}
		return 0, fmt.Errorf("looking up session %s: %w", sessionID, err)
	}
	return s.teardownSession(ctx, sessionID)
}

// CleanupSession is DeleteSession without the existence check. The cleanup
// worker calls it repeatedly, so a session already gone is a success.
func (s *DocumentService) CleanupSession(ctx context.Context, sessionID string) error {
	_, err := s.teardownSession(ctx, sessionID)
	return err
}

func (s *DocumentService) teardownSession(ctx context.Context, sessionID string) (int, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	pred := types.ScopePredicate{SessionID: sessionID}
	deleted, err := s.vectorStore.DeleteInScope(ctx, pred)
	if err != nil {
		return 0, fmt.Errorf("deleting vectors for session %s: %w", sessionID, err)
	}
	if _, err := s.chunkRepo.DeleteBySession(ctx, sessionID); err != nil {
		return deleted, fmt.Errorf("deleting chunks for session %s: %w", sessionID, err)
	}
	if _, err := s.documentRepo.DeleteBySession(ctx, sessionID); err != nil {
		return deleted, fmt.Errorf("deleting documents for session %s: %w", sessionID, err)
	}
	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return deleted, fmt.Errorf("deleting session record %s: %w", sessionID, err)
	}
	s.locks.forget(sessionID)
	log.Printf("deleted session %s (%d vectors)", sessionID, deleted)
	return deleted, nil
}
