package service

import (
	"context"
	"sync"

	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*types.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*types.Document)}
}

func (r *fakeDocumentRepo) CreateDocument(_ context.Context, doc *types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) GetDocument(_ context.Context, id string) (*types.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) ListDocuments(_ context.Context, sessionID string) ([]*types.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Document
	for _, doc := range r.docs {
		if sessionID == "" || doc.SessionID == sessionID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) UpdateDocument(_ context.Context, doc *types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) DeleteDocument(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, doc := range r.docs {
		if doc.SessionID == sessionID {
			delete(r.docs, id)
			n++
		}
	}
	return n, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*types.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*types.Session)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *types.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetSession(_ context.Context, id string) (*types.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks []types.Chunk
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{}
}

func (r *fakeChunkRepo) BatchCreateChunks(_ context.Context, chunks []types.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) GetChunksByDocument(_ context.Context, documentID string) ([]types.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Chunk
	for _, chunk := range r.chunks {
		if chunk.DocumentID == documentID {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (r *fakeChunkRepo) DeleteByDocument(_ context.Context, documentID string) (int64, error) {
	return r.deleteWhere(func(c types.Chunk) bool { return c.DocumentID == documentID })
}

func (r *fakeChunkRepo) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	return r.deleteWhere(func(c types.Chunk) bool { return c.SessionID == sessionID })
}

func (r *fakeChunkRepo) deleteWhere(match func(types.Chunk) bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []types.Chunk
	var n int64
	for _, chunk := range r.chunks {
		if match(chunk) {
			n++
			continue
		}
		kept = append(kept, chunk)
	}
	r.chunks = kept
	return n, nil
}

// fakeVectorStore keeps ChunkRecords in memory and filters with the same
// predicate semantics the real store translates to Weaviate filters.
type fakeVectorStore struct {
	mu        sync.Mutex
	records   []database.ChunkRecord
	insertErr error
	deleteErr error
	searchErr error
	deletes   int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{}
}

func (s *fakeVectorStore) BatchInsertChunks(_ context.Context, doc *types.Document, chunks []types.Chunk, embeddings [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, chunk := range chunks {
		s.records = append(s.records, database.ChunkRecord{
			ID:           chunk.ID,
			DocumentID:   doc.ID,
			SessionID:    doc.SessionID,
			DocumentType: doc.DocumentType,
			Filename:     doc.Filename,
			Index:        chunk.Index,
			Text:         chunk.Text,
		})
	}
	return nil
}

func (s *fakeVectorStore) SearchSimilar(_ context.Context, _ []float32, pred types.ScopePredicate, limit int) ([]database.ChunkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []database.ChunkRecord
	for _, rec := range s.records {
		if pred.Matches(rec.DocumentID, rec.SessionID, rec.DocumentType) {
			out = append(out, rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeVectorStore) CountInScope(_ context.Context, pred types.ScopePredicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if pred.Matches(rec.DocumentID, rec.SessionID, rec.DocumentType) {
			n++
		}
	}
	return n, nil
}

func (s *fakeVectorStore) DeleteInScope(_ context.Context, pred types.ScopePredicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	var kept []database.ChunkRecord
	n := 0
	for _, rec := range s.records {
		if pred.Matches(rec.DocumentID, rec.SessionID, rec.DocumentType) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return n, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (e *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeSynthesizer struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (s *fakeSynthesizer) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, userPrompt)
	if len(s.responses) == 0 {
		return `{"answer":"the answer","justification":"because","matched_clauses":["clause 1"]}`, nil
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

// testStack wires the full service layer over the in-memory fakes.
type testStack struct {
	docRepo     *fakeDocumentRepo
	sessionRepo *fakeSessionRepo
	chunkRepo   *fakeChunkRepo
	store       *fakeVectorStore
	embedder    *fakeEmbedder
	synth       *fakeSynthesizer
	documents   *DocumentService
	queries     *QueryService
	cleanup     *CleanupWorker
}

func newTestStack() *testStack {
	st := &testStack{
		docRepo:     newFakeDocumentRepo(),
		sessionRepo: newFakeSessionRepo(),
		chunkRepo:   newFakeChunkRepo(),
		store:       newFakeVectorStore(),
		embedder:    &fakeEmbedder{},
		synth:       &fakeSynthesizer{},
	}
	locks := NewSessionLocks()
	st.documents = NewDocumentService(
		st.docRepo, st.chunkRepo, st.sessionRepo, st.store, st.embedder,
		NewClassifier(3), NewChunker(1000, 200), locks)
	st.cleanup = NewCleanupWorker(st.documents.CleanupSession)
	st.queries = NewQueryService(
		st.docRepo, st.store, st.embedder, st.synth, NewScorer(),
		st.documents, st.cleanup, locks, 5)
	return st
}
