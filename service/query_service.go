package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	noMatchAnswer        = "No relevant information found in the provided documents."
	noMatchJustification = "The search did not return any relevant document chunks for the question."
)

// QueryService runs the retrieval pipeline for one question: resolve the
// scope predicate, fail fast on an empty scope, embed, search, verify every
// hit against the predicate, synthesize, score.
type QueryService struct {
	documentRepo repository.DocumentRepo
	vectorStore  database.VectorStore
	embedder     Embedder
	synthesizer  Synthesizer
	scorer       *Scorer
	documents    *DocumentService
	cleanup      *CleanupWorker
	locks        *SessionLocks
	topK         int
}

func NewQueryService(
	documentRepo repository.DocumentRepo,
	vectorStore database.VectorStore,
	embedder Embedder,
	synthesizer Synthesizer,
	scorer *Scorer,
	documents *DocumentService,
	cleanup *CleanupWorker,
	locks *SessionLocks,
	topK int,
) *QueryService {
	return &QueryService{
		documentRepo: documentRepo,
		vectorStore:  vectorStore,
		embedder:     embedder,
		synthesizer:  synthesizer,
		scorer:       scorer,
		documents:    documents,
		cleanup:      cleanup,
		locks:        locks,
		topK:         topK,
	}
}

// HandleQuery answers one question. When ephemeral is set and the query is
// session scoped, the session's vectors are torn down after the answer is
// produced; a teardown failure is retried in the background and never fails
// the query.
func (s *QueryService) HandleQuery(ctx context.Context, q types.Query, ephemeral bool) (*types.QueryResponse, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, types.NewAppError(types.ErrKindValidation, "question must not be empty")
	}

	var doc *types.Document
	if q.DocumentID != "" {
		var err error
		doc, err = s.documentRepo.GetDocument(ctx, q.DocumentID)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("looking up document %s: %w", q.DocumentID, err)
		}
	}

	pred, err := ResolveScope(q, doc)
	if err != nil {
		return nil, err
	}

	lockedSession := pred.SessionID
	if doc != nil && doc.SessionID != "" {
		lockedSession = doc.SessionID
	}

	resp, err := s.retrieve(ctx, q, pred, doc, lockedSession)
	if err != nil {
		return nil, err
	}

	// Teardown must wait until retrieve has released the session read lock.
	if ephemeral && lockedSession != "" {
		s.finalizeEphemeral(lockedSession)
	}
	return resp, nil
}

// retrieve runs the scoped pipeline while holding the session read lock, so
// a concurrent session delete cannot remove chunks mid-query.
func (s *QueryService) retrieve(ctx context.Context, q types.Query, pred types.ScopePredicate, doc *types.Document, lockedSession string) (*types.QueryResponse, error) {
	if lockedSession != "" {
		unlock := s.locks.RLock(lockedSession)
		defer unlock()
	}

	count, err := s.vectorStore.CountInScope(ctx, pred)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if pred.Unscoped {
			return s.noMatchResponse(), nil
		}
		return nil, types.NewAppError(types.ErrKindNotFound, "no embedded content in the requested scope")
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{q.Question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, types.NewAppError(types.ErrKindUpstream,
			"embedding backend returned %d vectors for one question", len(vectors))
	}

	records, err := s.vectorStore.SearchSimilar(ctx, vectors[0], pred, s.topK)
	if err != nil {
		return nil, err
	}

	// The store already filtered; re-check each hit anyway so a filter bug
	// can never leak another scope's content into an answer.
	inScope := records[:0]
	for _, rec := range records {
		if pred.Matches(rec.DocumentID, rec.SessionID, rec.DocumentType) {
			inScope = append(inScope, rec)
		} else {
			log.Printf("dropping out-of-scope chunk %s from results", rec.ID)
		}
	}
	if len(inScope) == 0 {
		if pred.Unscoped {
			return s.noMatchResponse(), nil
		}
		return nil, types.NewAppError(types.ErrKindNotFound, "no matching content in the requested scope")
	}

	documentType := s.scoringType(pred, doc)
	chunkTexts := make([]string, len(inScope))
	for i, rec := range inScope {
		chunkTexts[i] = rec.Text
	}

	answer, err := synthesizeAnswer(ctx, s.synthesizer, q.Question, chunkTexts, documentType)
	if err != nil {
		return nil, err
	}

	score := s.scorer.Score(documentType, q.Question)
	return &types.QueryResponse{
		Answer:         answer.Answer,
		Justification:  answer.Justification,
		MatchedClauses: answer.MatchedClauses,
		ScoreDetails: types.ScoreDetails{
			DocumentType:   string(score.DocumentType),
			QuestionWeight: score.QuestionWeight,
			DocumentWeight: score.DocumentWeight,
			Score:          score.Score,
		},
		Confidence: score.Confidence,
	}, nil
}

// scoringType picks the document type the scorer sees: the document's own
// type when the query pinned a document, the requested type when the query
// pinned a type, unknown otherwise.
func (s *QueryService) scoringType(pred types.ScopePredicate, doc *types.Document) types.DocumentType {
	switch {
	case doc != nil:
		return doc.DocumentType
	case pred.DocumentType != "":
		return pred.DocumentType
	default:
		return types.DocumentTypeUnknown
	}
}

func (s *QueryService) noMatchResponse() *types.QueryResponse {
	return &types.QueryResponse{
		Answer:         noMatchAnswer,
		Justification:  noMatchJustification,
		MatchedClauses: []string{},
		ScoreDetails: types.ScoreDetails{
			DocumentType: string(types.DocumentTypeUnknown),
		},
	}
}

// finalizeEphemeral drops an ephemeral session once its answer is out. The
// cleanup worker picks up anything that fails here.
func (s *QueryService) finalizeEphemeral(sessionID string) {
	if err := s.documents.CleanupSession(context.Background(), sessionID); err != nil {
		log.Printf("ephemeral session %s cleanup failed, retrying in background: %v", sessionID, err)
		if !s.cleanup.Enqueue(sessionID) {
			log.Printf("cleanup queue full, session %s left behind", sessionID)
		}
	}
}
