package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/tieubaoca/docqa-be/types"
	"golang.org/x/sync/errgroup"
)

const (
	oneShotDownloadTimeout = 60 * time.Second
	oneShotMaxDownload     = 50 << 20 // 50 MiB
	oneShotConcurrency     = 4
)

// OneShotService implements the single-call flow: download a document,
// ingest it into a fresh session, answer every question against it, then
// drop the session. Callers never see the session id.
type OneShotService struct {
	documents  *DocumentService
	queries    *QueryService
	httpClient *http.Client
}

func NewOneShotService(documents *DocumentService, queries *QueryService) *OneShotService {
	return &OneShotService{
		documents: documents,
		queries:   queries,
		httpClient: &http.Client{
			Timeout: oneShotDownloadTimeout,
		},
	}
}

// Run executes the full flow. The ephemeral session is torn down whether or
// not the questions succeed; a teardown failure goes to the background
// worker and never surfaces to the caller.
func (s *OneShotService) Run(ctx context.Context, req types.OneShotRunRequest) (*types.OneShotRunResponse, error) {
	if req.Documents == "" {
		return nil, types.NewAppError(types.ErrKindValidation, "documents URL must not be empty")
	}
	if len(req.Questions) == 0 {
		return nil, types.NewAppError(types.ErrKindValidation, "at least one question is required")
	}

	data, filename, err := s.download(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	session, err := s.documents.CreateSession(ctx, "", "one-shot run")
	if err != nil {
		return nil, err
	}
	// The session is ephemeral: the same finalizer that backs ephemeral
	// queries tears it down, with the background worker as fallback.
	defer s.queries.finalizeEphemeral(session.ID)

	doc, err := s.documents.Upload(ctx, session.ID, filename, data)
	if err != nil {
		return nil, err
	}
	if _, err := s.documents.Embed(ctx, doc.ID, ""); err != nil {
		return nil, err
	}

	answers := make([]string, len(req.Questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(oneShotConcurrency)
	for i, question := range req.Questions {
		g.Go(func() error {
			resp, err := s.queries.HandleQuery(gctx, types.Query{
				Question:  question,
				SessionID: session.ID,
			}, false)
			if err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			answers[i] = resp.Answer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.OneShotRunResponse{Answers: answers}, nil
}

func (s *OneShotService) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", types.NewAppError(types.ErrKindValidation, "documents must be an http(s) URL")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", types.WrapAppError(types.ErrKindValidation, err, "invalid documents URL")
	}
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", upstreamError("document download", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", types.NewAppError(types.ErrKindUpstream,
			"document download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, oneShotMaxDownload+1))
	if err != nil {
		return nil, "", upstreamError("document download", err)
	}
	if len(data) > oneShotMaxDownload {
		return nil, "", types.NewAppError(types.ErrKindValidation, "document exceeds the download size limit")
	}

	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" || path.Ext(filename) == "" {
		filename = "document.pdf"
	}
	return data, filename, nil
}
