package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	services "github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type memDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*types.Document
}

func (r *memDocumentRepo) CreateDocument(_ context.Context, doc *types.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.docs == nil {
		r.docs = make(map[string]*types.Document)
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *memDocumentRepo) GetDocument(_ context.Context, id string) (*types.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *doc
	return &copied, nil
}

func (r *memDocumentRepo) ListDocuments(_ context.Context, _ string) ([]*types.Document, error) {
	return nil, nil
}

func (r *memDocumentRepo) UpdateDocument(_ context.Context, doc *types.Document) error {
	return r.CreateDocument(context.Background(), doc)
}

func (r *memDocumentRepo) DeleteDocument(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) DeleteBySession(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type memChunkRepo struct {
	mu     sync.Mutex
	chunks []types.Chunk
}

func (r *memChunkRepo) BatchCreateChunks(_ context.Context, chunks []types.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *memChunkRepo) GetChunksByDocument(_ context.Context, _ string) ([]types.Chunk, error) {
	return nil, nil
}

func (r *memChunkRepo) DeleteByDocument(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (r *memChunkRepo) DeleteBySession(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type memSessionRepo struct{}

func (memSessionRepo) CreateSession(_ context.Context, _ *types.Session) error { return nil }
func (memSessionRepo) GetSession(_ context.Context, _ string) (*types.Session, error) {
	return nil, mongo.ErrNoDocuments
}
func (memSessionRepo) DeleteSession(_ context.Context, _ string) error { return nil }

func newUploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	documentService := services.NewDocumentService(
		&memDocumentRepo{},
		&memChunkRepo{},
		memSessionRepo{},
		nil,
		nil,
		services.NewClassifier(3),
		services.NewChunker(1000, 200),
		services.NewSessionLocks(),
	)
	handler := NewDocumentHandler(documentService, t.TempDir())

	router := gin.New()
	router.POST("/documents/upload", handler.UploadDocumentHandler)
	return router
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadResponseReportsDetectedType(t *testing.T) {
	router := newUploadRouter(t)

	content := []byte(`The policy covers the insured subject to the premium
being paid on time. Any claim is reduced by the deductible, and each
exclusion is listed in the schedule of benefits.`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "terms.txt", content))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string               `json:"status"`
		Data   types.UploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, types.DocumentTypePolicyWording, resp.Data.DocumentType)
	assert.Contains(t, resp.Data.Message, string(types.DocumentTypePolicyWording))
	assert.NotEmpty(t, resp.Data.DocumentID)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	router := newUploadRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "payload.exe", []byte("binary")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
