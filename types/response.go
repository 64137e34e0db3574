package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type UploadResponse struct {
	DocumentID   string       `json:"document_id"`
	Filename     string       `json:"filename"`
	DocumentType DocumentType `json:"document_type"`
	Status       string       `json:"status"`
	Message      string       `json:"message"`
}

type EmbedResponse struct {
	DocumentID      string `json:"document_id"`
	Status          string `json:"status"`
	ChunksProcessed int    `json:"chunks_processed"`
	VectorsStored   int    `json:"vectors_stored"`
	Message         string `json:"message"`
}

// ScoreDetails is the score breakdown surfaced next to the answer; both
// weight factors appear alongside their product.
type ScoreDetails struct {
	DocumentType   string  `json:"document_type"`
	QuestionWeight float64 `json:"question_weight"`
	DocumentWeight float64 `json:"document_weight"`
	Score          float64 `json:"score"`
}

type QueryResponse struct {
	Answer         string       `json:"answer"`
	Justification  string       `json:"justification"`
	MatchedClauses []string     `json:"matched_clauses"`
	ScoreDetails   ScoreDetails `json:"score_details"`
	Confidence     float64      `json:"confidence"`
}

type DocumentListResponse struct {
	Documents []*Document `json:"documents"`
	Total     int         `json:"total"`
}

type SessionDeleteResponse struct {
	SessionID     string `json:"session_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

type OneShotRunResponse struct {
	Answers []string `json:"answers"`
}
