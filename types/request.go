package types

type CreateSessionRequest struct {
	SessionID   string `json:"session_id"`
	Description string `json:"description"`
}

type EmbedRequest struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type,omitempty"`
}

type QueryRequest struct {
	Question      string `json:"question"`
	SessionID     string `json:"session_id,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
	DocumentType  string `json:"document_type,omitempty"`
	AllowUnscoped bool   `json:"allow_unscoped,omitempty"`
}

// OneShotRunRequest drives the one-shot flow: fetch the document at the
// given URL, answer every question against it inside an ephemeral session,
// then drop the session's vectors.
type OneShotRunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}
