package types

// Query carries the scope inputs for a single retrieval. It is request
// scoped and never persisted.
type Query struct {
	Question     string
	SessionID    string
	DocumentID   string
	DocumentType DocumentType
	// AllowUnscoped must be set explicitly for a query with no scope inputs
	// to search across everything. It is never the silent default.
	AllowUnscoped bool
}

// ScopePredicate is the resolved storage-level filter applied before any
// vector similarity search runs. At most one of the scope fields is set;
// Unscoped marks an explicitly allowed match-everything predicate.
type ScopePredicate struct {
	DocumentID   string
	SessionID    string
	DocumentType DocumentType
	Unscoped     bool
}

// SessionScoped reports whether the predicate restricts by session id.
func (p ScopePredicate) SessionScoped() bool {
	return p.SessionID != "" && p.DocumentID == ""
}

// Matches reports whether chunk metadata falls inside the predicate. The
// vector store applies the equivalent filter server side; this is the
// in-process reference check the orchestrator uses to reject anything a
// misbehaving store returns out of scope.
func (p ScopePredicate) Matches(documentID, sessionID string, documentType DocumentType) bool {
	switch {
	case p.DocumentID != "":
		return documentID == p.DocumentID
	case p.SessionID != "":
		return sessionID == p.SessionID
	case p.DocumentType != "":
		return documentType == p.DocumentType
	default:
		return p.Unscoped
	}
}

// ScoreResult surfaces both weight factors next to their product so the
// contributing factors stay auditable. Confidence is a bounded monotonic
// function of Score.
type ScoreResult struct {
	DocumentType   DocumentType `json:"document_type"`
	QuestionWeight float64      `json:"question_weight"`
	DocumentWeight float64      `json:"document_weight"`
	Score          float64      `json:"score"`
	Confidence     float64      `json:"confidence"`
}

// Answer is the structured output parsed from the synthesis model.
type Answer struct {
	Answer         string   `json:"answer"`
	Justification  string   `json:"justification"`
	MatchedClauses []string `json:"matched_clauses"`
}
