package types

import "time"

// DocumentType labels a document's domain. The set is closed: anything the
// classifier cannot place confidently lands on DocumentTypeUnknown.
type DocumentType string

const (
	DocumentTypePolicyWording DocumentType = "policy_wording"
	DocumentTypeLegal         DocumentType = "legal"
	DocumentTypeFinancial     DocumentType = "financial"
	DocumentTypeTechnical     DocumentType = "technical"
	DocumentTypeMedical       DocumentType = "medical"
	DocumentTypeUnknown       DocumentType = "unknown"
)

// AllDocumentTypes lists every named (non-unknown) type.
var AllDocumentTypes = []DocumentType{
	DocumentTypePolicyWording,
	DocumentTypeLegal,
	DocumentTypeFinancial,
	DocumentTypeTechnical,
	DocumentTypeMedical,
}

// ParseDocumentType maps a free-form string onto the closed set. Anything
// unrecognized degrades to unknown instead of propagating a typo into scope
// resolution.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocumentTypePolicyWording, DocumentTypeLegal, DocumentTypeFinancial,
		DocumentTypeTechnical, DocumentTypeMedical:
		return DocumentType(s)
	default:
		return DocumentTypeUnknown
	}
}

// Known reports whether the type is one of the named types.
func (t DocumentType) Known() bool {
	return t != "" && t != DocumentTypeUnknown
}

// Document is the metadata record for an uploaded document. The document
// type is assigned once by the classifier at upload and only changes on an
// explicit re-embed with an override type.
type Document struct {
	ID           string       `bson:"_id" json:"document_id"`
	SessionID    string       `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Filename     string       `bson:"filename" json:"filename"`
	DocumentType DocumentType `bson:"document_type" json:"document_type"`
	UploadedAt   time.Time    `bson:"uploaded_at" json:"uploaded_at"`
	TotalChunks  int          `bson:"total_chunks" json:"total_chunks"`
	Embedded     bool         `bson:"embedded" json:"embedded"`
}

// Chunk is a contiguous span of a document's text. SessionID is
// denormalized from the owning document so scope filters never need a join.
type Chunk struct {
	ID         string `bson:"_id" json:"chunk_id"`
	DocumentID string `bson:"document_id" json:"document_id"`
	SessionID  string `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Text       string `bson:"text" json:"text"`
	Index      int    `bson:"index" json:"index"`
}

// Session is an isolation boundary. Documents and chunks tagged with a
// session id are invisible to queries outside it, and deleting the session
// cascades to every chunk carrying its id.
type Session struct {
	ID          string    `bson:"_id" json:"session_id"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
