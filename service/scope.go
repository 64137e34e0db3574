package service

import (
	"github.com/tieubaoca/docqa-be/types"
)

// ResolveScope is the single authority translating user-supplied query
// parameters into a storage-level filter. Nothing else in the system builds
// vector store filters.
//
// Precedence, highest first: document id, session id, document type,
// explicitly allowed unscoped. When the query names a document, the caller
// must have fetched it and passes it in; resolution stays a pure function
// over its arguments.
func ResolveScope(q types.Query, doc *types.Document) (types.ScopePredicate, error) {
	switch {
	case q.DocumentID != "":
		if doc == nil {
			return types.ScopePredicate{}, types.NewAppError(types.ErrKindNotFound,
				"document %s not found", q.DocumentID)
		}
		if doc.ID != q.DocumentID {
			return types.ScopePredicate{}, types.NewAppError(types.ErrKindInternal,
				"resolver given the wrong document record")
		}
		// Both scope inputs set but pointing at incompatible data must fail
		// loudly instead of silently widening visibility.
		if q.SessionID != "" && doc.SessionID != q.SessionID {
			return types.ScopePredicate{}, types.NewAppError(types.ErrKindScopeConflict,
				"document %s does not belong to session %s", q.DocumentID, q.SessionID)
		}
		return types.ScopePredicate{DocumentID: q.DocumentID}, nil

	case q.SessionID != "":
		return types.ScopePredicate{SessionID: q.SessionID}, nil

	case q.DocumentType != "":
		return types.ScopePredicate{DocumentType: q.DocumentType}, nil

	default:
		if !q.AllowUnscoped {
			return types.ScopePredicate{}, types.NewAppError(types.ErrKindValidation,
				"query has no scope; an unscoped search must be requested explicitly")
		}
		return types.ScopePredicate{Unscoped: true}, nil
	}
}
