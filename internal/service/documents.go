package service

import (
	"context"
	"strings"

	"kycflow/internal/errs"
	"kycflow/internal/model"

	"github.com/oklog/ulid/v2"
)

type DocumentService struct {
	documents DocumentStore
	cases     CaseStore
	now       Clock
}

func NewDocumentService(documents DocumentStore, cases CaseStore) *DocumentService {
	return &DocumentService{documents: documents, cases: cases, now: systemClock}
}

// BuildDocument validates a document reference and assigns it an id
func BuildDocument(docType model.DocumentType, location string) (model.Document, error) {
	if !docType.Valid() {
		return model.Document{}, errs.New(errs.CodeInvalidInput, "Invalid document type")
	}
	if strings.TrimSpace(location) == "" {
		return model.Document{}, errs.New(errs.CodeInvalidInput, "Document location is required")
	}
	return model.Document{ID: ulid.Make().String(), Type: docType, Location: location}, nil
}

// CreateDocument persists a single document reference
func (s *DocumentService) CreateDocument(ctx context.Context, docType model.DocumentType, location string) (model.Document, error) {
	d, err := BuildDocument(docType, location)
	if err != nil {
		return model.Document{}, err
	}
	d.CreatedAt = s.now()

	saved, err := s.documents.CreateDocument(ctx, d)
	if err != nil {
		return model.Document{}, errs.Internal(err)
	}
	return saved, nil
}

// ResolveDocumentsForCase returns the case's documents in binding order
func (s *DocumentService) ResolveDocumentsForCase(ctx context.Context, caseID string) ([]model.Document, error) {
	if caseID == "" {
		return nil, errs.New(errs.CodeInvalidInput, "KYC ID is required")
	}
	c, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, translate(err, "KYC Request not found")
	}
	documents, err := s.documents.GetDocuments(ctx, c.DocumentIDs)
	if err != nil {
		return nil, translate(err, "Document not found")
	}
	return documents, nil
}
