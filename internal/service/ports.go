package service

import (
	"context"
	"errors"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/model"
	"kycflow/internal/sentinel"
)

//go:generate mockgen -destination=mocks_test.go -package=service kycflow/internal/service Analyzer,Renderer,URLResolver,UserDirectory,JobClient

// CaseStore persists cases. Gate and bind conditions are enforced by the
// store in a single statement.
type CaseStore interface {
	CreateCase(ctx context.Context, nc model.NewCase) (model.Case, error)
	GetCase(ctx context.Context, id string) (model.Case, error)
	UpdateCaseStatus(ctx context.Context, id string, status model.Status, message *string, now time.Time) (model.Case, error)
	UpdateCaseAIStatus(ctx context.Context, id string, aiStatus model.AIStatus, message *string, now time.Time) (model.Case, error)
	BindAssignment(ctx context.Context, id, supervisorID, workerID string, now time.Time) (model.Case, error)
	ListCases(ctx context.Context, params model.ListParams) ([]model.Case, int64, error)
	CountByStatus(ctx context.Context, applicantID *string) (model.StatusCounts, error)
}

type DocumentStore interface {
	CreateDocument(ctx context.Context, d model.Document) (model.Document, error)
	GetDocuments(ctx context.Context, ids []string) ([]model.Document, error)
}

// UserDirectory is the identity collaborator
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (model.Actor, error)
	AppendAssignedCase(ctx context.Context, userID, caseID string) error
	GetRoleByName(ctx context.Context, name string) (model.Role, error)
}

// Store bundles every persistence contract; db.Pool and memstore.Store satisfy it
type Store interface {
	CaseStore
	DocumentStore
	UserDirectory
}

// Analyzer checks document images for readable identity fields
type Analyzer interface {
	Analyze(ctx context.Context, docType model.DocumentType, imageURLs []string) (model.FieldReport, error)
}

// Renderer produces a certificate PDF and returns where to fetch it
type Renderer interface {
	Render(ctx context.Context, data model.CertificateData) (string, error)
}

// URLResolver turns a document location into a fetchable image URL
type URLResolver interface {
	ImageURL(ctx context.Context, location string) (string, error)
}

type EventBus interface {
	PublishApplicant(applicantID string, event map[string]interface{}) error
	PublishWorker(userID string, event map[string]interface{}) error
	PublishCase(caseID string, event map[string]interface{}) error
}

// Clock returns the current instant
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// translate maps store sentinels onto coded errors
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := errs.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return errs.Wrap(err, errs.CodeNotFound, notFound)
	}
	return errs.Internal(err)
}

type nopBus struct{}

func (nopBus) PublishApplicant(string, map[string]interface{}) error { return nil }
func (nopBus) PublishWorker(string, map[string]interface{}) error    { return nil }
func (nopBus) PublishCase(string, map[string]interface{}) error      { return nil }
