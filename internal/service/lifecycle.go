package service

import (
	"context"
	"errors"
	"strings"

	"kycflow/internal/errs"
	"kycflow/internal/metrics"
	"kycflow/internal/model"
	"kycflow/internal/sentinel"
	"kycflow/internal/storage"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MessageActiveRequest = "You already have a KYC request in Pending or In Progress state."
	MessageStillValid    = "You cannot request a new KYC. Your previous KYC is still valid."
	messageCaseNotFound  = "KYC Request not found"
)

// Transition triggers, used as metric labels
const (
	triggerWorker     = "worker"
	triggerAI         = "ai"
	triggerAssignment = "assignment"
)

type CaseService struct {
	cases     CaseStore
	bus       EventBus
	jobClient JobClient
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       Clock
}

func NewCaseService(cases CaseStore, bus EventBus, m *metrics.Metrics, log *zap.Logger) *CaseService {
	if bus == nil {
		bus = nopBus{}
	}
	return &CaseService{
		cases:   cases,
		bus:     bus,
		metrics: m,
		log:     log,
		now:     systemClock,
	}
}

// SetJobClient sets the job client for scheduling background jobs
func (s *CaseService) SetJobClient(client JobClient) {
	s.jobClient = client
}

// SetClock replaces the time source
func (s *CaseService) SetClock(clock Clock) {
	s.now = clock
}

// CasePage is one page of cases
type CasePage struct {
	Cases      []model.Case   `json:"kycDetails"`
	Pagination model.PageInfo `json:"pagination"`
}

// CountsAndList is an applicant's dashboard
type CountsAndList struct {
	Counts model.StatusCounts  `json:"counts"`
	Cases  []model.CaseSummary `json:"allKYCRequests"`
}

// CreateCase opens a Pending case with one document per image
func (s *CaseService) CreateCase(ctx context.Context, applicantID string, docType model.DocumentType, images []string) (model.Case, error) {
	if applicantID == "" {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "Applicant ID is required")
	}
	if len(images) == 0 {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "At least one image is required")
	}

	documents := make([]model.Document, 0, len(images))
	for _, image := range images {
		d, err := BuildDocument(docType, strings.TrimSpace(image))
		if err != nil {
			return model.Case{}, err
		}
		if !storage.OwnsKey(applicantID, d.Location) {
			return model.Case{}, errs.New(errs.CodeInvalidInput, "Image must be uploaded to the applicant's own upload folder")
		}
		documents = append(documents, d)
	}

	c, err := s.cases.CreateCase(ctx, model.NewCase{
		ID:          ulid.Make().String(),
		ApplicantID: applicantID,
		Documents:   documents,
		Now:         s.now(),
	})
	switch {
	case errors.Is(err, sentinel.ErrActiveRequest):
		s.metrics.IncCreationConflict(string(errs.ReasonActiveRequest))
		return model.Case{}, errs.Conflict(errs.ReasonActiveRequest, MessageActiveRequest)
	case errors.Is(err, sentinel.ErrStillValid):
		s.metrics.IncCreationConflict(string(errs.ReasonStillValid))
		return model.Case{}, errs.Conflict(errs.ReasonStillValid, MessageStillValid)
	case err != nil:
		return model.Case{}, errs.Internal(err)
	}

	s.metrics.IncCaseCreated()
	_ = s.bus.PublishApplicant(applicantID, map[string]interface{}{
		"type":   "case.created",
		"caseId": c.ID,
		"status": c.Status,
	})
	return c, nil
}

func (s *CaseService) GetCase(ctx context.Context, id string) (model.Case, error) {
	if id == "" {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "KYC ID is required")
	}
	c, err := s.cases.GetCase(ctx, id)
	if err != nil {
		return model.Case{}, translate(err, messageCaseNotFound)
	}
	return c, nil
}

// UpdateCaseStatus records a worker decision on an open case
func (s *CaseService) UpdateCaseStatus(ctx context.Context, caseID string, status model.Status, message *string) (model.Case, error) {
	if caseID == "" {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "KYC ID is required")
	}
	if status != model.StatusCompleted && status != model.StatusRejected {
		return model.Case{}, errs.New(errs.CodeInvalidInput, "Status must be Completed or Rejected")
	}
	return s.transition(ctx, caseID, status, message, triggerWorker)
}

// transition moves an open case to a terminal status
func (s *CaseService) transition(ctx context.Context, caseID string, status model.Status, message *string, trigger string) (model.Case, error) {
	c, err := s.cases.UpdateCaseStatus(ctx, caseID, status, message, s.now())
	if errors.Is(err, sentinel.ErrInvalidState) {
		return model.Case{}, errs.Conflict(errs.ReasonInvalidTransition, "KYC Request has already been decided")
	}
	if err != nil {
		return model.Case{}, translate(err, messageCaseNotFound)
	}

	s.metrics.IncTransition(string(status), trigger)
	s.publishStatus(c)

	if status == model.StatusCompleted && s.jobClient != nil && c.ValidUntil != nil {
		if err := s.jobClient.ScheduleValidityExpiry(c.ID, *c.ValidUntil); err != nil {
			s.log.Warn("Failed to schedule validity expiry", zap.String("case_id", c.ID), zap.Error(err))
		}
	}
	return c, nil
}

func (s *CaseService) publishStatus(c model.Case) {
	event := map[string]interface{}{
		"type":   "case.status_changed",
		"caseId": c.ID,
		"status": c.Status,
	}
	if c.Message != nil {
		event["message"] = *c.Message
	}
	_ = s.bus.PublishApplicant(c.ApplicantID, event)
	_ = s.bus.PublishCase(c.ID, event)
}

// GetCaseCountsAndList fetches per-status counts and every case summary for an applicant
func (s *CaseService) GetCaseCountsAndList(ctx context.Context, applicantID string) (CountsAndList, error) {
	if applicantID == "" {
		return CountsAndList{}, errs.New(errs.CodeInvalidInput, "Applicant ID is required")
	}

	var out CountsAndList
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.cases.CountByStatus(gctx, &applicantID)
		out.Counts = counts
		return err
	})
	g.Go(func() error {
		summaries := make([]model.CaseSummary, 0)
		params := model.ListParams{ApplicantID: &applicantID, Page: 1, Limit: model.MaxPageLimit}
		for {
			cases, total, err := s.cases.ListCases(gctx, params)
			if err != nil {
				return err
			}
			for _, c := range cases {
				summaries = append(summaries, c.Summary())
			}
			if len(cases) == 0 || int64(len(summaries)) >= total {
				break
			}
			params.Page++
		}
		out.Cases = summaries
		return nil
	})
	if err := g.Wait(); err != nil {
		return CountsAndList{}, errs.Internal(err)
	}
	return out, nil
}

// ListCasesForApplicant pages through one applicant's cases
func (s *CaseService) ListCasesForApplicant(ctx context.Context, applicantID string, params model.ListParams) (CasePage, error) {
	if applicantID == "" {
		return CasePage{}, errs.New(errs.CodeInvalidInput, "Applicant ID is required")
	}
	params.ApplicantID = &applicantID
	return s.list(ctx, params)
}

// ListAllCases pages through every case
func (s *CaseService) ListAllCases(ctx context.Context, params model.ListParams) (CasePage, error) {
	params.ApplicantID = nil
	return s.list(ctx, params)
}

func (s *CaseService) list(ctx context.Context, params model.ListParams) (CasePage, error) {
	params = params.Normalize()
	cases, total, err := s.cases.ListCases(ctx, params)
	if err != nil {
		return CasePage{}, errs.Internal(err)
	}
	return CasePage{
		Cases:      cases,
		Pagination: model.NewPageInfo(params.Page, params.Limit, total),
	}, nil
}

// CountAll aggregates every case by status
func (s *CaseService) CountAll(ctx context.Context) (model.StatusCounts, error) {
	counts, err := s.cases.CountByStatus(ctx, nil)
	if err != nil {
		return model.StatusCounts{}, errs.Internal(err)
	}
	return counts, nil
}
