package service

import (
	"context"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/metrics"
	"kycflow/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VerificationService runs the AI gate. A negative verdict rejects the case;
// a positive one is advisory unless auto-complete is enabled.
type VerificationService struct {
	lifecycle    *CaseService
	documents    *DocumentService
	resolver     URLResolver
	analyzer     Analyzer
	jobClient    JobClient
	autoComplete bool
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewVerificationService(lifecycle *CaseService, documents *DocumentService, resolver URLResolver, analyzer Analyzer, m *metrics.Metrics, log *zap.Logger) *VerificationService {
	return &VerificationService{
		lifecycle: lifecycle,
		documents: documents,
		resolver:  resolver,
		analyzer:  analyzer,
		metrics:   m,
		log:       log,
	}
}

// SetJobClient sets the job client used by VerifyAsync
func (s *VerificationService) SetJobClient(client JobClient) {
	s.jobClient = client
}

// SetAutoComplete makes a positive verdict complete the case
func (s *VerificationService) SetAutoComplete(enabled bool) {
	s.autoComplete = enabled
}

// Verify analyzes the case documents and applies the verdict. Analyzer or
// storage failures leave the case untouched.
func (s *VerificationService) Verify(ctx context.Context, caseID string) (model.Verdict, error) {
	c, err := s.lifecycle.GetCase(ctx, caseID)
	if err != nil {
		return model.Verdict{}, err
	}
	if !c.Status.Open() {
		return model.Verdict{}, errs.Conflict(errs.ReasonInvalidTransition, "KYC Request has already been decided")
	}

	documents, err := s.documents.ResolveDocumentsForCase(ctx, caseID)
	if err != nil {
		return model.Verdict{}, err
	}
	if len(documents) == 0 {
		return model.Verdict{}, errs.New(errs.CodeInvalidInput, "KYC Request has no documents")
	}

	urls, err := s.imageURLs(ctx, documents)
	if err != nil {
		return model.Verdict{}, errs.External(err, "Failed to resolve document images")
	}

	// the declared type is the first document's type
	docType := documents[0].Type
	start := time.Now()
	report, err := s.analyzer.Analyze(ctx, docType, urls)
	s.metrics.ObserveExternal("analyzer", time.Since(start))
	if err != nil {
		s.log.Warn("Document analysis failed", zap.String("case_id", caseID), zap.Error(err))
		return model.Verdict{}, errs.External(err, "Failed to verify documents with AI")
	}

	verdict := model.Verdict{Accepted: report.Accepted(), Message: report.Message()}
	if err := s.apply(ctx, c, verdict); err != nil {
		return model.Verdict{}, err
	}
	return verdict, nil
}

func (s *VerificationService) apply(ctx context.Context, c model.Case, verdict model.Verdict) error {
	now := s.lifecycle.now()

	if !verdict.Accepted {
		s.metrics.IncAIVerdict("rejected")
		msg := verdict.Message
		if _, err := s.lifecycle.cases.UpdateCaseAIStatus(ctx, c.ID, model.AIStatusRejected, &msg, now); err != nil {
			return translate(err, messageCaseNotFound)
		}
		_, err := s.lifecycle.transition(ctx, c.ID, model.StatusRejected, &msg, triggerAI)
		return err
	}

	s.metrics.IncAIVerdict("accepted")
	updated, err := s.lifecycle.cases.UpdateCaseAIStatus(ctx, c.ID, model.AIStatusCompleted, nil, now)
	if err != nil {
		return translate(err, messageCaseNotFound)
	}
	if s.autoComplete {
		_, err := s.lifecycle.transition(ctx, c.ID, model.StatusCompleted, nil, triggerAI)
		return err
	}

	_ = s.lifecycle.bus.PublishCase(c.ID, map[string]interface{}{
		"type":     "case.ai_verified",
		"caseId":   c.ID,
		"aiStatus": updated.AIStatus,
	})
	return nil
}

func (s *VerificationService) imageURLs(ctx context.Context, documents []model.Document) ([]string, error) {
	urls := make([]string, len(documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range documents {
		g.Go(func() error {
			u, err := s.resolver.ImageURL(gctx, d.Location)
			urls[i] = u
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// VerifyAsync queues verification on the job server
func (s *VerificationService) VerifyAsync(ctx context.Context, caseID string) error {
	if s.jobClient == nil {
		return errs.New(errs.CodeExternal, "Background jobs are not available")
	}
	c, err := s.lifecycle.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if !c.Status.Open() {
		return errs.Conflict(errs.ReasonInvalidTransition, "KYC Request has already been decided")
	}
	if err := s.jobClient.EnqueueVerification(caseID); err != nil {
		return errs.External(err, "Failed to queue verification")
	}
	return nil
}
