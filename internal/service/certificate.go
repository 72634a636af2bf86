package service

import (
	"context"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/metrics"
	"kycflow/internal/model"
)

type CertificateService struct {
	cases    CaseStore
	users    UserDirectory
	renderer Renderer
	metrics  *metrics.Metrics
}

func NewCertificateService(cases CaseStore, users UserDirectory, renderer Renderer, m *metrics.Metrics) *CertificateService {
	return &CertificateService{cases: cases, users: users, renderer: renderer, metrics: m}
}

// RenderCertificate renders the outcome certificate for a decided case
func (s *CertificateService) RenderCertificate(ctx context.Context, caseID string) (model.Certificate, error) {
	if caseID == "" {
		return model.Certificate{}, errs.New(errs.CodeInvalidInput, "KYC ID is required")
	}
	c, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return model.Certificate{}, translate(err, messageCaseNotFound)
	}

	var stamp model.Stamp
	switch c.Status {
	case model.StatusCompleted:
		stamp = model.StampApproved
	case model.StatusRejected:
		stamp = model.StampRejected
	default:
		return model.Certificate{}, errs.Conflict(errs.ReasonNotDecided, "KYC Request has not been decided yet")
	}

	applicant, err := s.users.GetUser(ctx, c.ApplicantID)
	if err != nil {
		return model.Certificate{}, translate(err, "Applicant not found")
	}

	data := model.CertificateData{
		CaseID:  c.ID,
		Name:    applicant.FullName(),
		Email:   applicant.Email,
		Address: applicant.Address,
		Date:    c.UpdatedAt,
		Stamp:   stamp,
	}
	if c.Message != nil {
		data.Message = *c.Message
	}

	start := time.Now()
	pdfURL, err := s.renderer.Render(ctx, data)
	s.metrics.ObserveExternal("renderer", time.Since(start))
	if err != nil {
		return model.Certificate{}, errs.External(err, "Failed to Generate pdf")
	}
	return model.Certificate{CaseID: c.ID, PDFURL: pdfURL}, nil
}
