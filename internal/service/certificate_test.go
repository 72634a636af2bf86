package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kycflow/internal/errs"
	"kycflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRenderCertificate(t *testing.T) {
	ctx := context.Background()

	t.Run("completed case gets the approved stamp", func(t *testing.T) {
		f := newFixture(t)
		renderer := NewMockRenderer(gomock.NewController(t))
		svc := NewCertificateService(f.store, f.store, renderer, nil)

		c, err := f.cases.CreateCase(ctx, applicantID, model.DocumentTypePassport, []string{upload(applicantID, "a.jpg")})
		require.NoError(t, err)
		f.clock.Advance(2 * time.Hour)
		_, err = f.cases.UpdateCaseStatus(ctx, c.ID, model.StatusCompleted, strPtr("Verified by reviewer"))
		require.NoError(t, err)

		renderer.EXPECT().Render(gomock.Any(), model.CertificateData{
			CaseID:  c.ID,
			Name:    "Ada Lovelace",
			Email:   applicantID + "@example.com",
			Address: "12 Analytical Row",
			Date:    f.clock.Now(),
			Message: "Verified by reviewer",
			Stamp:   model.StampApproved,
		}).Return("https://pdf.example.com/r/1.pdf", nil)

		cert, err := svc.RenderCertificate(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://pdf.example.com/r/1.pdf", cert.PDFURL)
		assert.Equal(t, c.ID, cert.CaseID)
	})

	t.Run("rejected case gets the rejected stamp", func(t *testing.T) {
		f := newFixture(t)
		renderer := NewMockRenderer(gomock.NewController(t))
		svc := NewCertificateService(f.store, f.store, renderer, nil)

		c, err := f.cases.CreateCase(ctx, applicantID, model.DocumentTypePassport, []string{upload(applicantID, "a.jpg")})
		require.NoError(t, err)
		_, err = f.cases.UpdateCaseStatus(ctx, c.ID, model.StatusRejected, nil)
		require.NoError(t, err)

		renderer.EXPECT().Render(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, data model.CertificateData) (string, error) {
				assert.Equal(t, model.StampRejected, data.Stamp)
				assert.Empty(t, data.Message)
				return "https://pdf.example.com/r/2.pdf", nil
			},
		)
		_, err = svc.RenderCertificate(ctx, c.ID)
		require.NoError(t, err)
	})

	t.Run("open case is not decided", func(t *testing.T) {
		f := newFixture(t)
		renderer := NewMockRenderer(gomock.NewController(t))
		svc := NewCertificateService(f.store, f.store, renderer, nil)

		c, err := f.cases.CreateCase(ctx, applicantID, model.DocumentTypePassport, []string{upload(applicantID, "a.jpg")})
		require.NoError(t, err)

		_, err = svc.RenderCertificate(ctx, c.ID)
		assert.Equal(t, errs.ReasonNotDecided, errs.ReasonOf(err))
	})

	t.Run("renderer failure", func(t *testing.T) {
		f := newFixture(t)
		renderer := NewMockRenderer(gomock.NewController(t))
		svc := NewCertificateService(f.store, f.store, renderer, nil)

		c, err := f.cases.CreateCase(ctx, applicantID, model.DocumentTypePassport, []string{upload(applicantID, "a.jpg")})
		require.NoError(t, err)
		_, err = f.cases.UpdateCaseStatus(ctx, c.ID, model.StatusCompleted, nil)
		require.NoError(t, err)

		renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return("", errors.New("template missing"))
		_, err = svc.RenderCertificate(ctx, c.ID)
		assert.Equal(t, errs.CodeExternal, errs.CodeOf(err))
	})

	t.Run("unknown case", func(t *testing.T) {
		f := newFixture(t)
		svc := NewCertificateService(f.store, f.store, NewMockRenderer(gomock.NewController(t)), nil)
		_, err := svc.RenderCertificate(ctx, "missing")
		assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
	})
}

func TestPermissionService_Require(t *testing.T) {
	f := newFixture(t)
	svc := NewPermissionService(f.store)
	ctx := context.Background()

	a, err := svc.Require(ctx, workerID, model.PermissionVerifyKYC)
	require.NoError(t, err)
	assert.Equal(t, workerID, a.ID)

	_, err = svc.Require(ctx, applicantID, model.PermissionViewKYC)
	assert.Equal(t, errs.CodePermissionDenied, errs.CodeOf(err))

	_, err = svc.Require(ctx, "ghost", model.PermissionViewKYC)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))

	_, err = svc.Actor(ctx, "")
	assert.Equal(t, errs.CodeInvalidInput, errs.CodeOf(err))
}

func TestDocumentService_CreateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.documents.CreateDocument(ctx, model.DocumentTypeResidencePermit, "kyc/a/permit.png")
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, model.DocumentTypeResidencePermit, d.Type)

	_, err = f.documents.CreateDocument(ctx, model.DocumentType("selfie"), "kyc/a/me.png")
	assert.Equal(t, errs.CodeInvalidInput, errs.CodeOf(err))
	_, err = f.documents.CreateDocument(ctx, model.DocumentTypePassport, "")
	assert.Equal(t, errs.CodeInvalidInput, errs.CodeOf(err))

	_, err = f.documents.ResolveDocumentsForCase(ctx, "missing")
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}
